package outbox

const activityLoggedSchema = `{
  "type": "object",
  "title": "ActivityLogged",
  "properties": {
    "activity_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "activity_kind": {"type": "string"},
    "target_category": {"type": "string"},
    "started_at": {"type": "string", "format": "date-time"},
    "duration_min": {"type": "integer"},
    "actual_energy": {"type": "number"},
    "version": {"type": "string"}
  },
  "required": ["activity_id", "tenant_id", "user_id", "activity_kind", "target_category", "started_at", "duration_min", "actual_energy", "version"],
  "additionalProperties": false
}`

const energyChargedSchema = `{
  "type": "object",
  "title": "EnergyCharged",
  "properties": {
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "category": {"type": "string", "enum": ["nautical", "terrestrial", "transport", "strength"]},
    "amount": {"type": "number"},
    "balance": {"type": "number"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "user_id", "category", "amount", "balance", "occurred_at"],
  "additionalProperties": false
}`

const legCompletedSchema = `{
  "type": "object",
  "title": "LegCompleted",
  "properties": {
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "journey_id": {"type": "string"},
    "leg_id": {"type": "string"},
    "position": {"type": "integer"},
    "from": {"type": "string"},
    "to": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "user_id", "journey_id", "leg_id", "position", "from", "to", "occurred_at"],
  "additionalProperties": false
}`

const journeyCompletedSchema = `{
  "type": "object",
  "title": "JourneyCompleted",
  "properties": {
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "journey_id": {"type": "string"},
    "legs": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "user_id", "journey_id", "legs", "occurred_at"],
  "additionalProperties": false
}`

const raidContributionRecordedSchema = `{
  "type": "object",
  "title": "RaidContributionRecorded",
  "properties": {
    "contribution_id": {"type": "string"},
    "raid_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "category": {"type": "string", "enum": ["nautical", "terrestrial", "transport", "strength"]},
    "amount": {"type": "number"},
    "efficiency": {"type": "number"},
    "progress": {"type": "number"},
    "raid_progress": {"type": "number"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["contribution_id", "raid_id", "tenant_id", "user_id", "category", "amount", "efficiency", "progress", "raid_progress", "occurred_at"],
  "additionalProperties": false
}`
