package outbox

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"example.com/voyage/internal/events"
)

func compileSchema(t *testing.T, raw string) *jsonschema.Schema {
	t.Helper()

	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource("schema.json", bytes.NewReader([]byte(raw))))
	schema, err := compiler.Compile("schema.json")
	require.NoError(t, err)
	return schema
}

func validate(t *testing.T, schema *jsonschema.Schema, payload any) error {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var doc any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return schema.Validate(doc)
}

func TestSchemasCoverEveryCatalogEntry(t *testing.T) {
	expected := []string{
		events.TypeActivityLogged,
		events.TypeEnergyCharged,
		events.TypeLegCompleted,
		events.TypeJourneyCompleted,
		events.TypeRaidContributionRecorded,
	}
	for _, eventType := range expected {
		entry, ok := schemaCatalog[eventType]
		require.Truef(t, ok, "missing schema catalog entry for %s", eventType)
		compileSchema(t, entry.Schema)
	}
}

func TestActivityLoggedPayloadMatchesSchema(t *testing.T) {
	schema := compileSchema(t, activityLoggedSchema)

	payload := events.ActivityLogged{
		ActivityID:     "3e7f80a2-09a6-4a3d-9d1e-6f5b1b2f1a10",
		TenantID:       "tenant-1",
		UserID:         "user-1",
		ActivityKind:   "Sailing",
		TargetCategory: "nautical",
		StartedAt:      time.Date(2026, 3, 12, 7, 30, 0, 0, time.UTC),
		DurationMin:    45,
		ActualEnergy:   0.75,
		Version:        "v1",
	}
	require.NoError(t, validate(t, schema, payload))
}

func TestEnergyChargedSchemaRejectsUnknownCategory(t *testing.T) {
	schema := compileSchema(t, energyChargedSchema)

	valid := events.EnergyCharged{
		TenantID:   "tenant-1",
		UserID:     "user-1",
		Category:   "terrestrial",
		Amount:     1.5,
		Balance:    4.25,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, validate(t, schema, valid))

	invalid := valid
	invalid.Category = "aerial"
	require.Error(t, validate(t, schema, invalid))
}

func TestRaidContributionPayloadMatchesSchema(t *testing.T) {
	schema := compileSchema(t, raidContributionRecordedSchema)

	payload := events.RaidContributionRecorded{
		ContributionID: "c-1",
		RaidID:         "raid-channel",
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Category:       "transport",
		Amount:         2.0,
		Efficiency:     0.75,
		Progress:       1.5,
		RaidProgress:   12.5,
		OccurredAt:     time.Now().UTC(),
	}
	require.NoError(t, validate(t, schema, payload))
}

func TestLegCompletedSchemaRequiresEndpoints(t *testing.T) {
	schema := compileSchema(t, legCompletedSchema)

	raw := map[string]any{
		"tenant_id":   "tenant-1",
		"user_id":     "user-1",
		"journey_id":  "j-1",
		"leg_id":      "l-1",
		"position":    0,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}
	require.Error(t, schema.Validate(raw))

	raw["from"] = "London"
	raw["to"] = "Paris"
	require.NoError(t, schema.Validate(raw))
}
