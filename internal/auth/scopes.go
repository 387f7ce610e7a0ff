package auth

// Known OAuth scopes used by the voyage service.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
	ScopeJourneyRead     = "journey:read"
	ScopeJourneyWrite    = "journey:write"
	ScopeRaidsRead       = "raids:read"
	ScopeRaidsWrite      = "raids:write"
	ScopeStoreWrite      = "store:write"
)
