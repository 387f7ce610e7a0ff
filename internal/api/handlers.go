// Package api exposes HTTP handlers for the voyage service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/voyage/internal/auth"
	"example.com/voyage/internal/billing"
	"example.com/voyage/internal/domain"
	"example.com/voyage/internal/observability"
	"example.com/voyage/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	billing billing.Provider
}

// NewHandler builds a Handler. The billing provider may be nil, in which case
// checkout requests return 503.
func NewHandler(service *domain.Service, provider billing.Provider) *Handler {
	return &Handler{service: service, billing: provider}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/energy", h.energy)
	mux.HandleFunc("/v1/energy/inhibitor", h.energyInhibitor)
	mux.HandleFunc("/v1/deployments", h.deployments)
	mux.HandleFunc("/v1/journey", h.journey)
	mux.HandleFunc("/v1/journey/challenge", h.journeyChallenge)
	mux.HandleFunc("/v1/raids", h.raids)
	mux.HandleFunc("/v1/raids/", h.raidSubresource)
	mux.HandleFunc("/v1/profile", h.profile)
	mux.HandleFunc("/v1/store/purchases", h.storePurchases)
	mux.HandleFunc("/v1/billing/checkout", h.billingCheckout)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func requireClaims(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+strings.Join(scopes, " or ")+" required")
	return nil, false
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireClaims(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	activity, err := h.service.GetActivity(r.Context(), claims.TenantID, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) logActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activity, err := h.service.LogActivity(r.Context(), domain.LogActivityInput{
		TenantID:       claims.TenantID,
		UserID:         claims.Subject,
		ActivityKind:   req.ActivityKind,
		TargetCategory: req.TargetCategory,
		StartedAt:      req.StartedAt,
		DurationMin:    req.DurationMin,
		DistanceKm:     req.DistanceKm,
		Intensity:      req.Intensity,
		Notes:          req.Notes,
		Booster:        req.Booster,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	observability.RecordEnergyCharged(string(activity.TargetCategory), activity.ActualEnergy)
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivities(r.Context(), claims.TenantID, claims.Subject, cursor, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) energy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	ledger, err := h.service.Reserves(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerView(ledger))
}

func (h *Handler) energyInhibitor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req InhibitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.service.ApplyDecayInhibitor(r.Context(), claims.TenantID, claims.Subject, category); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied", "category": string(category)})
}

func (h *Handler) deployments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeJourneyWrite)
	if !ok {
		return
	}

	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	offers := make([]domain.Offer, 0, len(req.Offers))
	for _, offer := range req.Offers {
		category, err := domain.ParseCategory(offer.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		offers = append(offers, domain.Offer{Category: category, Amount: offer.Amount})
	}

	result, err := h.service.DeployEnergy(r.Context(), claims.TenantID, claims.Subject, offers)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	for _, entry := range result.Plan.Entries {
		observability.RecordEnergyDeployed(string(entry.Category), entry.Amount)
	}
	if result.CompletedLeg != nil {
		observability.RecordLegCompleted()
	}

	writeJSON(w, http.StatusOK, toDeployResponse(result))
}

func (h *Handler) journey(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		claims, ok := requireClaims(w, r, auth.ScopeJourneyRead, auth.ScopeJourneyWrite)
		if !ok {
			return
		}
		journey, err := h.service.Journey(r.Context(), claims.TenantID, claims.Subject)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toJourneyView(journey))
	case http.MethodPost:
		claims, ok := requireClaims(w, r, auth.ScopeJourneyWrite)
		if !ok {
			return
		}
		var req StartJourneyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if strings.TrimSpace(req.CatalogID) == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", "catalog_id is required")
			return
		}
		journey, err := h.service.StartJourney(r.Context(), claims.TenantID, claims.Subject, req.CatalogID)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toJourneyView(journey))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) journeyChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeJourneyRead, auth.ScopeJourneyWrite)
	if !ok {
		return
	}

	challenge, err := h.service.Challenge(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeView(challenge))
}

func (h *Handler) raids(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeRaidsRead, auth.ScopeRaidsWrite)
	if !ok {
		return
	}

	raids, err := h.service.Raids(r.Context(), claims.TenantID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	items := make([]RaidView, 0, len(raids))
	for _, raid := range raids {
		items = append(items, toRaidView(raid))
	}
	writeJSON(w, http.StatusOK, ListRaidsResponse{Items: items})
}

// raidSubresource routes /v1/raids/{id}/contributions and /v1/raids/{id}/leaderboard.
func (h *Handler) raidSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/raids/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not_found", "unknown raid resource")
		return
	}
	raidID := parts[0]

	switch parts[1] {
	case "contributions":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.contributeToRaid(w, r, raidID)
	case "leaderboard":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.raidLeaderboard(w, r, raidID)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown raid resource")
	}
}

func (h *Handler) contributeToRaid(w http.ResponseWriter, r *http.Request, raidID string) {
	claims, ok := requireClaims(w, r, auth.ScopeRaidsWrite)
	if !ok {
		return
	}

	var req ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	contribution, raid, err := h.service.ContributeToRaid(r.Context(), claims.TenantID, claims.Subject, raidID, category, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	observability.RecordEnergyDeployed(string(category), contribution.Amount)
	writeJSON(w, http.StatusCreated, ContributeResponse{
		Contribution: toContributionView(*contribution),
		Raid:         toRaidView(*raid),
	})
}

func (h *Handler) raidLeaderboard(w http.ResponseWriter, r *http.Request, raidID string) {
	claims, ok := requireClaims(w, r, auth.ScopeRaidsRead, auth.ScopeRaidsWrite)
	if !ok {
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	entries, err := h.service.RaidLeaderboard(r.Context(), claims.TenantID, raidID, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	items := make([]LeaderboardEntryView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, LeaderboardEntryView{
			Rank:     entry.Rank,
			UserID:   entry.UserID,
			Progress: entry.Progress,
		})
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{RaidID: raidID, Entries: items})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(profile))
}

func (h *Handler) storePurchases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireClaims(w, r, auth.ScopeStoreWrite)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	item := domain.StoreItem(req.Item)
	if _, known := item.Price(); !known {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown store item")
		return
	}

	inventory, err := h.service.PurchaseItem(r.Context(), claims.TenantID, claims.Subject, item)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryView(inventory))
}

// billingCheckout is called from the web checkout page, so it answers CORS
// preflights and accepts anonymous requests.
func (h *Handler) billingCheckout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	if h.billing == nil {
		writeError(w, http.StatusServiceUnavailable, "billing_unavailable", "checkout is not configured")
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	url, err := h.billing.CreateCheckout(r.Context(), billing.CheckoutInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		UserID:      req.UserID,
	})
	if err != nil {
		if errors.Is(err, billing.ErrEmailRequired) {
			writeError(w, http.StatusBadRequest, "validation_failed", "Email is required")
			return
		}
		writeError(w, http.StatusBadGateway, "billing_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var fieldErrs domain.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"type":   "validation_failed",
			"detail": "one or more fields are invalid",
			"fields": fieldErrs,
		})
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrRaidNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrInsufficientReserve):
		writeError(w, http.StatusConflict, "insufficient_reserve", err.Error())
	case errors.Is(err, domain.ErrBoosterUnavailable):
		writeError(w, http.StatusConflict, "booster_unavailable", err.Error())
	case errors.Is(err, domain.ErrInsufficientCredits):
		writeError(w, http.StatusConflict, "insufficient_credits", err.Error())
	case errors.Is(err, domain.ErrJourneyInProgress):
		writeError(w, http.StatusConflict, "journey_in_progress", err.Error())
	case errors.Is(err, domain.ErrJourneyCompleted):
		writeError(w, http.StatusConflict, "journey_completed", err.Error())
	case errors.Is(err, domain.ErrNoActiveJourney):
		writeError(w, http.StatusNotFound, "no_active_journey", err.Error())
	case errors.Is(err, domain.ErrRaidNotActive):
		writeError(w, http.StatusConflict, "raid_not_active", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// LogActivityRequest is the payload for POST /v1/activities.
type LogActivityRequest struct {
	ActivityKind   string    `json:"activity_kind"`
	TargetCategory string    `json:"target_category"`
	StartedAt      time.Time `json:"started_at"`
	DurationMin    int       `json:"duration_min"`
	DistanceKm     *float64  `json:"distance_km,omitempty"`
	Intensity      string    `json:"intensity"`
	Notes          string    `json:"notes,omitempty"`
	Booster        string    `json:"booster,omitempty"`
}

// ActivityView exposes full details about a logged activity.
type ActivityView struct {
	ActivityID     string    `json:"activity_id"`
	UserID         string    `json:"user_id"`
	ActivityKind   string    `json:"activity_kind"`
	TargetCategory string    `json:"target_category"`
	StartedAt      time.Time `json:"started_at"`
	DurationMin    int       `json:"duration_min"`
	DistanceKm     *float64  `json:"distance_km,omitempty"`
	Intensity      string    `json:"intensity"`
	Notes          string    `json:"notes,omitempty"`
	BaseEnergy     float64   `json:"base_energy"`
	Efficiency     float64   `json:"efficiency"`
	ActualEnergy   float64   `json:"actual_energy"`
	Booster        string    `json:"booster,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ReserveView is one category's balance.
type ReserveView struct {
	Category string  `json:"category"`
	Current  float64 `json:"current"`
	Max      float64 `json:"max"`
}

// LedgerResponse lists every reserve.
type LedgerResponse struct {
	Reserves []ReserveView `json:"reserves"`
}

// InhibitorRequest names the reserve to shield from decay.
type InhibitorRequest struct {
	Category string `json:"category"`
}

// OfferPayload is one category amount inside a deployment.
type OfferPayload struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// DeployRequest is the payload for POST /v1/deployments.
type DeployRequest struct {
	Offers []OfferPayload `json:"offers"`
}

// PlanEntryView reports the efficiency applied to one offer.
type PlanEntryView struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Efficiency float64 `json:"efficiency"`
	Progress   float64 `json:"progress"`
}

// DeployResponse reports what one deployment changed.
type DeployResponse struct {
	Target           string          `json:"target"`
	Entries          []PlanEntryView `json:"entries"`
	TotalDeployed    float64         `json:"total_deployed"`
	TotalProgress    float64         `json:"total_progress"`
	Challenge        *ChallengeView  `json:"challenge,omitempty"`
	CompletedLeg     *LegView        `json:"completed_leg,omitempty"`
	ActivatedLeg     *LegView        `json:"activated_leg,omitempty"`
	JourneyCompleted bool            `json:"journey_completed"`
}

// StartJourneyRequest is the payload for POST /v1/journey.
type StartJourneyRequest struct {
	CatalogID string `json:"catalog_id"`
}

// LegView is one journey segment.
type LegView struct {
	LegID            string     `json:"leg_id"`
	Position         int        `json:"position"`
	From             string     `json:"from"`
	To               string     `json:"to"`
	DistanceKm       float64    `json:"distance_km"`
	RequiredCategory string     `json:"required_category"`
	RequiredAmount   float64    `json:"required_amount"`
	Progress         float64    `json:"progress"`
	Status           string     `json:"status"`
	Title            string     `json:"title,omitempty"`
	Description      string     `json:"description,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// JourneyView is the full journey state.
type JourneyView struct {
	JourneyID        string     `json:"journey_id"`
	CatalogID        string     `json:"catalog_id"`
	Status           string     `json:"status"`
	CurrentLeg       int        `json:"current_leg"`
	DeploymentsCount int        `json:"deployments_count"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Legs             []LegView  `json:"legs"`
}

// ChallengeView is the active-leg summary.
type ChallengeView struct {
	LegID            string    `json:"leg_id"`
	RequiredCategory string    `json:"required_category"`
	RequiredAmount   float64   `json:"required_amount"`
	CurrentProgress  float64   `json:"current_progress"`
	DeploymentsCount int       `json:"deployments_count"`
	StartedAt        time.Time `json:"started_at"`
}

// RaidView is the public state of a community raid.
type RaidView struct {
	RaidID           string    `json:"raid_id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	GoalKwh          float64   `json:"goal_kwh"`
	Narrative        string    `json:"narrative,omitempty"`
	Status           string    `json:"status"`
	CurrentProgress  float64   `json:"current_progress"`
	ParticipantCount int       `json:"participant_count"`
}

// ListRaidsResponse packages the raid list.
type ListRaidsResponse struct {
	Items []RaidView `json:"items"`
}

// ContributeRequest is the payload for raid contributions.
type ContributeRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ContributionView reports an accepted contribution.
type ContributionView struct {
	ContributionID string    `json:"contribution_id"`
	RaidID         string    `json:"raid_id"`
	Category       string    `json:"category"`
	Amount         float64   `json:"amount"`
	Efficiency     float64   `json:"efficiency"`
	Progress       float64   `json:"progress"`
	CreatedAt      time.Time `json:"created_at"`
}

// ContributeResponse pairs the contribution with the refreshed raid.
type ContributeResponse struct {
	Contribution ContributionView `json:"contribution"`
	Raid         RaidView         `json:"raid"`
}

// LeaderboardEntryView ranks one user.
type LeaderboardEntryView struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"user_id"`
	Progress float64 `json:"progress"`
}

// LeaderboardResponse packages leaderboard entries.
type LeaderboardResponse struct {
	RaidID  string                 `json:"raid_id"`
	Entries []LeaderboardEntryView `json:"entries"`
}

// StatsView reports lifetime totals.
type StatsView struct {
	TotalActivities      int        `json:"total_activities"`
	TotalDistanceKm      float64    `json:"total_distance_km"`
	TotalEnergyGenerated float64    `json:"total_energy_generated"`
	CurrentStreak        int        `json:"current_streak"`
	LastActivityDate     *time.Time `json:"last_activity_date,omitempty"`
	JourneysCompleted    int        `json:"journeys_completed"`
}

// InventoryView reports credits and booster stock.
type InventoryView struct {
	Credits         int `json:"credits"`
	EnergyAmplifier int `json:"energy_amplifier"`
	DecayInhibitor  int `json:"decay_inhibitor"`
	MultiCharge     int `json:"multi_charge"`
}

// ProfileView is the user profile with stats and inventory.
type ProfileView struct {
	UserID             string        `json:"user_id"`
	Email              string        `json:"email,omitempty"`
	DisplayName        string        `json:"display_name,omitempty"`
	SubscriptionStatus string        `json:"subscription_status,omitempty"`
	Stats              StatsView     `json:"stats"`
	Inventory          InventoryView `json:"inventory"`
}

// PurchaseRequest is the payload for POST /v1/store/purchases.
type PurchaseRequest struct {
	Item string `json:"item"`
}

// CheckoutRequest identifies the subscriber for POST /v1/billing/checkout.
type CheckoutRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ActivityID:     activity.ID,
		UserID:         activity.UserID,
		ActivityKind:   activity.ActivityKind,
		TargetCategory: string(activity.TargetCategory),
		StartedAt:      activity.StartedAt,
		DurationMin:    activity.DurationMin,
		DistanceKm:     activity.DistanceKm,
		Intensity:      string(activity.Intensity),
		Notes:          activity.Notes,
		BaseEnergy:     activity.BaseEnergy,
		Efficiency:     activity.Efficiency,
		ActualEnergy:   activity.ActualEnergy,
		Booster:        string(activity.Booster),
		CreatedAt:      activity.CreatedAt,
	}
}

func toLedgerView(ledger domain.Ledger) LedgerResponse {
	reserves := make([]ReserveView, 0, 4)
	for _, category := range domain.Categories() {
		reserve := ledger.Reserve(category)
		reserves = append(reserves, ReserveView{
			Category: string(category),
			Current:  reserve.Current,
			Max:      reserve.Max,
		})
	}
	return LedgerResponse{Reserves: reserves}
}

func toLegView(leg domain.JourneyLeg) LegView {
	return LegView{
		LegID:            leg.ID,
		Position:         leg.Position,
		From:             leg.From,
		To:               leg.To,
		DistanceKm:       leg.DistanceKm,
		RequiredCategory: string(leg.RequiredCategory),
		RequiredAmount:   leg.RequiredAmount,
		Progress:         leg.Progress,
		Status:           string(leg.Status),
		Title:            leg.Title,
		Description:      leg.Description,
		StartedAt:        leg.StartedAt,
		CompletedAt:      leg.CompletedAt,
	}
}

func toJourneyView(journey *domain.Journey) JourneyView {
	legs := make([]LegView, 0, len(journey.Legs))
	for _, leg := range journey.Legs {
		legs = append(legs, toLegView(leg))
	}
	return JourneyView{
		JourneyID:        journey.ID,
		CatalogID:        journey.CatalogID,
		Status:           string(journey.Status),
		CurrentLeg:       journey.CurrentLeg,
		DeploymentsCount: journey.DeploymentsCount,
		StartedAt:        journey.StartedAt,
		CompletedAt:      journey.CompletedAt,
		Legs:             legs,
	}
}

func toChallengeView(challenge domain.Challenge) ChallengeView {
	return ChallengeView{
		LegID:            challenge.LegID,
		RequiredCategory: string(challenge.RequiredCategory),
		RequiredAmount:   challenge.RequiredAmount,
		CurrentProgress:  challenge.CurrentProgress,
		DeploymentsCount: challenge.DeploymentsCount,
		StartedAt:        challenge.StartedAt,
	}
}

func toDeployResponse(result *domain.DeploymentResult) DeployResponse {
	entries := make([]PlanEntryView, 0, len(result.Plan.Entries))
	for _, entry := range result.Plan.Entries {
		entries = append(entries, PlanEntryView{
			Category:   string(entry.Category),
			Amount:     entry.Amount,
			Efficiency: entry.Efficiency,
			Progress:   entry.Progress,
		})
	}
	resp := DeployResponse{
		Target:           string(result.Plan.Target),
		Entries:          entries,
		TotalDeployed:    result.Plan.TotalDeployed,
		TotalProgress:    result.Plan.TotalProgress,
		JourneyCompleted: result.JourneyCompleted,
	}
	if result.Challenge != nil {
		view := toChallengeView(*result.Challenge)
		resp.Challenge = &view
	}
	if result.CompletedLeg != nil {
		view := toLegView(*result.CompletedLeg)
		resp.CompletedLeg = &view
	}
	if result.ActivatedLeg != nil {
		view := toLegView(*result.ActivatedLeg)
		resp.ActivatedLeg = &view
	}
	return resp
}

func toRaidView(raid domain.RaidEvent) RaidView {
	return RaidView{
		RaidID:           raid.ID,
		Name:             raid.Name,
		Category:         string(raid.Category),
		StartTime:        raid.StartTime,
		EndTime:          raid.EndTime,
		GoalKwh:          raid.GoalKwh,
		Narrative:        raid.Narrative,
		Status:           string(raid.Status),
		CurrentProgress:  raid.CurrentProgress,
		ParticipantCount: raid.ParticipantCount,
	}
}

func toContributionView(contribution domain.RaidContribution) ContributionView {
	return ContributionView{
		ContributionID: contribution.ID,
		RaidID:         contribution.RaidID,
		Category:       string(contribution.Category),
		Amount:         contribution.Amount,
		Efficiency:     contribution.Efficiency,
		Progress:       contribution.Progress,
		CreatedAt:      contribution.CreatedAt,
	}
}

func toProfileView(profile domain.Profile) ProfileView {
	return ProfileView{
		UserID:             profile.UserID,
		Email:              profile.Email,
		DisplayName:        profile.DisplayName,
		SubscriptionStatus: string(profile.SubscriptionStatus),
		Stats: StatsView{
			TotalActivities:      profile.Stats.TotalActivities,
			TotalDistanceKm:      profile.Stats.TotalDistanceKm,
			TotalEnergyGenerated: profile.Stats.TotalEnergyGenerated,
			CurrentStreak:        profile.Stats.CurrentStreak,
			LastActivityDate:     profile.Stats.LastActivityDate,
			JourneysCompleted:    profile.Stats.JourneysCompleted,
		},
		Inventory: toInventoryView(profile.Inventory),
	}
}

func toInventoryView(inventory domain.Inventory) InventoryView {
	return InventoryView{
		Credits:         inventory.Credits,
		EnergyAmplifier: inventory.EnergyAmplifier,
		DecayInhibitor:  inventory.DecayInhibitor,
		MultiCharge:     inventory.MultiCharge,
	}
}
