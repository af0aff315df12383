package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quotagate/quotagate/domain/action"
	"github.com/quotagate/quotagate/domain/entitlement"
	"github.com/quotagate/quotagate/domain/tier"
	"github.com/quotagate/quotagate/ports"
)

// -----------------------------------------------------------------------------
// Wire types
// -----------------------------------------------------------------------------

type accountJSON struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name,omitempty"`
	Tier                string    `json:"tier" example:"FREE"`
	MonthlyUploads      int64     `json:"monthly_uploads"`
	MonthlyAudioMinutes float64   `json:"monthly_audio_minutes"`
	MonthlyContracts    int64     `json:"monthly_contracts"`
	UsageResetDate      time.Time `json:"usage_reset_date"`
	CreatedAt           time.Time `json:"created_at"`
}

func toAccountJSON(a ports.Account) accountJSON {
	return accountJSON{
		ID:                  a.ID,
		Email:               a.Email,
		Name:                a.Name,
		Tier:                string(a.Tier),
		MonthlyUploads:      a.MonthlyUploads,
		MonthlyAudioMinutes: a.MonthlyAudioMinutes,
		MonthlyContracts:    a.MonthlyContracts,
		UsageResetDate:      a.UsageResetDate,
		CreatedAt:           a.CreatedAt,
	}
}

type decisionJSON struct {
	Allowed       bool    `json:"allowed"`
	Reason        string  `json:"reason,omitempty"`
	Current       float64 `json:"current"`
	Limit         float64 `json:"limit"`
	UpgradePrompt bool    `json:"upgrade_prompt"`
}

func toDecisionJSON(d entitlement.Decision) decisionJSON {
	return decisionJSON{
		Allowed:       d.Allowed,
		Reason:        d.Reason,
		Current:       d.Current,
		Limit:         d.Limit,
		UpgradePrompt: d.UpgradePrompt,
	}
}

type statJSON struct {
	Used      float64 `json:"used"`
	Limit     float64 `json:"limit"`
	Remaining float64 `json:"remaining"`
}

type statsJSON struct {
	Tier  string `json:"tier" example:"FREE"`
	Usage struct {
		Uploads      statJSON `json:"uploads"`
		AudioMinutes statJSON `json:"audio_minutes"`
		Contracts    statJSON `json:"contracts"`
	} `json:"usage"`
	Features struct {
		CanUseExtension    bool `json:"can_use_extension"`
		PriorityProcessing bool `json:"priority_processing"`
	} `json:"features"`
	ResetDate time.Time `json:"reset_date"`
}

func toStatsJSON(s entitlement.Stats) statsJSON {
	var out statsJSON
	out.Tier = string(s.Tier)
	out.Usage.Uploads = statJSON(s.Uploads)
	out.Usage.AudioMinutes = statJSON(s.AudioMinutes)
	out.Usage.Contracts = statJSON(s.Contracts)
	out.Features.CanUseExtension = s.CanUseExtension
	out.Features.PriorityProcessing = s.PriorityProcessing
	out.ResetDate = s.ResetDate
	return out
}

type recommendationJSON struct {
	RecommendUpgrade bool     `json:"recommend_upgrade"`
	CurrentTier      string   `json:"current_tier"`
	RecommendedTier  string   `json:"recommended_tier,omitempty"`
	Reasons          []string `json:"reasons,omitempty"`
}

type tierJSON struct {
	Tier                 string  `json:"tier" example:"BASIC"`
	UploadsPerMonth      int64   `json:"uploads_per_month"`
	AudioMinutesPerMonth float64 `json:"audio_minutes_per_month"`
	ContractsPerMonth    int64   `json:"contracts_per_month"`
	CanUseExtension      bool    `json:"can_use_extension"`
	PriorityProcessing   bool    `json:"priority_processing"`
}

type eventJSON struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind" example:"audio"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

// storeError maps store failures onto HTTP statuses.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", entitlement.ReasonAccountNotFound)
	case errors.Is(err, ports.ErrDuplicate):
		writeError(w, http.StatusConflict, "Conflict", "An account with this email already exists")
	default:
		h.logger.Error().Err(err).Msg("store operation failed")
		writeError(w, http.StatusInternalServerError, "Internal error", "Storage failure")
	}
}

// -----------------------------------------------------------------------------
// Account admin
// -----------------------------------------------------------------------------

// CreateAccount provisions a new account.
//
//	@Summary	Create account
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Param		request	body		createAccountRequest	true	"Account details"
//	@Success	201		{object}	accountJSON
//	@Failure	400		{object}	errorBody
//	@Failure	409		{object}	errorBody
//	@Router		/v1/accounts [post]
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Malformed JSON body")
		return
	}

	a, err := h.accounts.Create(r.Context(), req.Email, req.Name, req.Tier)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			h.storeError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toAccountJSON(a))
}

type createAccountRequest struct {
	Email string `json:"email" example:"ops@example.com"`
	Name  string `json:"name"`
	Tier  string `json:"tier" example:"FREE"`
}

// GetAccount returns a single account.
//
//	@Summary	Get account
//	@Tags		Accounts
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	accountJSON
//	@Failure	404	{object}	errorBody
//	@Router		/v1/accounts/{id} [get]
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountJSON(a))
}

// SetTier changes an account's subscription tier.
//
//	@Summary	Set account tier
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Account ID"
//	@Param		request	body		setTierRequest	true	"New tier"
//	@Success	200		{object}	accountJSON
//	@Failure	400		{object}	errorBody
//	@Failure	404		{object}	errorBody
//	@Router		/v1/accounts/{id}/tier [put]
func (h *Handler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req setTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Malformed JSON body")
		return
	}

	a, err := h.accounts.SetTier(r.Context(), chi.URLParam(r, "id"), req.Tier)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.storeError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toAccountJSON(a))
}

type setTierRequest struct {
	Tier string `json:"tier" example:"PREMIUM"`
}

// DeleteAccount removes an account.
//
//	@Summary	Delete account
//	@Tags		Accounts
//	@Param		id	path	string	true	"Account ID"
//	@Success	204
//	@Failure	404	{object}	errorBody
//	@Router		/v1/accounts/{id} [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Decision / record API
// -----------------------------------------------------------------------------

type actionRequest struct {
	Action string  `json:"action" example:"upload"`
	Amount float64 `json:"amount,omitempty" example:"2.5"`
}

// Check runs the entitlement check for an action kind without recording
// anything. Denials are a 200 with allowed=false: to the calling
// backend, a deny is data, not a transport failure.
//
//	@Summary	Check entitlement
//	@Tags		Entitlements
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Account ID"
//	@Param		request	body		actionRequest	true	"Action kind"
//	@Success	200		{object}	decisionJSON
//	@Failure	500		{object}	errorBody
//	@Router		/v1/accounts/{id}/check [post]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Malformed JSON body")
		return
	}

	// Unknown kinds flow through on purpose: the engine denies them
	// with "Unknown action" instead of the boundary rejecting them.
	d, err := h.engine.CanPerform(r.Context(), chi.URLParam(r, "id"), action.Kind(req.Action))
	if err != nil {
		h.logger.Error().Err(err).Msg("entitlement check failed")
		writeError(w, http.StatusInternalServerError, "Internal error", "Limit check failed")
		return
	}

	writeJSON(w, http.StatusOK, toDecisionJSON(d))
}

// RecordUsage commits consumption after the platform completed an
// action. Unknown kinds are accepted and ignored.
//
//	@Summary	Record usage
//	@Tags		Entitlements
//	@Accept		json
//	@Param		id		path	string			true	"Account ID"
//	@Param		request	body	actionRequest	true	"Action kind and amount"
//	@Success	204
//	@Failure	404	{object}	errorBody
//	@Failure	500	{object}	errorBody
//	@Router		/v1/accounts/{id}/usage [post]
func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Malformed JSON body")
		return
	}

	amount := req.Amount
	if amount <= 0 {
		amount = 1
	}

	if err := h.engine.RecordUsage(r.Context(), chi.URLParam(r, "id"), action.Kind(req.Action), amount); err != nil {
		h.storeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Consume is the single-shot check-and-record path. Under strict
// enforcement the two steps are one atomic store operation.
//
//	@Summary	Check and record in one call
//	@Tags		Entitlements
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Account ID"
//	@Param		request	body		actionRequest	true	"Action kind and amount"
//	@Success	200		{object}	decisionJSON
//	@Failure	500		{object}	errorBody
//	@Router		/v1/accounts/{id}/consume [post]
func (h *Handler) Consume(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Malformed JSON body")
		return
	}

	amount := req.Amount
	if amount <= 0 {
		amount = 1
	}

	d, err := h.engine.Consume(r.Context(), chi.URLParam(r, "id"), action.Kind(req.Action), amount)
	if err != nil {
		h.logger.Error().Err(err).Msg("consume failed")
		writeError(w, http.StatusInternalServerError, "Internal error", "Usage accounting failed")
		return
	}

	writeJSON(w, http.StatusOK, toDecisionJSON(d))
}

// -----------------------------------------------------------------------------
// Read views
// -----------------------------------------------------------------------------

// GetUsage returns the account's usage stats.
//
//	@Summary	Usage stats
//	@Tags		Entitlements
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	statsJSON
//	@Failure	404	{object}	errorBody
//	@Router		/v1/accounts/{id}/usage [get]
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.UsageStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsJSON(stats))
}

// GetRecommendation returns upgrade advice, or 204 for top-tier
// accounts where there is nothing to upgrade to.
//
//	@Summary	Upgrade recommendation
//	@Tags		Entitlements
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	recommendationJSON
//	@Success	204
//	@Failure	404	{object}	errorBody
//	@Router		/v1/accounts/{id}/recommendation [get]
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.engine.UpgradeRecommendation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, err)
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, recommendationJSON{
		RecommendUpgrade: rec.RecommendUpgrade,
		CurrentTier:      string(rec.CurrentTier),
		RecommendedTier:  string(rec.RecommendedTier),
		Reasons:          rec.Reasons,
	})
}

// GetEvents returns the newest usage-log entries for an account.
//
//	@Summary	Recent usage events
//	@Tags		Entitlements
//	@Produce	json
//	@Param		id		path		string	true	"Account ID"
//	@Param		limit	query		int		false	"Max events (default 50)"
//	@Success	200		{array}		eventJSON
//	@Failure	404		{object}	errorBody
//	@Router		/v1/accounts/{id}/events [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if h.usageLog == nil {
		writeError(w, http.StatusNotImplemented, "Not available", "Usage log is disabled")
		return
	}

	accountID := chi.URLParam(r, "id")
	if _, err := h.accounts.Get(r.Context(), accountID); err != nil {
		h.storeError(w, err)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := h.usageLog.Recent(r.Context(), accountID, limit)
	if err != nil {
		h.storeError(w, err)
		return
	}

	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON{
			ID:         e.ID,
			Kind:       string(e.Kind),
			Amount:     e.Amount,
			RecordedAt: e.RecordedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListTiers returns the effective tier catalog.
//
//	@Summary	List tiers
//	@Tags		Tiers
//	@Produce	json
//	@Success	200	{array}	tierJSON
//	@Router		/v1/tiers [get]
func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	catalog := h.engine.Catalog()

	out := make([]tierJSON, 0, len(tier.All()))
	for _, t := range tier.All() {
		l := catalog.Limits(t)
		out = append(out, tierJSON{
			Tier:                 string(t),
			UploadsPerMonth:      l.UploadsPerMonth,
			AudioMinutesPerMonth: l.AudioMinutesPerMonth,
			ContractsPerMonth:    l.ContractsPerMonth,
			CanUseExtension:      l.CanUseExtension,
			PriorityProcessing:   l.PriorityProcessing,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// Gated billable endpoints
// -----------------------------------------------------------------------------

// AcceptUpload accepts a meeting upload after the gate allowed it and
// commits one unit of upload usage.
//
//	@Summary	Accept upload (gated)
//	@Tags		Billable
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	202	{object}	acceptResponse
//	@Failure	429	{object}	errorBody
//	@Router		/v1/accounts/{id}/uploads [post]
func (h *Handler) AcceptUpload(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	if err := h.engine.RecordUsage(r.Context(), accountID, action.Upload, 1); err != nil {
		h.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, acceptResponse{Accepted: true})
}

type acceptResponse struct {
	Accepted           bool    `json:"accepted"`
	RecordedMinutes    float64 `json:"recorded_minutes,omitempty"`
	PriorityProcessing bool    `json:"priority_processing,omitempty"`
}

// AcceptTranscription accepts a transcription job after the gate
// allowed it and commits the consumed minutes. The audio gate checks
// the counter before this amount is added, so a job may finish past the
// cap; the next one is then denied.
//
//	@Summary	Accept transcription (gated)
//	@Tags		Billable
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Account ID"
//	@Param		request	body		transcriptionRequest	true	"Consumed minutes"
//	@Success	202		{object}	acceptResponse
//	@Failure	429		{object}	errorBody
//	@Router		/v1/accounts/{id}/transcriptions [post]
func (h *Handler) AcceptTranscription(w http.ResponseWriter, r *http.Request) {
	var req transcriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DurationMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "duration_minutes must be positive")
		return
	}

	accountID := chi.URLParam(r, "id")
	if err := h.engine.RecordUsage(r.Context(), accountID, action.Audio, req.DurationMinutes); err != nil {
		h.storeError(w, err)
		return
	}

	resp := acceptResponse{Accepted: true, RecordedMinutes: req.DurationMinutes}
	if stats, ok := statsFrom(r.Context()); ok {
		resp.PriorityProcessing = stats.PriorityProcessing
	}
	writeJSON(w, http.StatusAccepted, resp)
}

type transcriptionRequest struct {
	DurationMinutes float64 `json:"duration_minutes" example:"2.5"`
}

// AcceptContract accepts a contract draft after the gate allowed it and
// commits one unit of contract usage.
//
//	@Summary	Accept contract draft (gated)
//	@Tags		Billable
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	202	{object}	acceptResponse
//	@Failure	429	{object}	errorBody
//	@Router		/v1/accounts/{id}/contracts [post]
func (h *Handler) AcceptContract(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	if err := h.engine.RecordUsage(r.Context(), accountID, action.Contract, 1); err != nil {
		h.storeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, acceptResponse{Accepted: true})
}

// StreamToken issues a streaming session token for accounts whose tier
// grants extension access. Pure capability check; no counter involved.
//
//	@Summary	Issue extension stream token (gated)
//	@Tags		Billable
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	streamTokenResponse
//	@Failure	403	{object}	errorBody
//	@Router		/v1/accounts/{id}/stream-token [get]
func (h *Handler) StreamToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, streamTokenResponse{
		Token:     h.idGen.New(),
		ExpiresIn: int((15 * time.Minute).Seconds()),
	})
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in" example:"900"`
}
