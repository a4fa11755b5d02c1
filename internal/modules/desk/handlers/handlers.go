// Package handlers provides HTTP handlers for scenario desk sessions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/aristath/scenariodesk/internal/modules/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Error codes for failures that are not validation errors.
const (
	CodeInvalidBody       = "INVALID_BODY"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeNoAllocation      = "NO_ALLOCATION"
	CodeStaleResponse     = "STALE_RESPONSE"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeEngineError       = "ENGINE_ERROR"
	CodeEngineUnreachable = "ENGINE_UNREACHABLE"
	CodeInternal          = "INTERNAL"
)

// Handler handles session HTTP requests
type Handler struct {
	manager *desk.Manager
	origins []string
	log     zerolog.Logger
}

// NewHandler creates a new session handler. origins restricts websocket
// upgrades; "*" or an empty list accepts any origin.
func NewHandler(manager *desk.Manager, origins []string, log zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		origins: origins,
		log:     log.With().Str("handler", "sessions").Logger(),
	}
}

// TemplateRequest selects a named template.
type TemplateRequest struct {
	Key string `json:"key"`
}

// AsOfRequest sets the allocation date. An empty or null date means most
// recent.
type AsOfRequest struct {
	Date domain.Date `json:"date"`
}

// PeriodRequest sets the backtest period.
type PeriodRequest struct {
	StartDate domain.Date `json:"start_date"`
	EndDate   domain.Date `json:"end_date"`
}

// HandleCreateSession handles POST /api/sessions
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, d := h.manager.Create()
	h.writeData(w, http.StatusCreated, map[string]interface{}{
		"id":    id.String(),
		"state": d.Snapshot(),
	})
}

// HandleGetSession handles GET /api/sessions/{id}
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeData(w, http.StatusOK, d.Snapshot())
}

// HandleDeleteSession handles DELETE /api/sessions/{id}
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chiID(r))
	if err != nil {
		h.writeCodedError(w, http.StatusNotFound, CodeSessionNotFound, "unknown session")
		return
	}
	if err := h.manager.Delete(id); err != nil {
		h.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddSingleView handles POST /api/sessions/{id}/views/single
func (h *Handler) HandleAddSingleView(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	var draft views.SingleDraft
	if !h.decodeSingle(w, r, &draft) {
		return
	}
	h.mutate(w, d, d.AddSingleView(draft))
}

// HandleAddPairView handles POST /api/sessions/{id}/views/pair
func (h *Handler) HandleAddPairView(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	draft := views.DefaultPairDraft()
	if !h.decode(w, r, &draft) {
		return
	}
	var err error
	if draft.AssetA, err = domain.ParseTicker(string(draft.AssetA)); err != nil {
		h.writeFailure(w, err)
		return
	}
	if draft.AssetB, err = domain.ParseTicker(string(draft.AssetB)); err != nil {
		h.writeFailure(w, err)
		return
	}
	h.mutate(w, d, d.AddPairView(draft))
}

// HandleApplyTemplate handles POST /api/sessions/{id}/views/template
func (h *Handler) HandleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	var req TemplateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.mutate(w, d, d.ApplyTemplate(req.Key))
}

// HandleRemoveView handles DELETE /api/sessions/{id}/views/{index}
func (h *Handler) HandleRemoveView(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	i, ok := h.index(w, r)
	if !ok {
		return
	}
	h.mutate(w, d, d.RemoveView(i))
}

// HandleSetAsOf handles PUT /api/sessions/{id}/as-of
func (h *Handler) HandleSetAsOf(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	var req AsOfRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.mutate(w, d, d.SetAsOfDate(req.Date))
}

// HandleRunScenario handles POST /api/sessions/{id}/scenario
func (h *Handler) HandleRunScenario(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	summary, err := d.RunScenario(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeData(w, http.StatusOK, summary)
}

// HandleRunMonteCarlo handles POST /api/sessions/{id}/montecarlo
func (h *Handler) HandleRunMonteCarlo(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	p, err := d.RunMonteCarlo(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeData(w, http.StatusOK, p)
}

// HandleAddBacktestView handles POST /api/sessions/{id}/backtest/views
func (h *Handler) HandleAddBacktestView(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	var draft views.SingleDraft
	if !h.decodeSingle(w, r, &draft) {
		return
	}
	h.mutate(w, d, d.AddBacktestView(draft))
}

// HandleRemoveBacktestView handles DELETE /api/sessions/{id}/backtest/views/{index}
func (h *Handler) HandleRemoveBacktestView(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	i, ok := h.index(w, r)
	if !ok {
		return
	}
	h.mutate(w, d, d.RemoveBacktestView(i))
}

// HandleSetBacktestPeriod handles PUT /api/sessions/{id}/backtest/period
func (h *Handler) HandleSetBacktestPeriod(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	var req PeriodRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.mutate(w, d, d.SetBacktestPeriod(req.StartDate, req.EndDate))
}

// HandleRunBacktest handles POST /api/sessions/{id}/backtest
func (h *Handler) HandleRunBacktest(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}
	summary, err := d.RunBacktest(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeData(w, http.StatusOK, summary)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*desk.Desk, bool) {
	id, err := uuid.Parse(chiID(r))
	if err != nil {
		h.writeCodedError(w, http.StatusNotFound, CodeSessionNotFound, "unknown session")
		return nil, false
	}
	d, err := h.manager.Get(id)
	if err != nil {
		h.writeFailure(w, err)
		return nil, false
	}
	return d, true
}

func chiID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeFailure(w, domain.NewValidationError(domain.CodeIndexOutOfRange, "index must be an integer"))
		return 0, false
	}
	return i, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.writeFailure(w, ve)
			return false
		}
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeCodedError(w, http.StatusBadRequest, CodeInvalidBody, "Invalid request body")
		return false
	}
	return true
}

// decodeSingle decodes a single-asset draft over the form defaults and
// normalizes its ticker.
func (h *Handler) decodeSingle(w http.ResponseWriter, r *http.Request, draft *views.SingleDraft) bool {
	*draft = views.DefaultSingleDraft()
	if !h.decode(w, r, draft) {
		return false
	}
	t, err := domain.ParseTicker(string(draft.Ticker))
	if err != nil {
		h.writeFailure(w, err)
		return false
	}
	draft.Ticker = t
	return true
}

// mutate answers a state change with the new snapshot.
func (h *Handler) mutate(w http.ResponseWriter, d *desk.Desk, err error) {
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeData(w, http.StatusOK, d.Snapshot())
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeFailure maps desk and engine errors to HTTP statuses.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var (
		ve  *domain.ValidationError
		se  *domain.ServiceError
		ne  *domain.NetworkError
		mre *domain.MalformedResponseError
	)
	switch {
	case errors.As(err, &ve):
		h.writeCodedError(w, http.StatusBadRequest, string(ve.Code), ve.Message)
	case errors.Is(err, desk.ErrSessionNotFound):
		h.writeCodedError(w, http.StatusNotFound, CodeSessionNotFound, "unknown session")
	case errors.Is(err, domain.ErrNoAllocation):
		h.writeCodedError(w, http.StatusConflict, CodeNoAllocation, "run a scenario before projecting")
	case errors.Is(err, domain.ErrStaleResponse):
		h.writeCodedError(w, http.StatusConflict, CodeStaleResponse, "superseded by a newer request")
	case errors.As(err, &mre):
		h.writeCodedError(w, http.StatusBadGateway, CodeMalformedResponse, mre.Error())
	case errors.As(err, &se):
		h.writeCodedError(w, http.StatusBadGateway, CodeEngineError, se.Error())
	case errors.As(err, &ne):
		h.writeCodedError(w, http.StatusBadGateway, CodeEngineUnreachable, ne.Error())
	default:
		h.log.Error().Err(err).Msg("Unhandled error")
		h.writeCodedError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeCodedError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}
