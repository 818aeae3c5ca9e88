// Package handlers provides HTTP request handlers for the instructions API
// endpoints. It covers session and tab management, field and text edits,
// vocabulary lookups, medication name suggestions, and health checks.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mediscript/instructions-api/instruction"
	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/session"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	sessions  *session.Manager
	vocab     interfaces.VocabularyLookup
	validator interfaces.Validator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(sessions *session.Manager, vocab interfaces.VocabularyLookup, validator interfaces.Validator, health interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		sessions:  sessions,
		vocab:     vocab,
		validator: validator,
		health:    health,
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// sessionResponse is the canonical session payload
type sessionResponse struct {
	SessionID string             `json:"sessionId"`
	Tabs      []session.TabState `json:"tabs"`
}

func (h *HTTPHandlerImpl) sessionPayload(s *session.Session) sessionResponse {
	return sessionResponse{
		SessionID: s.ID().String(),
		Tabs:      s.Tabs(),
	}
}

// requestSession resolves the session from the URL, writing the error
// response itself when the id is malformed or unknown.
func (h *HTTPHandlerImpl) requestSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

func (h *HTTPHandlerImpl) requestTabID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tabID"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid tab ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlerImpl) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// writeTabResult maps session errors onto HTTP statuses
func (h *HTTPHandlerImpl) writeTabResult(w http.ResponseWriter, state session.TabState, err error) {
	switch err {
	case nil:
		h.RespondWithJSON(w, http.StatusOK, state)
	case session.ErrTabNotFound:
		h.RespondWithError(w, http.StatusNotFound, "Tab not found")
	case session.ErrLastTab:
		h.RespondWithError(w, http.StatusConflict, "A session keeps at least one tab")
	default:
		h.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// CreateSession starts a new editing session with one default tab
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	h.RespondWithJSON(w, http.StatusCreated, h.sessionPayload(s))
}

// GetSession returns the session's tabs in display order
func (h *HTTPHandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.sessionPayload(s))
}

// DeleteSession ends a session and drops its stored state
func (h *HTTPHandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	h.sessions.Delete(s.ID())
	h.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RestoreSession rebuilds the session's tabs from stored state, as
// after a page reload. Restored panes display verbatim; the generation
// pipeline stays idle until the next edit.
func (h *HTTPHandlerImpl) RestoreSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	restored, err := h.sessions.Restore(s.ID())
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.sessionPayload(restored))
}

// AddTab appends a medication tab and makes it active
func (h *HTTPHandlerImpl) AddTab(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.ValidateTabName(req.Name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, s.AddTab(strings.TrimSpace(req.Name)))
}

// DeleteTab removes a tab; the last remaining tab is kept
func (h *HTTPHandlerImpl) DeleteTab(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	switch err := s.DeleteTab(tabID); err {
	case nil:
		h.RespondWithJSON(w, http.StatusOK, h.sessionPayload(s))
	case session.ErrTabNotFound:
		h.RespondWithError(w, http.StatusNotFound, "Tab not found")
	case session.ErrLastTab:
		h.RespondWithError(w, http.StatusConflict, "A session keeps at least one tab")
	default:
		h.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// ActivateTab switches the active tab
func (h *HTTPHandlerImpl) ActivateTab(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	if err := s.Activate(tabID); err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Tab not found")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.sessionPayload(s))
}

// EditField applies a single structured field edit to one tab.
// Precautions take a list; every other field takes a single value.
func (h *HTTPHandlerImpl) EditField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	var req struct {
		Field  string   `json:"field"`
		Value  string   `json:"value"`
		Values []string `json:"values"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	field, known := instruction.ParseField(req.Field)
	if !known {
		h.RespondWithError(w, http.StatusBadRequest, "Unknown field: "+req.Field)
		return
	}

	if field == instruction.FieldPrecautions && req.Values != nil {
		for _, value := range req.Values {
			if err := h.validator.ValidateText(value); err != nil {
				h.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		state, err := s.ApplyPrecautionsEdit(r.Context(), tabID, req.Values)
		h.writeTabResult(w, state, err)
		return
	}

	if err := h.validator.ValidateText(req.Value); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := s.ApplyFieldEdit(r.Context(), tabID, field, req.Value)
	h.writeTabResult(w, state, err)
}

// ClearField blanks one field and its generated section
func (h *HTTPHandlerImpl) ClearField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "field")
	field, known := instruction.ParseField(name)
	if !known {
		h.RespondWithError(w, http.StatusBadRequest, "Unknown field: "+name)
		return
	}

	state, err := s.ApplyFieldClear(r.Context(), tabID, field)
	h.writeTabResult(w, state, err)
}

// EditEnglishText replaces the English pane with hand-edited text
func (h *HTTPHandlerImpl) EditEnglishText(w http.ResponseWriter, r *http.Request) {
	h.editText(w, r, func(s *session.Session, tabID uuid.UUID, text string) (session.TabState, error) {
		return s.ApplyEnglishEdit(r.Context(), tabID, text)
	})
}

// EditTranslatedText replaces the translated pane with hand-edited text
func (h *HTTPHandlerImpl) EditTranslatedText(w http.ResponseWriter, r *http.Request) {
	h.editText(w, r, func(s *session.Session, tabID uuid.UUID, text string) (session.TabState, error) {
		return s.ApplyTranslatedEdit(r.Context(), tabID, text)
	})
}

func (h *HTTPHandlerImpl) editText(w http.ResponseWriter, r *http.Request, apply func(*session.Session, uuid.UUID, string) (session.TabState, error)) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.ValidateText(req.Text); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := apply(s, tabID, req.Text)
	h.writeTabResult(w, state, err)
}

// SetLanguage switches one tab's target language
func (h *HTTPHandlerImpl) SetLanguage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.ValidateLanguage(req.Language); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.SetLanguage(r.Context(), tabID, req.Language)
	h.writeTabResult(w, state, err)
}

// FinalizeTab emits the print payload for one tab: both panes verbatim
// plus the target language
func (h *HTTPHandlerImpl) FinalizeTab(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}
	tabID, ok := h.requestTabID(w, r)
	if !ok {
		return
	}

	finalized, err := s.Finalize(tabID)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Tab not found")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, finalized)
}

// SetPatient stores the active patient record for the session
func (h *HTTPHandlerImpl) SetPatient(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s.SetPatient(body)
	h.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// GetPatient returns the stored active patient record
func (h *HTTPHandlerImpl) GetPatient(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requestSession(w, r)
	if !ok {
		return
	}

	payload, found := s.Patient()
	if !found {
		h.RespondWithError(w, http.StatusNotFound, "No patient stored for this session")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// SuggestMedications returns catalog names matching the prefix
func (h *HTTPHandlerImpl) SuggestMedications(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	if err := h.validator.ValidateText(prefix); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := h.vocab.Suggest(r.Context(), prefix, 0)
	if err != nil {
		logging.Warn("Medication suggestion failed", "prefix", prefix, "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog unavailable")
		return
	}
	if names == nil {
		names = []string{}
	}

	h.RespondWithJSON(w, http.StatusOK, names)
}

// LookupTerm translates one vocabulary term. An unknown term comes back
// unchanged, mirroring the lookup fallback.
func (h *HTTPHandlerImpl) LookupTerm(w http.ResponseWriter, r *http.Request) {
	category, err := h.validator.ValidateCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	term := chi.URLParam(r, "term")
	if err := h.validator.ValidateText(term); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	lang := r.URL.Query().Get("lang")
	if err := h.validator.ValidateLanguage(lang); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	translated, err := h.vocab.Lookup(r.Context(), category, term, lang)
	if err != nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Vocabulary unavailable")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]string{
		"term":       term,
		"language":   lang,
		"translated": translated,
	})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	data["next_update"] = h.health.CalculateNextUpdate().Format(time.RFC3339)

	h.RespondWithJSON(w, httpStatus, map[string]interface{}{
		"status": status,
		"data":   data,
	})
}
