package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chatdiary/chatdiary-go/internal/ai"
	"github.com/chatdiary/chatdiary-go/internal/middleware"
	"github.com/chatdiary/chatdiary-go/internal/model"
	"github.com/chatdiary/chatdiary-go/internal/service"
)

// DiaryHandler handles HTTP requests for diary conversation, analysis, and entries.
type DiaryHandler struct {
	service *service.DiaryService
}

// NewDiaryHandler creates a new DiaryHandler.
func NewDiaryHandler(svc *service.DiaryService) *DiaryHandler {
	return &DiaryHandler{service: svc}
}

// HandleChat handles POST /api/v1/diary/chat requests. The request carries the
// full transcript so far; the response is the assistant's next reply.
func (h *DiaryHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	resp, err := h.service.Chat(r.Context(), req.Turns)
	if err != nil {
		writeDiaryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleAnalyze handles POST /api/v1/diary/analyze requests.
func (h *DiaryHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	resp, err := h.service.Analyze(r.Context(), req.Turns)
	if err != nil {
		writeDiaryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSaveEntry handles POST /api/v1/diary/entries requests.
func (h *DiaryHandler) HandleSaveEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	resp, err := h.service.SaveEntry(r.Context(), userID, req)
	if err != nil {
		writeDiaryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleListEntries handles GET /api/v1/diary/entries requests.
func (h *DiaryHandler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID)
	if err != nil {
		writeDiaryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleGetEntry handles GET /api/v1/diary/entries/{entry_id} requests.
func (h *DiaryHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "entry_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid entry id"))
		return
	}

	details, err := h.service.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		writeDiaryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// HandleEmotionSeries handles GET /api/v1/diary/emotions requests.
func (h *DiaryHandler) HandleEmotionSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	points, err := h.service.EmotionSeries(r.Context(), userID)
	if err != nil {
		writeDiaryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, points)
}

// writeDiaryError maps diary service and analysis errors to HTTP statuses.
func writeDiaryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTranscriptRequired),
		errors.Is(err, service.ErrSummaryRequired),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrEmotionOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, ai.ErrUnconfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("ai analysis is not configured"))
	case errors.Is(err, ai.ErrMalformedResponse), errors.Is(err, ai.ErrInvalidContent), errors.Is(err, ai.ErrTransport):
		writeJSON(w, http.StatusBadGateway, errorResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
