// Package handler exposes the feedback API over HTTP. Responses follow a
// consistent JSON envelope with a success flag, matching what the web client
// expects.
package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/report"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/summary"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	analytics  *analytics.Aggregator
	summarizer *summary.Summarizer
	reports    *report.Composer
	config     model.ServerConfig
}

// New creates a new Handler.
func New(s *store.Store, a *analytics.Aggregator, sum *summary.Summarizer, rep *report.Composer, cfg model.ServerConfig) *Handler {
	return &Handler{store: s, analytics: a, summarizer: sum, reports: rep, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/teacher/signup", h.handleSignup)
	r.Post("/api/teacher/login", h.handleLogin)

	r.Post("/api/session/start", h.handleStartSession)
	r.Post("/api/feedback/submit", h.handleSubmitFeedback)
	r.Get("/api/analytics/{sessionID}", h.handleAnalytics)
	r.Post("/api/summarize-comments", h.handleSummarize)
	r.Get("/api/session/{sessionID}/qr", h.handleSessionQR)
	r.Get("/api/report/{sessionID}", h.handleReport)

	r.Group(func(r chi.Router) {
		r.Use(h.requireTeacher)
		r.Post("/api/session/start-auth", h.handleStartSessionAuth)
		r.Get("/api/teacher/sessions", h.handleTeacherSessions)
		r.Get("/api/teacher/analytics/latest", h.handleLatestAnalytics)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// fail writes the failure envelope shared by all endpoints.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

type startSessionRequest struct {
	Subject   string `json:"subject"`
	Teacher   string `json:"teacher"`
	Topic     string `json:"topic"`
	ClassName string `json:"className"`
	Section   string `json:"section"`
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.store.CreateSession(store.NewSession{
		Subject:   req.Subject,
		Teacher:   req.Teacher,
		Topic:     req.Topic,
		ClassName: req.ClassName,
		Section:   req.Section,
	})
	if err != nil {
		h.failCreateSession(w, err)
		return
	}
	h.writeSessionCreated(w, sess)
}

func (h *Handler) handleStartSessionAuth(w http.ResponseWriter, r *http.Request) {
	teacher := model.TeacherFromContext(r.Context())
	if teacher == nil {
		fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Teacher == "" {
		req.Teacher = teacher.Name
	}

	sess, err := h.store.CreateSession(store.NewSession{
		Subject:   req.Subject,
		Teacher:   req.Teacher,
		Topic:     req.Topic,
		ClassName: req.ClassName,
		Section:   req.Section,
		TeacherID: &teacher.ID,
	})
	if err != nil {
		h.failCreateSession(w, err)
		return
	}
	h.writeSessionCreated(w, sess)
}

func (h *Handler) failCreateSession(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrValidation) {
		fail(w, http.StatusBadRequest, "Subject, teacher and topic are required")
		return
	}
	slog.Error("create session", "error", err)
	fail(w, http.StatusInternalServerError, "Failed to create session")
}

func (h *Handler) writeSessionCreated(w http.ResponseWriter, sess *model.Session) {
	// sessionId is duplicated at the top level; clients read it directly.
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": sess.SessionID,
		"session":   sess,
		"shareLink": h.reports.ShareLink(sess),
	})
}

type submitFeedbackRequest struct {
	SessionID string `json:"sessionId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// markerCookieName derives the per-session duplicate-submission cookie name.
// The marker is purely advisory: it lives on the client and the server keeps
// no record of who submitted.
func markerCookieName(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return "cp_submitted_" + hex.EncodeToString(sum[:8])
}

func (h *Handler) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req submitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := r.Cookie(markerCookieName(req.SessionID)); err == nil {
		fail(w, http.StatusConflict, "Feedback already submitted for this session")
		return
	}

	if _, err := h.store.InsertFeedback(req.SessionID, req.Rating, req.Comment); err != nil {
		if errors.Is(err, model.ErrValidation) {
			fail(w, http.StatusBadRequest, "Session ID and rating are required")
			return
		}
		slog.Error("insert feedback", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     markerCookieName(req.SessionID),
		Value:    "1",
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Feedback submitted"})
}

// analyticsResponse flattens the aggregate into the envelope so the client
// reads fields at the top level.
type analyticsResponse struct {
	Success bool `json:"success"`
	*model.AnalyticsResult
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	h.writeAnalytics(w, chi.URLParam(r, "sessionID"))
}

func (h *Handler) handleLatestAnalytics(w http.ResponseWriter, r *http.Request) {
	teacher := model.TeacherFromContext(r.Context())
	if teacher == nil {
		fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sess, err := h.store.LatestSessionForTeacher(teacher.ID)
	if err != nil {
		slog.Error("latest session", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to load sessions")
		return
	}
	if sess == nil {
		// Same shape as an unknown-session analytics lookup.
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Session not found"})
		return
	}
	h.writeAnalytics(w, sess.SessionID)
}

func (h *Handler) writeAnalytics(w http.ResponseWriter, sessionID string) {
	res, err := h.analytics.Aggregate(sessionID)
	if err != nil {
		if errors.Is(err, analytics.ErrSessionNotFound) {
			// Unknown session is an expected outcome, not an HTTP error.
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Session not found"})
			return
		}
		slog.Error("aggregate analytics", "sessionID", sessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{Success: true, AnalyticsResult: res})
}

type summarizeRequest struct {
	Comments []string `json:"comments"`
}

func (h *Handler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// An absent or empty list short-circuits before any strategy runs and
	// gets its own message; blank-only comments fall through to the
	// summarizer's empty-set text.
	if len(req.Comments) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"summary":        "No comments available.",
			"isFallback":     true,
			"sampleComments": []string{},
		})
		return
	}

	sum := h.summarizer.Summarize(r.Context(), req.Comments)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"summary":        sum.Text,
		"isFallback":     !sum.UsedRemoteModel,
		"sampleComments": sum.SampleComments,
	})
}

func (h *Handler) handleTeacherSessions(w http.ResponseWriter, r *http.Request) {
	teacher := model.TeacherFromContext(r.Context())
	if teacher == nil {
		fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sessions, err := h.store.ListSessionsForTeacher(teacher.ID)
	if err != nil {
		slog.Error("list sessions", "teacherID", teacher.ID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to load sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sessions": sessions})
}

func (h *Handler) handleSessionQR(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.store.GetSession(sessionID)
	if err != nil {
		slog.Error("load session", "sessionID", sessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if sess == nil {
		fail(w, http.StatusNotFound, "Session not found")
		return
	}

	size := 256
	if s := r.URL.Query().Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}

	png, err := report.QRPNG(h.reports.ShareLink(sess), size)
	if err != nil {
		slog.Error("render QR code", "sessionID", sessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	res, err := h.analytics.Aggregate(sessionID)
	if err != nil {
		if errors.Is(err, analytics.ErrSessionNotFound) {
			fail(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("aggregate analytics", "sessionID", sessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}

	comments := make([]string, 0, len(res.Feedbacks))
	for _, f := range res.Feedbacks {
		comments = append(comments, f.Comment)
	}
	sum := h.summarizer.Summarize(r.Context(), comments)

	pdf, err := h.reports.Compose(res, sum)
	if err != nil {
		slog.Error("compose report", "sessionID", sessionID, "error", err)
		fail(w, http.StatusInternalServerError, "Failed to compose report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "feedback-report-"+sessionID+".pdf"))
	w.Write(pdf)
}
