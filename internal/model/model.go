package model

import (
	"context"
	"errors"
	"time"
)

// ErrValidation marks a request rejected for a missing required field.
// Handlers translate it into a 400 response; it is never retried.
var ErrValidation = errors.New("validation error")

// Session is one teacher-initiated feedback collection window. Sessions are
// created exactly once, never mutated and never deleted.
type Session struct {
	SessionID string    `json:"sessionId"`
	Subject   string    `json:"subject"`
	Teacher   string    `json:"teacher"`
	Topic     string    `json:"topic"`
	ClassName string    `json:"className"`
	Section   string    `json:"section"`
	TeacherID *int64    `json:"teacherId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedbackEntry is one student's anonymous rating plus optional comment
// against a session. Entries are append-only.
type FeedbackEntry struct {
	ID        int64     `json:"-"`
	SessionID string    `json:"-"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Teacher is an account that owns sessions started through the
// authenticated endpoint.
type Teacher struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AnalyticsResult is everything downstream consumers (charts, summarizer,
// report composer) need for one session: the aggregates plus the full raw
// entry list. Field names follow the wire contract of the feedback API.
type AnalyticsResult struct {
	SessionID      string          `json:"sessionId"`
	ClassName      string          `json:"className"`
	Section        string          `json:"section"`
	Subject        string          `json:"subject"`
	Teacher        string          `json:"teacher"`
	Topic          string          `json:"topic"`
	TotalResponses int             `json:"totalResponses"`
	AvgRating      float64         `json:"avgRating"`
	Feedbacks      []FeedbackEntry `json:"feedbacks"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	BaseURL       string // public URL students reach; embedded in share links
	JWTSecret     string
	SecureCookies bool // Set Secure flag on the submission marker cookie
}

type teacherCtxKey struct{}

// ContextWithTeacher stores the authenticated teacher in the request context.
func ContextWithTeacher(ctx context.Context, t *Teacher) context.Context {
	return context.WithValue(ctx, teacherCtxKey{}, t)
}

// TeacherFromContext retrieves the authenticated teacher from context, or nil.
func TeacherFromContext(ctx context.Context) *Teacher {
	t, _ := ctx.Value(teacherCtxKey{}).(*Teacher)
	return t
}
