package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/sessionid"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		teacher TEXT NOT NULL,
		topic TEXT NOT NULL,
		class_name TEXT NOT NULL DEFAULT '',
		section TEXT NOT NULL DEFAULT '',
		teacher_id INTEGER,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_session ON feedback(session_id);

	CREATE TABLE IF NOT EXISTS teachers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NewSession describes a session creation request. TeacherID is set for
// authenticated creation and selects the short-code identifier format.
type NewSession struct {
	Subject   string
	Teacher   string
	Topic     string
	ClassName string
	Section   string
	TeacherID *int64
}

// CreateSession validates the request, assigns an identifier (short code for
// owned sessions, public UUID otherwise) and persists the session. Creation
// is not idempotent: every call produces a new session.
func (s *Store) CreateSession(req NewSession) (*model.Session, error) {
	if strings.TrimSpace(req.Subject) == "" ||
		strings.TrimSpace(req.Teacher) == "" ||
		strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("%w: subject, teacher and topic are required", model.ErrValidation)
	}

	var id string
	if req.TeacherID != nil {
		code, err := sessionid.UniqueShortCode(s.SessionExists)
		if err != nil {
			return nil, fmt.Errorf("assign short code: %w", err)
		}
		id = code
	} else {
		id = sessionid.PublicID()
	}

	sess := &model.Session{
		SessionID: id,
		Subject:   req.Subject,
		Teacher:   req.Teacher,
		Topic:     req.Topic,
		ClassName: req.ClassName,
		Section:   req.Section,
		TeacherID: req.TeacherID,
		CreatedAt: time.Now(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, subject, teacher, topic, class_name, section, teacher_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.SessionID, sess.Subject, sess.Teacher, sess.Topic, sess.ClassName, sess.Section, sess.TeacherID, sess.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SessionExists reports whether a session with the given identifier is stored.
func (s *Store) SessionExists(sessionID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// GetSession returns a session by identifier, or nil when unknown.
func (s *Store) GetSession(sessionID string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT session_id, subject, teacher, topic, class_name, section, teacher_id, created_at
		 FROM sessions WHERE session_id = ?`, sessionID,
	)
	return scanSession(row)
}

// ListSessionsForTeacher returns the sessions owned by a teacher, newest first.
func (s *Store) ListSessionsForTeacher(teacherID int64) ([]model.Session, error) {
	rows, err := s.db.Query(
		`SELECT session_id, subject, teacher, topic, class_name, section, teacher_id, created_at
		 FROM sessions WHERE teacher_id = ? ORDER BY created_at DESC, rowid DESC`, teacherID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// LatestSessionForTeacher returns a teacher's most recent session, or nil
// when they have none.
func (s *Store) LatestSessionForTeacher(teacherID int64) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT session_id, subject, teacher, topic, class_name, section, teacher_id, created_at
		 FROM sessions WHERE teacher_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, teacherID,
	)
	return scanSession(row)
}

// InsertFeedback appends one feedback entry. The session identifier is not
// checked against the session table: submissions for unknown sessions are
// recorded and only filtered out at aggregation time.
func (s *Store) InsertFeedback(sessionID string, rating int, comment string) (int64, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, fmt.Errorf("%w: sessionId is required", model.ErrValidation)
	}
	if rating == 0 {
		return 0, fmt.Errorf("%w: rating is required", model.ErrValidation)
	}
	res, err := s.db.Exec(
		`INSERT INTO feedback (session_id, rating, comment, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, rating, comment, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListFeedback returns all entries for a session in insertion order.
func (s *Store) ListFeedback(sessionID string) ([]model.FeedbackEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, rating, comment, created_at FROM feedback WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.FeedbackEntry
	for rows.Next() {
		var e model.FeedbackEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Rating, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanSession(row *sql.Row) (*model.Session, error) {
	var sess model.Session
	var teacherID sql.NullInt64
	err := row.Scan(&sess.SessionID, &sess.Subject, &sess.Teacher, &sess.Topic,
		&sess.ClassName, &sess.Section, &teacherID, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if teacherID.Valid {
		sess.TeacherID = &teacherID.Int64
	}
	return &sess, nil
}

func scanSessionRows(rows *sql.Rows) (*model.Session, error) {
	var sess model.Session
	var teacherID sql.NullInt64
	err := rows.Scan(&sess.SessionID, &sess.Subject, &sess.Teacher, &sess.Topic,
		&sess.ClassName, &sess.Section, &teacherID, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	if teacherID.Valid {
		sess.TeacherID = &teacherID.Int64
	}
	return &sess, nil
}
