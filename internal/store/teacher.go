package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/classpulse/classpulse/internal/model"
)

// CreateTeacher inserts a new teacher account. The email column is unique;
// a duplicate registration surfaces as a constraint error.
func (s *Store) CreateTeacher(t model.Teacher) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO teachers (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		t.Name, t.Email, t.PasswordHash, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created teacher account", "id", id, "email", t.Email)
	return id, nil
}

// TeacherByEmail returns a teacher by email, or nil when unknown.
func (s *Store) TeacherByEmail(email string) (*model.Teacher, error) {
	var t model.Teacher
	err := s.db.QueryRow(
		`SELECT id, name, email, password_hash, created_at FROM teachers WHERE email = ?`, email,
	).Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TeacherByID returns a teacher by ID, or nil when unknown.
func (s *Store) TeacherByID(id int64) (*model.Teacher, error) {
	var t model.Teacher
	err := s.db.QueryRow(
		`SELECT id, name, email, password_hash, created_at FROM teachers WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
