package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/classpulse/classpulse/internal/model"
)

const (
	tokenTTL    = 7 * 24 * time.Hour
	tokenIssuer = "classpulse"
)

// Claims is the JWT payload for teacher tokens.
type Claims struct {
	TeacherID int64 `json:"tid"`
	jwt.RegisteredClaims
}

func (h *Handler) issueToken(teacherID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		TeacherID: teacherID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

func (h *Handler) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(h.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// requireTeacher authenticates the bearer token and puts the teacher account
// into the request context.
func (h *Handler) requireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || tokenString == "" {
			fail(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := h.parseToken(tokenString)
		if err != nil {
			fail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		teacher, err := h.store.TeacherByID(claims.TeacherID)
		if err != nil {
			slog.Error("load teacher", "teacherID", claims.TeacherID, "error", err)
			fail(w, http.StatusInternalServerError, "Failed to load account")
			return
		}
		if teacher == nil {
			fail(w, http.StatusUnauthorized, "Account not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(model.ContextWithTeacher(r.Context(), teacher)))
	})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	existing, err := h.store.TeacherByEmail(req.Email)
	if err != nil {
		slog.Error("lookup teacher", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	if existing != nil {
		fail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("hash password", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	id, err := h.store.CreateTeacher(model.Teacher{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		slog.Error("create teacher", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.writeAuthResponse(w, &model.Teacher{ID: id, Name: req.Name, Email: req.Email})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	teacher, err := h.store.TeacherByEmail(req.Email)
	if err != nil {
		slog.Error("lookup teacher", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	// Same message for unknown email and wrong password.
	if teacher == nil {
		fail(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(req.Password)); err != nil {
		fail(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	h.writeAuthResponse(w, teacher)
}

func (h *Handler) writeAuthResponse(w http.ResponseWriter, teacher *model.Teacher) {
	token, err := h.issueToken(teacher.ID)
	if err != nil {
		slog.Error("issue token", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]any{
			"id":    teacher.ID,
			"name":  teacher.Name,
			"email": teacher.Email,
		},
	})
}
