package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type user struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
	password string
}

type ctxKey struct{}

func userFromContext(ctx context.Context) *user {
	u, _ := ctx.Value(ctxKey{}).(*user)
	return u
}

func (s *Server) addUser(email, password, fullName string) *user {
	s.nextUser++
	u := &user{
		ID:       s.nextUser,
		Email:    strings.ToLower(email),
		FullName: fullName,
		IsActive: true,
		password: password,
	}
	s.users[u.Email] = u
	return u
}

// Login creates a session for a seeded user and returns its token, for tests
// that need an authenticated cookie without going through the form endpoint.
func (s *Server) Login(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return "", false
	}
	return s.newSessionLocked(u), true
}

// ExpireSessions drops every session, so the next authenticated call gets 401.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
}

func (s *Server) newSessionLocked(u *user) string {
	token := uuid.NewString()
	s.sessions[token] = u.Email
	return token
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	var missing []Violation
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" {
		missing = append(missing, missingField("body", "username"))
	}
	if password == "" {
		missing = append(missing, missingField("body", "password"))
	}
	if len(missing) > 0 {
		writeViolations(w, missing...)
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(username)]
	if !ok || u.password != password {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Incorrect email or password")
		return
	}
	token := s.newSessionLocked(u)
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeViolations(w, Violation{Loc: []any{"body"}, Msg: "value is not a valid dict", Type: "type_error.dict"})
		return
	}

	var violations []Violation
	if req.Email == "" {
		violations = append(violations, missingField("body", "email"))
	} else if !strings.Contains(req.Email, "@") {
		violations = append(violations, Violation{
			Loc:  []any{"body", "email"},
			Msg:  "value is not a valid email address",
			Type: "value_error.email",
		})
	}
	if req.Password == "" {
		violations = append(violations, missingField("body", "password"))
	}
	if len(violations) > 0 {
		writeViolations(w, violations...)
		return
	}

	s.mu.Lock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "The user with this email already exists in the system")
		return
	}
	u := s.addUser(req.Email, req.Password, req.FullName)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		email, ok := s.sessions[cookie.Value]
		u := s.users[email]
		s.mu.Unlock()

		if !ok || u == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}
