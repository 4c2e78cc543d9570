package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealforge/mealforge-go/internal/model"
)

type (
	registerIn struct {
		Name        string             `json:"name"`
		Email       string             `json:"email"`
		Password    string             `json:"password"`
		Preferences *model.Preferences `json:"preferences"`
	}

	loginIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	changePasswordIn struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.Email) == "" {
		fields["email"] = "required"
	}
	if in.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "missing required fields", fields)
		return
	}
	if len(in.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters",
			map[string]string{"password": "must be at least 6 characters"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[email]; exists {
		writeError(w, http.StatusConflict, "an account with this email already exists",
			map[string]string{"email": "already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password", nil)
		return
	}

	preferences := model.Preferences{SkillLevel: "beginner"}
	if in.Preferences != nil {
		preferences = *in.Preferences
	}

	acc := &account{
		profile: model.Profile{
			ID:           uuid.NewString(),
			Name:         strings.TrimSpace(in.Name),
			Email:        email,
			Preferences:  preferences,
			SavedRecipes: []string{},
			CreatedAt:    time.Now().UTC(),
		},
		passwordHash: hash,
	}
	s.accounts[acc.profile.ID] = acc
	s.emailIndex[email] = acc.profile.ID

	token, err := s.mintToken(acc.profile.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}

	writeData(w, http.StatusCreated, map[string]any{"token": token, "user": acc.profile})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.emailIndex[email]
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	acc := s.accounts[userID]

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(in.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}

	now := time.Now().UTC()
	acc.profile.LastLoginAt = &now

	token, err := s.mintToken(acc.profile.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"token": token, "user": acc.profile})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	// Tokens are stateless; logout is an acknowledgment.
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	acc := accountFromContext(r.Context())

	s.mu.Lock()
	profile := acc.profile
	s.mu.Unlock()

	writeData(w, http.StatusOK, map[string]any{"user": profile})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if update.IsEmpty() {
		writeError(w, http.StatusBadRequest, "profile update has no fields", nil)
		return
	}

	acc := accountFromContext(r.Context())

	s.mu.Lock()
	if update.Name != nil {
		acc.profile.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		delete(s.emailIndex, acc.profile.Email)
		s.emailIndex[email] = acc.profile.ID
		acc.profile.Email = email
	}
	if update.Preferences != nil {
		acc.profile.Preferences = *update.Preferences
	}
	profile := acc.profile
	s.mu.Unlock()

	writeData(w, http.StatusOK, map[string]any{"user": profile})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if len(in.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters",
			map[string]string{"newPassword": "must be at least 6 characters"})
		return
	}

	acc := accountFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(in.CurrentPassword)); err != nil {
		writeError(w, http.StatusBadRequest, "current password is incorrect",
			map[string]string{"currentPassword": "incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password", nil)
		return
	}
	acc.passwordHash = hash

	w.WriteHeader(http.StatusNoContent)
}
