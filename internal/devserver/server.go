// Package devserver is an in-memory implementation of the mealforge REST
// contract, used for local development and end-to-end tests. It is a test
// fixture, not a product backend: accounts and recipes live in process
// memory and disappear on restart.
package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/pkg/log"
)

const defaultTokenTTL = 24 * time.Hour

type (
	Config struct {
		JWTSecret []byte
		TokenTTL  time.Duration
	}

	Server struct {
		cfg    Config
		logger log.Logger

		mu          sync.Mutex
		accounts    map[string]*account // keyed by user ID
		emailIndex  map[string]string   // lower-cased email -> user ID
		recipeStore map[string]model.Recipe
	}

	account struct {
		profile      model.Profile
		passwordHash []byte
	}

	contextKey int
)

const accountContextKey contextKey = iota

func New(cfg Config, logger log.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	return &Server{
		cfg:         cfg,
		logger:      logger,
		accounts:    map[string]*account{},
		emailIndex:  map[string]string{},
		recipeStore: map[string]model.Recipe{},
	}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/auth/change-password", s.handleChangePassword).Methods(http.MethodPut)
	authed.HandleFunc("/recipes/generate", s.handleGenerateRecipe).Methods(http.MethodPost)
	authed.HandleFunc("/recipes/saved", s.handleSavedRecipes).Methods(http.MethodGet)
	authed.HandleFunc("/recipes/{recipeID}/save", s.handleSaveRecipe).Methods(http.MethodPost)
	authed.HandleFunc("/recipes/{recipeID}/save", s.handleUnsaveRecipe).Methods(http.MethodDelete)

	return router
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}

		userID, err := s.verifyToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		s.mu.Lock()
		acc, ok := s.accounts[userID]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "unknown account", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountContextKey, acc)))
	})
}

func (s *Server) mintToken(userID string) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TokenTTL).Unix(),
	}).SignedString(s.cfg.JWTSecret)
}

func (s *Server) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(
		tokenString,
		func(*jwt.Token) (any, error) { return s.cfg.JWTSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", err
	}

	return token.Claims.GetSubject()
}

func accountFromContext(ctx context.Context) *account {
	acc, _ := ctx.Value(accountContextKey).(*account)
	return acc
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, statusCode int, message string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	body := map[string]any{"message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	_ = json.NewEncoder(w).Encode(body)
}
