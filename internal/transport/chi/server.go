package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
	"github.com/kailas-cloud/userdex/internal/logger"
	healthuc "github.com/kailas-cloud/userdex/internal/usecase/health"
)

// Response messages.
const (
	msgUserAdded     = "User added successfully."
	msgAddFailed     = "Failed to add user."
	msgUserUpdated   = "User updated successfully."
	msgUpdateFailed  = "Failed to update user."
	msgUserNotFound  = "User not found!"
	msgNoUsers       = "No users found!"
	msgUserRemoved   = "User removed successfully."
	msgInvalidBody   = "Invalid request body."
	msgIndexRequired = "indexName is required."
	msgInvalidKey    = "Invalid user key."
	msgInternalError = "internal error"
	indexCreatedFmt  = "Index %s created or already exist."
	paramKey         = "key"
	paramIndexName   = "indexName"
	contentTypeText  = "text/plain; charset=utf-8"
	contentTypeJSON  = "application/json"
)

// Users is the user operations contract consumed by the HTTP layer.
type Users interface {
	CreateIndexIfNotExists(ctx context.Context, name string) error
	AddOrUpdate(ctx context.Context, u domuser.User) (bool, error)
	Get(ctx context.Context, key string) (domuser.User, bool, error)
	GetAll(ctx context.Context) ([]domuser.User, bool, error)
	Remove(ctx context.Context, key string) (bool, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the users API.
type Server struct {
	users  Users
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(users Users, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{users: users, health: health, logger: logger}
}

// CreateIndex handles POST /api/users/create-index?indexName=.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var indexName string
	err := runtime.BindQueryParameter("form", true, true, paramIndexName, r.URL.Query(), &indexName)
	if err != nil || indexName == "" {
		writeText(w, http.StatusBadRequest, msgIndexRequired)
		return
	}

	if err := s.users.CreateIndexIfNotExists(r.Context(), indexName); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf(indexCreatedFmt, indexName))
}

// AddUser handles POST /api/users/add-user.
func (s *Server) AddUser(w http.ResponseWriter, r *http.Request) {
	s.upsert(w, r, msgUserAdded, msgAddFailed)
}

// UpdateUser handles POST /api/users/Update-user.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	s.upsert(w, r, msgUserUpdated, msgUpdateFailed)
}

func (s *Server) upsert(w http.ResponseWriter, r *http.Request, okMsg, failMsg string) {
	var u domuser.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	ok, err := s.users.AddOrUpdate(r.Context(), u)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !ok {
		writeText(w, http.StatusInternalServerError, failMsg)
		return
	}

	writeText(w, http.StatusOK, okMsg)
}

// GetUser handles GET /api/users/get-user/{key}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	key, ok := bindKey(w, r)
	if !ok {
		return
	}

	u, found, err := s.users.Get(r.Context(), key)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !found {
		writeText(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// GetAllUsers handles GET /api/users/get-all-users.
func (s *Server) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, ok, err := s.users.GetAll(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !ok {
		writeText(w, http.StatusNotFound, msgNoUsers)
		return
	}
	if users == nil {
		users = []domuser.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

// RemoveUser handles DELETE /api/users/remove-user/{key}.
func (s *Server) RemoveUser(w http.ResponseWriter, r *http.Request) {
	key, ok := bindKey(w, r)
	if !ok {
		return
	}

	removed, err := s.users.Remove(r.Context(), key)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !removed {
		writeText(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	writeText(w, http.StatusOK, msgUserRemoved)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// bindKey decodes the {key} segment once; routing leaves it percent-encoded.
func bindKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, paramKey))
	if err != nil || key == "" {
		writeText(w, http.StatusBadRequest, msgInvalidKey)
		return "", false
	}
	return key, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("internal error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeText(w, http.StatusInternalServerError, msgInternalError)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
