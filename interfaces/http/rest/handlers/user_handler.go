package handlers

import (
	"net/http"
	"sort"

	"userdir-backend/application/services"
	"userdir-backend/domain/user"
	"userdir-backend/pkg/common"
	appErrors "userdir-backend/pkg/errors"
	"userdir-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// UserHandler handles user management HTTP requests
type UserHandler struct {
	directory *services.DirectoryService
	logger    *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(directory *services.DirectoryService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		directory: directory,
		logger:    logger,
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	UID      string   `json:"uid,omitempty" validate:"omitempty,max=128"`
	Username string   `json:"username" validate:"required,min=1,max=128"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles,omitempty" validate:"omitempty,max=16,dive,min=1,max=64"`
}

// ChangeRequest is one (path, value) pair of a partial update
type ChangeRequest struct {
	Path  []string    `json:"path" validate:"required,min=1,max=3,dive,min=1"`
	Value interface{} `json:"value"`
}

// UpdateUserRequest represents the request body for a partial update
type UpdateUserRequest struct {
	Changes []ChangeRequest `json:"changes" validate:"required,min=1,dive"`
}

// UpdatePasswordRequest represents the request body for a password change
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// UserResponse is the outward shape of a user record. The credential hash is
// never part of it.
type UserResponse struct {
	UID       string   `json:"uid"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	CreatedAt int64    `json:"createdAt"`
	Policies  []string `json:"policies"`
}

func toUserResponse(u *user.User) UserResponse {
	policies := make([]string, 0, len(u.Policies))
	for name, granted := range u.Policies {
		if granted {
			policies = append(policies, name)
		}
	}
	sort.Strings(policies)

	return UserResponse{
		UID:       u.UID,
		Username:  u.Username,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
		Policies:  policies,
	}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	u, err := h.directory.CreateUser(r.Context(), services.CreateUserInput{
		UID:      req.UID,
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		h.respondAppError(w, err, "Failed to create user")
		return
	}

	common.RespondJSON(w, http.StatusCreated, toUserResponse(u))
}

// GetUser handles GET /users/{uid}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	u, err := h.directory.FindUser(r.Context(), services.FindSelector{UID: uid})
	if err != nil {
		h.respondAppError(w, err, "Failed to find user")
		return
	}
	if u == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(u))
}

// FindUser handles GET /users?username=
func (h *UserHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	u, err := h.directory.FindUser(r.Context(), services.FindSelector{Username: username})
	if err != nil {
		h.respondAppError(w, err, "Failed to find user")
		return
	}
	if u == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}

	common.RespondJSON(w, http.StatusOK, toUserResponse(u))
}

// UpdateUser handles PATCH /users/{uid}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req UpdateUserRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	changes := user.NewChangeSet()
	for _, c := range req.Changes {
		if err := changes.Set(c.Value, c.Path...); err != nil {
			h.respondAppError(w, err, "Invalid change")
			return
		}
	}

	if err := h.directory.UpdateUser(r.Context(), uid, changes); err != nil {
		h.respondAppError(w, err, "Failed to update user")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"uid": uid, "message": "user updated"})
}

// UpdatePassword handles PUT /users/{uid}/password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req UpdatePasswordRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.directory.UpdatePassword(r.Context(), uid, req.Password); err != nil {
		h.respondAppError(w, err, "Failed to update password")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"uid": uid, "message": "password updated"})
}

// DeleteUser handles DELETE /users/{uid}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	if err := h.directory.DeleteUser(r.Context(), uid); err != nil {
		h.respondAppError(w, err, "Failed to delete user")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"uid": uid, "message": "user deleted"})
}

// respondAppError maps an AppError onto the HTTP response.
func (h *UserHandler) respondAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr := appErrors.GetAppError(err); appErr != nil {
		h.logger.Warn(fallback,
			zap.String("type", string(appErr.Type)),
			zap.Error(err),
		)
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}

	h.logger.Error(fallback, zap.Error(err))
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
