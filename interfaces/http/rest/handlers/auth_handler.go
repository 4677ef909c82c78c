package handlers

import (
	"net/http"
	"sort"

	"userdir-backend/application/services"
	"userdir-backend/pkg/auth"
	"userdir-backend/pkg/common"
	"userdir-backend/pkg/utils"

	"go.uber.org/zap"
)

// AuthHandler issues tokens after verifying directory credentials
type AuthHandler struct {
	directory *services.DirectoryService
	generator *auth.Generator
	logger    *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(directory *services.DirectoryService, generator *auth.Generator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		directory: directory,
		generator: generator,
		logger:    logger,
	}
}

// LoginRequest represents the request body for a login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated identity
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	u, err := h.directory.FindUser(r.Context(), services.FindSelector{Username: req.Username})
	if err != nil {
		h.logger.Error("Login lookup failed", zap.String("username", req.Username), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	// Missing user and wrong password answer identically
	if u == nil || !h.directory.VerifyPassword(u, req.Password) {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
		return
	}

	policies := make([]string, 0, len(u.Policies))
	for name, granted := range u.Policies {
		if granted {
			policies = append(policies, name)
		}
	}
	sort.Strings(policies)

	token, err := h.generator.GenerateToken(u.UID, u.Username, u.Roles, policies)
	if err != nil {
		h.logger.Error("Token generation failed", zap.String("uid", u.UID), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	common.RespondJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  toUserResponse(u),
	})
}
