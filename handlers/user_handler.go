package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "okrproject/middlewares"
	"okrproject/models"
	service "okrproject/services"
	"okrproject/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service service.UserService
	log     *zap.Logger
}

func NewUserHandler(service service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users, err := h.service.List(ctx, middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Users retrieved successfully", users, http.StatusOK)
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseObjectID(w, r, "id", "user")
	if !ok {
		return
	}

	var req models.UpdateRoleRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.service.UpdateRole(ctx, middleware.PrincipalFromContext(r.Context()), id, req.Role)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Role updated successfully", user, http.StatusOK)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseObjectID(w, r, "id", "user")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.Delete(ctx, middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "User deleted successfully", result, http.StatusOK)
}

func (h *UserHandler) BulkUpdateRoles(w http.ResponseWriter, r *http.Request) {
	var req models.BulkRoleUpdateRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.BulkUpdateRoles(ctx, middleware.PrincipalFromContext(r.Context()), req.Updates)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleBatchResponse(w, "Roles updated", result)
}

func (h *UserHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDeleteRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.BulkDelete(ctx, middleware.PrincipalFromContext(r.Context()), req.UserIDs)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleBatchResponse(w, "Users deleted", result)
}
