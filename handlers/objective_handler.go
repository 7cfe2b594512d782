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

type ObjectiveHandler struct {
	service service.ObjectiveService
	log     *zap.Logger
}

func NewObjectiveHandler(service service.ObjectiveService, log *zap.Logger) *ObjectiveHandler {
	return &ObjectiveHandler{
		service: service,
		log:     log,
	}
}

func (h *ObjectiveHandler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	var req models.CreateObjectiveRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := h.service.Create(ctx, middleware.PrincipalFromContext(r.Context()), &req)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "OKR created successfully", created, http.StatusCreated)
}

func (h *ObjectiveHandler) GetObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseObjectID(w, r, "id", "OKR")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	detail, err := h.service.Get(ctx, middleware.PrincipalFromContext(r.Context()), id)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "OKR retrieved successfully", detail, http.StatusOK)
}

func (h *ObjectiveHandler) ListObjectives(w http.ResponseWriter, r *http.Request) {
	filter, err := utils.ParseFilter(r)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	objectives, err := h.service.List(ctx, middleware.PrincipalFromContext(r.Context()), filter)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "OKRs retrieved successfully", objectives, http.StatusOK)
}

func (h *ObjectiveHandler) UpdateObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseObjectID(w, r, "id", "OKR")
	if !ok {
		return
	}

	var req models.UpdateObjectiveRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := h.service.Update(ctx, middleware.PrincipalFromContext(r.Context()), id, &req)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "OKR updated successfully", result, http.StatusOK)
}

func (h *ObjectiveHandler) DeleteObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseObjectID(w, r, "id", "OKR")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, middleware.PrincipalFromContext(r.Context()), id); err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleMessageResponse(w, "OKR deleted successfully", http.StatusOK)
}
