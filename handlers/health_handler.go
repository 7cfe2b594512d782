package handlers

import (
	"context"
	"net/http"
	"time"

	"okrproject/database"
	"okrproject/utils"

	"go.uber.org/zap"
)

type HealthHandler struct {
	db  database.Pinger
	log *zap.Logger
}

func NewHealthHandler(db database.Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	utils.HandleMessageResponse(w, "ok", http.StatusOK)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		utils.HandleMessageResponse(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	utils.HandleMessageResponse(w, "ready", http.StatusOK)
}
