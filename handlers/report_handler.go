package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "okrproject/middlewares"
	"okrproject/okr"
	service "okrproject/services"
	"okrproject/utils"

	"go.uber.org/zap"
)

type ReportHandler struct {
	service service.ReportService
	log     *zap.Logger
}

func NewReportHandler(service service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := utils.ParseFilter(r)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, middleware.PrincipalFromContext(r.Context()), filter)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Dashboard retrieved successfully", dashboard, http.StatusOK)
}

func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	filter, err := utils.ParseFilter(r)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	report, err := h.service.Report(ctx, middleware.PrincipalFromContext(r.Context()), filter)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Report retrieved successfully", report, http.StatusOK)
}

// Directory takes the user filters (search, department, designation) and
// narrows the counted objectives by quarter and date range only.
func (h *ReportHandler) Directory(w http.ResponseWriter, r *http.Request) {
	filter, err := utils.ParseFilter(r)
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}
	objectiveFilter := okr.Filter{
		Category: filter.Category,
		Quarter:  filter.Quarter,
		From:     filter.From,
		To:       filter.To,
		Status:   filter.Status,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	directory, err := h.service.Directory(ctx, middleware.PrincipalFromContext(r.Context()), objectiveFilter, utils.ParseDirectoryFilter(r))
	if err != nil {
		utils.HandleServiceError(w, h.log, err)
		return
	}

	utils.HandleDataResponse(w, "Directory retrieved successfully", directory, http.StatusOK)
}
