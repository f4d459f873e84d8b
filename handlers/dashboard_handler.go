package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"hrpulse/filters"
	"hrpulse/notify"
	service "hrpulse/services"
	"hrpulse/utils"
)

// requestTimeout bounds a request, including ?wait=true, above the longest section timeout.
const requestTimeout = 15 * time.Second

type CreateViewRequest struct {
	Page       string `json:"page" validate:"required,oneof=engagement journey retention reports"`
	EmployeeID string `json:"employee_id"`
}

type SelectEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
}

type UpdateFiltersRequest struct {
	Filters map[string]string `json:"filters" validate:"required,min=1"`
}

type DashboardHandler struct {
	service service.DashboardService
	bus     *notify.Bus
}

func NewDashboardHandler(service service.DashboardService, bus *notify.Bus) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		bus:     bus,
	}
}

func wantsWait(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}

func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.HandleDataResponse(w, "OK", map[string]int{"open_views": len(h.service.ListViews(r.Context()))}, http.StatusOK)
}

func (h *DashboardHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	utils.HandleDataResponse(w, "Pages retrieved successfully", h.service.ListPages(), http.StatusOK)
}

func (h *DashboardHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.service.ListCollection(ctx, r.PathValue("name"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Collection retrieved successfully", data, http.StatusOK)
}

func (h *DashboardHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	var req CreateViewRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.service.CreateView(ctx, req.Page, req.EmployeeID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "View created successfully", view, http.StatusCreated)
}

func (h *DashboardHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	utils.HandleDataResponse(w, "Views retrieved successfully", h.service.ListViews(r.Context()), http.StatusOK)
}

func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.service.GetView(ctx, r.PathValue("id"), wantsWait(r))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "View retrieved successfully", view, http.StatusOK)
}

func (h *DashboardHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseView(r.Context(), r.PathValue("id")); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleMessageResponse(w, "View closed successfully", http.StatusOK)
}

func (h *DashboardHandler) SelectEmployee(w http.ResponseWriter, r *http.Request) {
	var req SelectEmployeeRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.service.SelectEmployee(ctx, r.PathValue("id"), req.EmployeeID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Employee selected successfully", view, http.StatusOK)
}

func (h *DashboardHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	section, err := h.service.GetSection(ctx, r.PathValue("id"), r.PathValue("section"), wantsWait(r))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Section retrieved successfully", section, http.StatusOK)
}

func (h *DashboardHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req UpdateFiltersRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	section, err := h.service.UpdateFilters(r.Context(), r.PathValue("id"), r.PathValue("section"), filters.Values(req.Filters))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Filters updated successfully", section, http.StatusOK)
}

func (h *DashboardHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	section, reset, err := h.service.ResetFilters(r.Context(), r.PathValue("id"), r.PathValue("section"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	message := "Filters reset successfully"
	if !reset {
		message = "Filters already at defaults"
	}
	utils.HandleDataResponse(w, message, section, http.StatusOK)
}

func (h *DashboardHandler) RetrySection(w http.ResponseWriter, r *http.Request) {
	section, err := h.service.RetrySection(r.Context(), r.PathValue("id"), r.PathValue("section"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.HandleDataResponse(w, "Retry requested", section, http.StatusAccepted)
}

// Events streams the view's toasts over a websocket. Toasts published before the first
// connection, such as those of the initial loads, arrive right after it opens.
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.service.GetView(r.Context(), id, false); err != nil {
		utils.HandleError(w, err)
		return
	}
	h.bus.ServeWebSocket(w, r, id)
}
