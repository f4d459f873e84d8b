package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"hrpulse/reports"
	service "hrpulse/services"
	"hrpulse/utils"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// Download builds the report named by {type} and sends it as an attachment. The optional
// employee_id query scopes the journey report; view_id receives a toast when it is done.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	query := r.URL.Query()
	res, err := h.service.Generate(ctx, r.PathValue("type"), query.Get("employee_id"), query.Get("view_id"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", reports.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Content)))
	w.Header().Set("X-Report-Rows", strconv.Itoa(res.Summary.Rows))
	w.WriteHeader(http.StatusOK)
	bytes.NewReader(res.Content).WriteTo(w)
}
