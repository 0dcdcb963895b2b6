package controllers

import (
	"net/http"

	"quill/app/models"
	"quill/app/response"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// ReportController is the moderation queue.
type ReportController struct {
	reports *services.ReportService
	rs      *response.Responder
}

func NewReportController(reports *services.ReportService, rs *response.Responder) *ReportController {
	return &ReportController{reports: reports, rs: rs}
}

func (c *ReportController) Index(w http.ResponseWriter, r *http.Request) {
	status := models.ReportStatus(r.URL.Query().Get("status"))
	reports, err := c.reports.List(principal(r), status)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"reports": reports})
}

func (c *ReportController) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ReportStatusInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	report, err := c.reports.SetStatus(principal(r), mux.Vars(r)["reportId"], in.Status)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Report updated successfully", "report": report})
}
