package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/cache"
	"quill/app/models"
	"quill/app/repositories"
)

type ReportInput struct {
	Reason string `json:"reason"`
}

type ReportStatusInput struct {
	Status models.ReportStatus `json:"status"`
}

// ReportService files and moderates post reports. Admins may move a report
// to any status.
type ReportService struct {
	reports repositories.ReportRepository
	posts   repositories.PostRepository
	cache   cache.Invalidator
	now     func() time.Time
}

func NewReportService(reports repositories.ReportRepository, posts repositories.PostRepository, inv cache.Invalidator) *ReportService {
	return &ReportService{reports: reports, posts: posts, cache: inv, now: time.Now}
}

func (s *ReportService) Create(p *models.Principal, postID string, in ReportInput) (*models.PostReport, error) {
	if err := authz.RequireAuth(p); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(postID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	now := s.now()
	report := &models.PostReport{
		PostID:     postID,
		ReporterID: p.ID,
		Reason:     strings.TrimSpace(in.Reason),
		Status:     models.ReportPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := models.Validate(report); err != nil {
		return nil, err
	}

	err := s.reports.Create(report)
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return nil, apperr.Conflict("You have already reported this post")
	case isNotFound(err):
		return nil, apperr.NotFound("Post not found")
	case err != nil:
		return nil, fmt.Errorf("create report: %w", err)
	}

	invalidate(s.cache, cache.ClassReports)
	return report, nil
}

// List returns reports, newest first. An empty status lists all.
func (s *ReportService) List(p *models.Principal, status models.ReportStatus) ([]*models.PostReport, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.BadRequest("Invalid status")
	}
	reports, err := s.reports.List(status)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) SetStatus(p *models.Principal, id string, status models.ReportStatus) (*models.PostReport, error) {
	if err := authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.BadRequest("Invalid status")
	}

	report := &models.PostReport{ID: id, Status: status, UpdatedAt: s.now()}
	err := s.reports.Update(report)
	if isNotFound(err) {
		return nil, apperr.NotFound("Report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}

	invalidate(s.cache, cache.ClassReports)
	return report, nil
}
