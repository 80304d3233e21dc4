package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"skinmuse/internal/models"
	"skinmuse/internal/pdf"
	"skinmuse/internal/repositories"
)

type AdminService interface {
	ActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error)
	ActivityReport(ctx context.Context, w io.Writer, limit int) error
}

type adminService struct {
	logs   repositories.ActivityLogRepository
	report pdf.ReportGenerator
	now    func() time.Time
}

func NewAdminService(logs repositories.ActivityLogRepository, report pdf.ReportGenerator) AdminService {
	return &adminService{logs: logs, report: report, now: time.Now}
}

func (s *adminService) ActivityLogs(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return s.logs.List(ctx, limit)
}

func (s *adminService) ActivityReport(ctx context.Context, w io.Writer, limit int) error {
	logs, err := s.logs.List(ctx, limit)
	if err != nil {
		return err
	}
	if err := s.report.ActivityReport(w, logs, s.now()); err != nil {
		return fmt.Errorf("activity report: %w", err)
	}
	return nil
}
