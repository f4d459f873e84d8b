package services

import (
	"context"
	"fmt"

	"hrpulse/notify"
	"hrpulse/reports"

	"go.uber.org/zap"
)

type ReportService interface {
	// Generate builds a report; when viewID is set a toast announces the finished file.
	Generate(ctx context.Context, kind, employeeID, viewID string) (*reports.Result, error)
}

type reportService struct {
	generator *reports.Generator
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewReportService(generator *reports.Generator, publisher notify.Publisher, logger *zap.Logger) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reportService{
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *reportService) Generate(ctx context.Context, kind, employeeID, viewID string) (*reports.Result, error) {
	reportType, err := reports.ParseType(kind)
	if err != nil {
		return nil, err
	}

	res, err := s.generator.Build(ctx, reportType, employeeID)
	if err != nil {
		s.logger.Warn("report generation failed", zap.String("type", kind), zap.Error(err))
		if viewID != "" && s.publisher != nil {
			s.publisher.Publish(notify.Notification{
				ViewID:  viewID,
				Level:   notify.LevelWarning,
				Title:   "Report failed",
				Message: fmt.Sprintf("The %s report could not be generated.", kind),
			})
		}
		return nil, err
	}

	if viewID != "" && s.publisher != nil {
		s.publisher.Publish(notify.Notification{
			ViewID:  viewID,
			Level:   notify.LevelSuccess,
			Title:   "Report ready",
			Message: fmt.Sprintf("%s is ready to download.", res.Filename),
		})
	}
	return res, nil
}
