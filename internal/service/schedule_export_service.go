package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
	appErrors "github.com/sapta-dev/bimbel-admin-api/pkg/errors"
	"github.com/sapta-dev/bimbel-admin-api/pkg/export"
)

// Export formats supported by the schedule export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var scheduleExportHeaders = []string{"Date", "Day", "Start", "End", "Class", "Teacher", "Room", "Status", "Notes"}

type exportLessonLister interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
}

// ScheduleExportService renders filtered lesson schedules as CSV or PDF
// downloads.
type ScheduleExportService struct {
	lessons exportLessonLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewScheduleExportService instantiates ScheduleExportService.
func NewScheduleExportService(lessons exportLessonLister, logger *zap.Logger) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleExportService{
		lessons: lessons,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// Export renders the filtered lessons in the requested format and returns
// the payload with its content type.
func (s *ScheduleExportService) Export(ctx context.Context, filter models.LessonFilter, format string) ([]byte, string, error) {
	// Exports ignore pagination and dump the full filtered range.
	filter.Page = 1
	filter.PageSize = 100

	var rows []map[string]string
	for {
		lessons, total, err := s.lessons.List(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons for export")
		}
		for _, lesson := range lessons {
			rows = append(rows, exportRow(lesson))
		}
		if len(rows) >= total || len(lessons) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{Title: exportTitle(filter), Headers: scheduleExportHeaders, Rows: rows}
	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func exportTitle(filter models.LessonFilter) string {
	title := "Lesson Schedule"
	if filter.DateFrom != nil && filter.DateTo != nil {
		title = fmt.Sprintf("%s %s to %s", title, filter.DateFrom.Format("2006-01-02"), filter.DateTo.Format("2006-01-02"))
	}
	return title
}

func exportRow(lesson models.Lesson) map[string]string {
	notes := ""
	if lesson.Notes != nil {
		notes = *lesson.Notes
	}
	return map[string]string{
		"Date":    lesson.ScheduledDate.Format("2006-01-02"),
		"Day":     lesson.ScheduledDate.Weekday().String(),
		"Start":   lesson.StartTime,
		"End":     lesson.EndTime,
		"Class":   lesson.ClassID,
		"Teacher": lesson.TeacherID,
		"Room":    lesson.Room,
		"Status":  string(lesson.Status),
		"Notes":   notes,
	}
}
