package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-schedule-api/internal/models"
	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
	"github.com/noah-isme/lms-schedule-api/pkg/export"
)

// ExportFormat enumerates the supported report encodings.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and its metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders progress summaries into downloadable reports.
type ExportService struct {
	progress *ProgressService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	title    string
	prefix   string
	maxRows  int
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. maxRows caps how many data
// rows a rendered report may carry; non-positive means unbounded.
func NewExportService(progress *ProgressService, title, prefix string, maxRows int, logger *zap.Logger) *ExportService {
	if title == "" {
		title = "Progress Report"
	}
	if prefix == "" {
		prefix = "progress"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		progress: progress,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		title:    title,
		prefix:   prefix,
		maxRows:  maxRows,
		logger:   logger,
	}
}

// ProgressReport renders a student's term progress in the requested format.
func (s *ExportService) ProgressReport(ctx context.Context, studentID, termID string, format ExportFormat, now time.Time) (*ExportResult, error) {
	summary, _, err := s.progress.Summary(ctx, studentID, termID, now)
	if err != nil {
		return nil, err
	}

	dataset := buildProgressDataset(summary, s.maxRows)
	fileName := fmt.Sprintf("%s-%s-%s", s.prefix, studentID, now.Format("20060102"))

	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{FileName: fileName + ".csv", ContentType: "text/csv", Content: content}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{FileName: fileName + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.ErrValidation.With(fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildProgressDataset(summary *models.ProgressSummary, maxRows int) export.Dataset {
	headers := []string{"Subject", "Lessons", "Completed", "Completion %", "Average Score", "Grade"}

	subjects := summary.Subjects
	// The TOTAL row always ships, so subject rows get the remaining budget.
	if maxRows > 0 && len(subjects) > maxRows-1 {
		subjects = subjects[:maxRows-1]
	}
	rows := make([]map[string]string, 0, len(subjects)+1)

	for _, subject := range subjects {
		rows = append(rows, map[string]string{
			"Subject":       subject.SubjectID,
			"Lessons":       strconv.Itoa(subject.TotalLessons),
			"Completed":     strconv.Itoa(subject.Completed),
			"Completion %":  strconv.Itoa(subject.CompletionRate),
			"Average Score": fmt.Sprintf("%.1f", subject.AverageScore),
			"Grade":         subject.GradeBand,
		})
	}

	rows = append(rows, map[string]string{
		"Subject":       "TOTAL",
		"Lessons":       strconv.Itoa(summary.TotalLessons),
		"Completed":     strconv.Itoa(summary.Completed),
		"Completion %":  strconv.Itoa(summary.CompletionRate),
		"Average Score": fmt.Sprintf("%.1f", summary.AverageScore),
		"Grade":         summary.GradeBand,
	})

	return export.Dataset{Headers: headers, Rows: rows}
}
