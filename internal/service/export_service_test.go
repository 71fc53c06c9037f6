package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-schedule-api/internal/models"
)

func newExportServiceForTest(records []models.LessonProgress) *ExportService {
	progress := NewProgressService(&progressRepoStub{records: records}, nil, nil, nil)
	return NewExportService(progress, "Progress Report", "progress", 0, nil)
}

func TestExportProgressReportCSV(t *testing.T) {
	svc := newExportServiceForTest([]models.LessonProgress{
		lesson("math", 1, true, scorePtr(90)),
		lesson("math", 2, false, nil),
	})

	result, err := svc.ProgressReport(context.Background(), "stu-1", "term-1", ExportCSV, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "progress-stu-1-20240210.csv", result.FileName)
	assert.Equal(t, "text/csv", result.ContentType)

	body := string(result.Content)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Subject,Lessons,Completed,Completion %,Average Score,Grade", lines[0])
	assert.Contains(t, lines[1], "math")
	assert.Contains(t, lines[2], "TOTAL")
	assert.Contains(t, lines[2], "50")
}

func TestExportProgressReportPDF(t *testing.T) {
	svc := newExportServiceForTest([]models.LessonProgress{
		lesson("math", 1, true, scorePtr(85)),
	})

	result, err := svc.ProgressReport(context.Background(), "stu-1", "term-1", ExportPDF, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportProgressReportCapsRows(t *testing.T) {
	records := []models.LessonProgress{
		lesson("bio", 1, true, nil),
		lesson("chem", 2, true, nil),
		lesson("math", 3, true, nil),
		lesson("phys", 4, true, nil),
	}
	progress := NewProgressService(&progressRepoStub{records: records}, nil, nil, nil)
	svc := NewExportService(progress, "Progress Report", "progress", 3, nil)

	result, err := svc.ProgressReport(context.Background(), "stu-1", "term-1", ExportCSV, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Header, two subject rows, and the TOTAL row survives the cap.
	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "bio")
	assert.Contains(t, lines[2], "chem")
	assert.Contains(t, lines[3], "TOTAL")
}

func TestExportProgressReportUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(nil)

	_, err := svc.ProgressReport(context.Background(), "stu-1", "term-1", ExportFormat("xml"), time.Now())
	require.Error(t, err)
}
