package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
)

const (
	exportTimeLayout = "1/2/2006, 3:04:05 PM"
	rollNoMissing    = "N/A"
	resultsSheet     = "Results"
)

var exportHeader = []string{"Name", "Email", "Roll No", "Marks", "Percentage", "Status", "Submitted At"}

type exportService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	location *time.Location
}

// NewExportService renders timestamps in location (UTC when nil)
func NewExportService(repo repositories.Repository, logger *slog.Logger, location *time.Location) ExportService {
	if location == nil {
		location = time.UTC
	}
	return &exportService{repo: repo, logger: logger, location: location}
}

func (s *exportService) ExportResults(ctx context.Context, examID uint, format ExportFormat, requester Requester) (*ExportFile, error) {
	s.logger.Info("Exporting results", "exam_id", examID, "format", format, "requester", requester.UserID)

	if err := requirePrivileged(requester, "exam results", "export"); err != nil {
		return nil, err
	}
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportXLSX {
		return nil, NewValidationError("format", "must be csv or xlsx", format)
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		return nil, lookupError("failed to get exam", err, ErrExamNotFound)
	}

	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
		ExamID:    &examID,
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, NewInternalError("failed to list submissions", err)
	}
	if len(submissions) == 0 {
		return nil, ErrNoSubmissions
	}

	users, err := loadStudents(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load students", err)
	}

	rows := s.buildRows(exam, submissions, users)
	baseName := exportFileName(exam.Title)

	switch format {
	case ExportXLSX:
		data, err := renderXLSX(rows)
		if err != nil {
			return nil, NewInternalError("failed to render workbook", err)
		}
		return &ExportFile{
			FileName:    baseName + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		data, err := renderCSV(rows)
		if err != nil {
			return nil, NewInternalError("failed to render csv", err)
		}
		return &ExportFile{
			FileName:    baseName + ".csv",
			ContentType: "text/csv",
			Data:        data,
		}, nil
	}
}

func (s *exportService) buildRows(exam *models.Exam, submissions []*models.Submission, users map[string]*models.User) [][]string {
	rows := make([][]string, 0, len(submissions))
	for _, sub := range submissions {
		name, email, rollNo := studentDisplay(users, sub.StudentID)
		roll := rollNoMissing
		if rollNo != nil && *rollNo != "" {
			roll = *rollNo
		}

		rows = append(rows, []string{
			name,
			email,
			roll,
			strconv.FormatFloat(sub.Marks, 'f', -1, 64),
			fmt.Sprintf("%.2f%%", percentage(sub.Marks, exam.TotalMarks)),
			sub.Status.Label(),
			sub.SubmittedAt.In(s.location).Format(exportTimeLayout),
		})
	}
	return rows
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(resultsSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(resultsSheet, "A", "G", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// exportFileName replaces every non alphanumeric character of title with '_'
func exportFileName(title string) string {
	name := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, title)
	if name == "" {
		return "results"
	}
	return name + "_results"
}
