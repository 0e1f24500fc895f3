package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/xuri/excelize/v2"
)

const resultSheet = "Results"

var resultHeader = []any{
	"No", "Student", "Exam Code", "Status", "Score", "Max Score",
	"Started At", "Submitted At", "Duration (s)",
}

// ExportResults renders every attempt matching filter into an XLSX workbook.
// Rows beyond the configured export cap are left out.
func (s *ResultService) ExportResults(ctx context.Context, ref model.AssignmentRef, filter model.ResultFilter) ([]byte, error) {
	if err := s.assertAssignment(ctx, ref); err != nil {
		return nil, err
	}

	results, total, err := s.resultRepo.ListByAssignment(ctx, ref, filter, s.exportMaxRows, 0)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if total > len(results) {
		s.log.Warn().
			Str("assignment", ref.String()).
			Int("total", total).
			Int("exported", len(results)).
			Msg("Result export truncated")
	}

	data, err := renderResultWorkbook(results)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("assignment", ref.String()).Int("rows", len(results)).Msg("Results exported")
	return data, nil
}

func renderResultWorkbook(results []model.ResultSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(resultSheet, "A1", &resultHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(resultHeader))
	if err := f.SetCellStyle(resultSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			i + 1,
			r.StudentName,
			deref(r.ExamCode),
			string(r.Status),
			r.Score,
			r.MaxScore,
			r.StartedAt.UTC().Format(time.RFC3339),
			formatOptionalTime(r.SubmittedAt),
			formatOptionalInt(r.DurationSeconds),
		}
		if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalInt(n *int64) any {
	if n == nil {
		return ""
	}
	return *n
}
