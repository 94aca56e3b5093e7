// Package export writes the issue history as an Excel ledger.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/caredoc/internal/application/port"
	"github.com/garyjia/caredoc/internal/domain/entity"
)

// SheetName is the ledger worksheet
const SheetName = "발급내역"

var ledgerHeaders = []string{"번호", "발급일시", "문서종류", "환자명", "간병인명", "금액"}

// LedgerWriter implements port.LedgerExporter with excelize
type LedgerWriter struct {
	logger *zap.Logger
}

var _ port.LedgerExporter = (*LedgerWriter)(nil)

// NewLedgerWriter creates a ledger writer
func NewLedgerWriter(logger *zap.Logger) *LedgerWriter {
	return &LedgerWriter{logger: logger}
}

// ExportHistory writes one row per entry, in the given order, and returns
// the xlsx bytes.
func (w *LedgerWriter) ExportHistory(entries []entity.IssueHistoryEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		w.setCell(f, cell, h)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, e := range entries {
		row := i + 2
		values := []interface{}{i + 1, e.IssueDateTime, e.DocumentType.Label(), e.PatientName, e.CaregiverName, e.TotalAmount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			w.setCell(f, cell, v)
		}
	}
	if len(entries) > 0 {
		last := fmt.Sprintf("F%d", len(entries)+1)
		if err := f.SetCellStyle(SheetName, "F2", last, amountStyle); err != nil {
			return nil, fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	_ = f.SetColWidth(SheetName, "B", "B", 20)
	_ = f.SetColWidth(SheetName, "C", "E", 14)
	_ = f.SetColWidth(SheetName, "F", "F", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("History ledger exported", zap.Int("entries", len(entries)))
	return buf.Bytes(), nil
}

func (w *LedgerWriter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
