package service

import (
	"context"
	"fmt"
	"time"

	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/xuri/excelize/v2"
)

// AnalyticsService serves the reporting screen. Everything is computed
// from the measurement ledger on request.
type AnalyticsService struct {
	repo *repository.AnalyticsRepository
}

func NewAnalyticsService(repo *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Summary is the full analytics payload returned in one round trip.
type Summary struct {
	KPI               *repository.KPI              `json:"kpi"`
	ActiveBatches     []repository.ActiveBatchRow  `json:"activeBatches"`
	ProductStats      []repository.ProductStatRow  `json:"productStats"`
	BatchHistory      []repository.BatchHistoryRow `json:"batchHistory"`
	TrolleysByProduct []repository.CountRow        `json:"trolleysByProduct"`
	BatchesByProduct  []repository.CountRow        `json:"batchesByProduct"`
}

func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	kpi, err := s.repo.KPI(ctx)
	if err != nil {
		return nil, fmt.Errorf("kpi: %w", err)
	}
	active, err := s.repo.ActiveBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("active batches: %w", err)
	}
	products, err := s.repo.ProductStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	history, err := s.repo.ClosedBatchHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("batch history: %w", err)
	}
	trolleys, err := s.repo.TrolleysByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("trolleys by product: %w", err)
	}
	batches, err := s.repo.BatchesByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("batches by product: %w", err)
	}
	return &Summary{
		KPI:               kpi,
		ActiveBatches:     active,
		ProductStats:      products,
		BatchHistory:      history,
		TrolleysByProduct: trolleys,
		BatchesByProduct:  batches,
	}, nil
}

var activeBatchHeaders = []string{
	"Batch", "Product", "Lot", "Production Date", "Days Old",
	"Days Remaining", "Trolleys", "Net Start (kg)",
}

var historyHeaders = []string{
	"Batch", "Product", "Net In (kg)", "Net Out (kg)", "Loss (%)",
}

// Export renders the analytics screen as an xlsx workbook with one sheet
// for the active floor and one for closed batches.
func (s *AnalyticsService) Export(ctx context.Context) (*excelize.File, string, error) {
	active, err := s.repo.ActiveBatches(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("active batches: %w", err)
	}
	history, err := s.repo.ClosedBatchHistory(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("batch history: %w", err)
	}

	f := excelize.NewFile()
	activeSheet := "Active Batches"
	f.SetSheetName("Sheet1", activeSheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range activeBatchHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(activeSheet, cell, h)
		f.SetCellStyle(activeSheet, cell, cell, boldStyle)
	}
	for rowIdx, b := range active {
		row := rowIdx + 2
		f.SetCellValue(activeSheet, fmt.Sprintf("A%d", row), b.BatchCode)
		f.SetCellValue(activeSheet, fmt.Sprintf("B%d", row), b.ProductName)
		f.SetCellValue(activeSheet, fmt.Sprintf("C%d", row), b.LotNumber)
		f.SetCellValue(activeSheet, fmt.Sprintf("D%d", row), b.ProductionDate)
		f.SetCellValue(activeSheet, fmt.Sprintf("E%d", row), b.DaysOld)
		f.SetCellValue(activeSheet, fmt.Sprintf("F%d", row), b.DaysRemaining)
		f.SetCellValue(activeSheet, fmt.Sprintf("G%d", row), b.TrolleyCount)
		f.SetCellValue(activeSheet, fmt.Sprintf("H%d", row), b.TotalNetStart)
	}
	activeWidths := []float64{14, 20, 14, 14, 10, 14, 10, 14}
	for i, w := range activeWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(activeSheet, col, col, w)
	}

	historySheet := "Closed Batches"
	if _, err := f.NewSheet(historySheet); err != nil {
		return nil, "", fmt.Errorf("new sheet: %w", err)
	}
	for i, h := range historyHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(historySheet, cell, h)
		f.SetCellStyle(historySheet, cell, cell, boldStyle)
	}
	for rowIdx, b := range history {
		row := rowIdx + 2
		f.SetCellValue(historySheet, fmt.Sprintf("A%d", row), b.BatchCode)
		f.SetCellValue(historySheet, fmt.Sprintf("B%d", row), b.ProductName)
		f.SetCellValue(historySheet, fmt.Sprintf("C%d", row), b.TotalNetIn)
		f.SetCellValue(historySheet, fmt.Sprintf("D%d", row), b.TotalNetOut)
		if b.TotalNetIn > 0 {
			loss := (b.TotalNetIn - b.TotalNetOut) / b.TotalNetIn * 100
			f.SetCellValue(historySheet, fmt.Sprintf("E%d", row), loss)
		}
	}
	historyWidths := []float64{14, 20, 12, 12, 10}
	for i, w := range historyWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(historySheet, col, col, w)
	}

	filename := fmt.Sprintf("curing_report_%s.xlsx", time.Now().Format("2006-01-02"))
	return f, filename, nil
}
