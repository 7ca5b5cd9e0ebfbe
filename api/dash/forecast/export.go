package forecast

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"BudgetDeskSaas/api/constants"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReportRow is one month of the variance report, pre-formatted for the
// spreadsheet export.
type ReportRow struct {
	Month           string `json:"month"`
	Actual          string `json:"actual"`
	Forecast        string `json:"forecast"`
	Variance        string `json:"variance"`
	VarianceStatus  string `json:"variance_status"`
	AccuracyPercent string `json:"accuracy_percent"`
}

// ReportSummary describes the most recently completed month.
type ReportSummary struct {
	AnalyzedMonth         string `json:"analyzed_month"`
	AccuracyScore         string `json:"accuracy_score"`
	VarianceWithDirection string `json:"variance_with_direction"`
}

// BuildVarianceReport produces one formatted row per month plus the summary
// block for the last month with recorded spend.
func BuildVarianceReport(flows []MonthlyFlowPoint, monthly []MonthlyForecastPoint) ([]ReportRow, ReportSummary) {
	rows := make([]ReportRow, 0, len(flows))
	lastActualIdx := -1
	for i, f := range flows {
		if f.Actual.IsPositive() {
			lastActualIdx = i
		}
	}

	summary := ReportSummary{
		AnalyzedMonth:         "N/A",
		AccuracyScore:         "N/A",
		VarianceWithDirection: "N/A",
	}

	for i, f := range flows {
		mf, _ := matchForecast(monthly, f.MonthIndex, f.MonthName)
		rec := ComputeVariance(f.Actual, mf.Forecast)
		status := ClassifyVarianceStatus(rec.Variance, rec.IsExact)

		rows = append(rows, ReportRow{
			Month:           f.MonthName,
			Actual:          FormatCurrency(rec.Actual),
			Forecast:        FormatCurrency(rec.Forecast),
			Variance:        FormatCurrency(rec.Variance.Abs()),
			VarianceStatus:  status.String(),
			AccuracyPercent: rec.AccuracyPercent.StringFixed(1) + "%",
		})

		if i == lastActualIdx {
			summary.AnalyzedMonth = f.MonthName
			summary.AccuracyScore = rec.AccuracyPercent.StringFixed(1) + "%"
			summary.VarianceWithDirection = varianceWithDirection(rec)
		}
	}
	return rows, summary
}

func varianceWithDirection(rec VarianceRecord) string {
	if rec.IsExact {
		return "on target"
	}
	direction := "under forecast"
	if rec.Variance.IsPositive() {
		direction = "over forecast"
	}
	return FormatCurrency(rec.Variance.Abs()) + " " + direction
}

// FormatCurrency renders an amount with a currency symbol, thousands
// separators and two fixed decimals, e.g. -1234567.8 -> "-$1,234,567.80".
func FormatCurrency(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart := s[:len(s)-3]
	fracPart := s[len(s)-3:]

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	out := "$" + b.String() + fracPart
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// ExportVarianceReportHandler streams the variance report as an XLSX
// workbook: a summary header block for the analyzed month, then one data row
// per month.
func ExportVarianceReportHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID     string `json:"user_id"`
		EntityID   string `json:"entity_id"`
		FiscalYear int    `json:"fiscal_year"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var req reqBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidRequestBody, http.StatusBadRequest)
			return
		}
		if req.EntityID == "" {
			http.Error(w, constants.ErrEntityRequired, http.StatusBadRequest)
			return
		}

		flows, err := FetchMonthlyFlows(r.Context(), pgxPool, req.EntityID, req.FiscalYear)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		cumulative, err := FetchCumulativeForecast(r.Context(), pgxPool, req.EntityID, req.FiscalYear)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rows, summary := BuildVarianceReport(flows, DeriveMonthlySeries(cumulative))

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		f.SetCellValue(sheet, "A1", "Forecast Variance Report")
		f.SetCellValue(sheet, "A2", "Entity")
		f.SetCellValue(sheet, "B2", req.EntityID)
		f.SetCellValue(sheet, "A3", "Analyzed Month")
		f.SetCellValue(sheet, "B3", summary.AnalyzedMonth)
		f.SetCellValue(sheet, "A4", "Accuracy Score")
		f.SetCellValue(sheet, "B4", summary.AccuracyScore)
		f.SetCellValue(sheet, "A5", "Variance")
		f.SetCellValue(sheet, "B5", summary.VarianceWithDirection)

		header := []string{"Month", "Actual", "Forecast", "Variance", "Variance Status", "Accuracy %"}
		for i, h := range header {
			cell, _ := excelize.CoordinatesToCellName(i+1, 7)
			f.SetCellValue(sheet, cell, h)
		}
		for i, row := range rows {
			values := []string{row.Month, row.Actual, row.Forecast, row.Variance, row.VarianceStatus, row.AccuracyPercent}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+8)
				f.SetCellValue(sheet, cell, v)
			}
		}

		fname := fmt.Sprintf("variance_report_%s_%d_%s.xlsx", req.EntityID, req.FiscalYear, time.Now().Format("20060102"))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fname))
		if err := f.Write(w); err != nil {
			http.Error(w, "failed to write workbook: "+err.Error(), http.StatusInternalServerError)
		}
	}
}
