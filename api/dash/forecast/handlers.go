package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"BudgetDeskSaas/api/constants"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type dashRow struct {
	MonthIndex      int             `json:"month_index"`
	MonthName       string          `json:"month_name"`
	Budget          decimal.Decimal `json:"budget"`
	Actual          decimal.Decimal `json:"actual"`
	Forecast        decimal.Decimal `json:"forecast"`
	Variance        decimal.Decimal `json:"variance"`
	IsExact         bool            `json:"is_exact"`
	AccuracyPercent decimal.Decimal `json:"accuracy_percent"`
	Status          string          `json:"status"`
}

type varianceReportRow struct {
	MonthIndex      int             `json:"month_index"`
	MonthName       string          `json:"month_name"`
	Budget          decimal.Decimal `json:"budget"`
	Actual          decimal.Decimal `json:"actual"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
}

// GetForecastDashboardHandler serves the consolidated monthly dashboard. The
// include_forecast and include_comparison flags switch the forecast columns
// and the stitched chart line on and off so one endpoint covers every page
// variant.
func GetForecastDashboardHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID            string `json:"user_id"`
		EntityID          string `json:"entity_id"`
		FiscalYear        int    `json:"fiscal_year"`
		IncludeForecast   *bool  `json:"include_forecast,omitempty"`
		IncludeComparison *bool  `json:"include_comparison,omitempty"`
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
		if req.FiscalYear <= 0 {
			http.Error(w, constants.ErrFiscalYearRequired, http.StatusBadRequest)
			return
		}
		includeForecast := req.IncludeForecast == nil || *req.IncludeForecast
		includeComparison := req.IncludeComparison == nil || *req.IncludeComparison

		flows, err := FetchMonthlyFlows(r.Context(), pgxPool, req.EntityID, req.FiscalYear)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := map[string]interface{}{
			constants.ValueSuccess: true,
			"entity_id":            req.EntityID,
			"fiscal_year":          req.FiscalYear,
		}

		var monthly []MonthlyForecastPoint
		if includeForecast {
			cumulative, err := FetchCumulativeForecast(r.Context(), pgxPool, req.EntityID, req.FiscalYear)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			monthly = DeriveMonthlySeries(cumulative)
			resp["stitched"] = stitchedJSON(StitchForecastLine(flows, monthly))
		}

		rows := make([]dashRow, 0, len(flows))
		for _, f := range flows {
			row := dashRow{
				MonthIndex: f.MonthIndex,
				MonthName:  f.MonthName,
				Budget:     f.Budget,
				Actual:     f.Actual,
			}
			if includeComparison && includeForecast {
				mf, _ := matchForecast(monthly, f.MonthIndex, f.MonthName)
				rec := ComputeVariance(f.Actual, mf.Forecast)
				row.Forecast = rec.Forecast
				row.Variance = rec.Variance
				row.IsExact = rec.IsExact
				row.AccuracyPercent = rec.AccuracyPercent
				row.Status = ClassifyVarianceStatus(rec.Variance, rec.IsExact).String()
			}
			rows = append(rows, row)
		}
		resp["rows"] = rows

		if includeComparison && includeForecast {
			_, summary := BuildVarianceReport(flows, monthly)
			resp["summary"] = summary
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(resp)
	}
}

// GetBudgetVarianceReportHandler serves the variance-report view: percent
// deviation of actual spend from budget per month. Positive means over
// budget; the client's red/green thresholds depend on that sign.
func GetBudgetVarianceReportHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
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

		rows := make([]varianceReportRow, 0, len(flows))
		for _, f := range flows {
			rows = append(rows, varianceReportRow{
				MonthIndex:      f.MonthIndex,
				MonthName:       f.MonthName,
				Budget:          f.Budget,
				Actual:          f.Actual,
				VariancePercent: BudgetVariancePercent(f.Budget, f.Actual),
			})
		}
		resp := map[string]interface{}{constants.ValueSuccess: true, "rows": rows}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(resp)
	}
}

// stitchedJSON renders absent positions as null so the chart collaborator can
// break the line instead of drawing zeroes.
func stitchedJSON(points []StitchedPoint) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(points))
	for _, p := range points {
		m := map[string]interface{}{
			"month_index": p.MonthIndex,
			"month_name":  p.MonthName,
		}
		if p.Present {
			m["value"] = p.Value
		} else {
			m["value"] = nil
		}
		out = append(out, m)
	}
	return out
}

// FetchMonthlyFlows loads the budget-vs-actual series for one entity and
// fiscal year, in calendar order.
func FetchMonthlyFlows(ctx context.Context, pgxPool *pgxpool.Pool, entityID string, fiscalYear int) ([]MonthlyFlowPoint, error) {
	q := `
        SELECT month_index, month_name, COALESCE(budgeted_amount,0)::float8, COALESCE(actual_amount,0)::float8
        FROM budget_monthly_flows
        WHERE entity_id = $1 AND fiscal_year = $2
        ORDER BY month_index`
	rows, err := pgxPool.Query(ctx, q, entityID, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("monthly flows query: %w", err)
	}
	defer rows.Close()

	var out []MonthlyFlowPoint
	for rows.Next() {
		var idx int
		var name string
		var budget, actual float64
		if err := rows.Scan(&idx, &name, &budget, &actual); err != nil {
			continue
		}
		out = append(out, MonthlyFlowPoint{
			MonthIndex: idx,
			MonthName:  name,
			Budget:     decimal.NewFromFloat(budget),
			Actual:     decimal.NewFromFloat(actual),
		})
	}
	return out, nil
}

// FetchCumulativeForecast loads the year-to-date forecast series for one
// entity and fiscal year. Order is not guaranteed here; the engine sorts.
func FetchCumulativeForecast(ctx context.Context, pgxPool *pgxpool.Pool, entityID string, fiscalYear int) ([]CumulativeForecastPoint, error) {
	q := `
        SELECT month_index, month_name, cumulative_amount::float8
        FROM forecast_cumulative
        WHERE entity_id = $1 AND fiscal_year = $2`
	rows, err := pgxPool.Query(ctx, q, entityID, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("cumulative forecast query: %w", err)
	}
	defer rows.Close()

	var out []CumulativeForecastPoint
	for rows.Next() {
		var idx int
		var name string
		var amt float64
		if err := rows.Scan(&idx, &name, &amt); err != nil {
			continue
		}
		out = append(out, CumulativeForecastPoint{
			MonthIndex: idx,
			MonthName:  name,
			Forecast:   decimal.NewFromFloat(amt),
		})
	}
	return out, nil
}
