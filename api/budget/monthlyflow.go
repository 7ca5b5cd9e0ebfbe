package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"BudgetDeskSaas/api"
	"BudgetDeskSaas/api/constants"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MonthlyFlow is one fiscal month of budgeted vs recorded spend.
type MonthlyFlow struct {
	EntityID   string          `json:"entity_id"`
	FiscalYear int             `json:"fiscal_year"`
	MonthIndex int             `json:"month_index"`
	MonthName  string          `json:"month_name"`
	Budget     decimal.Decimal `json:"budget"`
	Actual     decimal.Decimal `json:"actual"`
}

func writeJSON(w http.ResponseWriter, body map[string]interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(body)
}

func writeUploadError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		constants.ValueSuccess: false,
		constants.ValueError:   msg,
	})
}

// GetMonthlyFlowsHandler returns the monthly flow series for one entity and
// fiscal year, ordered by month.
func GetMonthlyFlowsHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
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
		if !api.IsEntityAllowed(r.Context(), req.EntityID) {
			writeUploadError(w, http.StatusForbidden, constants.ErrNoAccessibleEntity)
			return
		}
		if req.FiscalYear <= 0 {
			req.FiscalYear = time.Now().UTC().Year()
		}

		flows, err := FetchMonthlyFlows(r.Context(), pgxPool, req.EntityID, req.FiscalYear)
		if err != nil {
			writeUploadError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, map[string]interface{}{
			constants.ValueSuccess: true,
			"entity_id":            req.EntityID,
			"fiscal_year":          req.FiscalYear,
			"rows":                 flows,
		})
	}
}

// FetchMonthlyFlows loads the flow rows ordered by month index.
func FetchMonthlyFlows(ctx context.Context, pgxPool *pgxpool.Pool, entityID string, fiscalYear int) ([]MonthlyFlow, error) {
	q := `
        SELECT entity_id, fiscal_year, month_index, month_name,
               COALESCE(budgeted_amount,0)::float8, COALESCE(actual_amount,0)::float8
        FROM budget_monthly_flows
        WHERE entity_id = $1 AND fiscal_year = $2
        ORDER BY month_index`
	rows, err := pgxPool.Query(ctx, q, entityID, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("monthly flows query: %w", err)
	}
	defer rows.Close()

	var out []MonthlyFlow
	for rows.Next() {
		var f MonthlyFlow
		var budget, actual float64
		if err := rows.Scan(&f.EntityID, &f.FiscalYear, &f.MonthIndex, &f.MonthName, &budget, &actual); err != nil {
			continue
		}
		f.Budget = decimal.NewFromFloat(budget)
		f.Actual = decimal.NewFromFloat(actual)
		out = append(out, f)
	}
	return out, nil
}
