package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"BudgetDeskSaas/api/constants"
	"BudgetDeskSaas/api/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Entry is one posted ledger line.
type Entry struct {
	EntryID     string          `json:"entry_id"`
	EntityID    string          `json:"entity_id"`
	PostedOn    string          `json:"posted_on"` // YYYY-MM-DD
	AccountCode string          `json:"account_code"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Currency    string          `json:"currency"`
}

// Filter narrows entries by account code and posted-on date range. Empty
// fields match everything.
type Filter struct {
	AccountCode string `json:"account_code,omitempty"`
	FromDate    string `json:"from_date,omitempty"`
	ToDate      string `json:"to_date,omitempty"`
}

// ApplyFilter returns the entries matching f, preserving order.
func ApplyFilter(entries []Entry, f Filter) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.AccountCode != "" && !strings.EqualFold(e.AccountCode, f.AccountCode) {
			continue
		}
		if f.FromDate != "" && e.PostedOn < f.FromDate {
			continue
		}
		if f.ToDate != "" && e.PostedOn > f.ToDate {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Search keeps entries whose description, account code or entry id contains
// the term, case-insensitively. An empty term keeps everything.
func Search(entries []Entry, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Description), term) ||
			strings.Contains(strings.ToLower(e.AccountCode), term) ||
			strings.Contains(strings.ToLower(e.EntryID), term) {
			out = append(out, e)
		}
	}
	return out
}

// Totals sums debits and credits over a page-independent entry set.
func Totals(entries []Entry) (debit, credit decimal.Decimal) {
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// GetLedgerViewHandler serves the consolidated ledger view: fetch the
// entity's entries, then filter, search and paginate in memory the way the
// browser pages did.
func GetLedgerViewHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID     string `json:"user_id"`
		EntityID   string `json:"entity_id"`
		FiscalYear int    `json:"fiscal_year"`
		Filter     Filter `json:"filter"`
		Search     string `json:"search,omitempty"`
		Page       int    `json:"page,omitempty"`
		Limit      int    `json:"limit,omitempty"`
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
			req.FiscalYear = time.Now().UTC().Year()
		}

		entries, err := fetchEntries(r.Context(), pgxPool, req.EntityID, req.FiscalYear)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		entries = Search(ApplyFilter(entries, req.Filter), req.Search)
		debit, credit := Totals(entries)

		params := utils.Normalize(req.Page, req.Limit)
		params.SetPaginationStats(len(entries))
		start, end := params.Window(len(entries))

		resp := map[string]interface{}{
			constants.ValueSuccess: true,
			"rows":                 entries[start:end],
			"pagination":           params,
			"total_debit":          debit,
			"total_credit":         credit,
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(resp)
	}
}

func fetchEntries(ctx context.Context, pgxPool *pgxpool.Pool, entityID string, fiscalYear int) ([]Entry, error) {
	q := `
        SELECT entry_id, entity_id, posted_on::text, account_code, COALESCE(description,''),
               debit_amount::float8, credit_amount::float8, COALESCE(currency_code,'USD')
        FROM ledger_entries
        WHERE entity_id = $1 AND EXTRACT(YEAR FROM posted_on) = $2
        ORDER BY posted_on, entry_id`
	rows, err := pgxPool.Query(ctx, q, entityID, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("ledger entries query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var debit, credit float64
		if err := rows.Scan(&e.EntryID, &e.EntityID, &e.PostedOn, &e.AccountCode, &e.Description, &debit, &credit, &e.Currency); err != nil {
			continue
		}
		e.Debit = decimal.NewFromFloat(debit)
		e.Credit = decimal.NewFromFloat(credit)
		out = append(out, e)
	}
	return out, nil
}
