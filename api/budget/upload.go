package budget

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"BudgetDeskSaas/api"
	"BudgetDeskSaas/api/constants"
	"BudgetDeskSaas/internal/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UploadBudgetHandler ingests a budget or actuals sheet for one or more
// entities. The whole file is staged with COPY and merged in a single
// transaction, so a bad row rejects the entire batch.
func UploadBudgetHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()
		if err := r.ParseMultipartForm(config.UploadMaxMemoryBytes); err != nil {
			http.Error(w, constants.ErrInvalidRequestBody, http.StatusBadRequest)
			return
		}
		kind := strings.ToLower(strings.TrimSpace(r.FormValue("kind")))
		if kind != "budget" && kind != "actuals" {
			writeUploadError(w, http.StatusBadRequest, "kind must be 'budget' or 'actuals'")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeUploadError(w, http.StatusBadRequest, constants.ErrEmptyUpload)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			writeUploadError(w, http.StatusBadRequest, constants.ErrEmptyUpload)
			return
		}

		raw, err := ReadSheet(header.Filename, data)
		if err != nil {
			writeUploadError(w, http.StatusBadRequest, constants.ErrUnsupportedUpload+": "+err.Error())
			return
		}
		parsed, err := ParseRows(raw)
		if err != nil {
			writeUploadError(w, http.StatusBadRequest, err.Error())
			return
		}

		for _, row := range parsed {
			if !api.IsEntityAllowed(ctx, row.EntityID) {
				writeUploadError(w, http.StatusForbidden, "entity not accessible: "+row.EntityID)
				return
			}
		}

		batchID := uuid.New().String()
		userID := api.GetUserIDFromCtx(ctx)

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			writeUploadError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		committed := false
		defer func() {
			if !committed {
				tx.Rollback(ctx)
			}
		}()

		copyRows := make([][]interface{}, 0, len(parsed))
		for _, row := range parsed {
			copyRows = append(copyRows, []interface{}{
				batchID, row.EntityID, row.FiscalYear, row.MonthIndex, row.MonthName, row.Amount,
			})
		}
		columns := []string{"batch_id", "entity_id", "fiscal_year", "month_index", "month_name", "amount"}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"input_budget_flows"}, columns, pgx.CopyFromRows(copyRows)); err != nil {
			writeUploadError(w, http.StatusInternalServerError, "failed to stage upload: "+err.Error())
			return
		}

		// Merge staged rows into the flow table. Budget sheets set the
		// budgeted column, actuals sheets the actual column.
		target := "budgeted_amount"
		if kind == "actuals" {
			target = "actual_amount"
		}
		merge := fmt.Sprintf(`
            INSERT INTO budget_monthly_flows (entity_id, fiscal_year, month_index, month_name, %[1]s)
            SELECT entity_id, fiscal_year, month_index, month_name, amount
            FROM input_budget_flows WHERE batch_id = $1
            ON CONFLICT (entity_id, fiscal_year, month_index)
            DO UPDATE SET %[1]s = EXCLUDED.%[1]s, month_name = EXCLUDED.month_name`, target)
		if _, err := tx.Exec(ctx, merge, batchID); err != nil {
			writeUploadError(w, http.StatusInternalServerError, "failed to merge upload: "+err.Error())
			return
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO budget_upload_batches (batch_id, uploaded_by, file_name, upload_kind, row_count, uploaded_at)
            VALUES ($1, $2, $3, $4, $5, now())`,
			batchID, userID, header.Filename, kind, len(parsed)); err != nil {
			writeUploadError(w, http.StatusInternalServerError, "failed to record batch: "+err.Error())
			return
		}

		if err := tx.Commit(ctx); err != nil {
			writeUploadError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		committed = true

		writeJSON(w, map[string]interface{}{
			constants.ValueSuccess: true,
			"batch_id":             batchID,
			"rows_ingested":        len(parsed),
			"kind":                 kind,
		})
	}
}
