package budget

import (
	"database/sql"
	"log"
	"net/http"

	"BudgetDeskSaas/api"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartBudgetService(db *sql.DB, pgxPool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/budget/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Budget Service"))
	})

	scoped := api.DepartmentMiddleware(db)

	mux.Handle("/budget/flows", scoped(GetMonthlyFlowsHandler(pgxPool)))
	mux.Handle("/budget/upload", scoped(UploadBudgetHandler(pgxPool)))

	log.Println("Budget Service started on :6143")
	if err := http.ListenAndServe(":6143", mux); err != nil {
		log.Fatalf("Budget Service failed: %v", err)
	}
}
