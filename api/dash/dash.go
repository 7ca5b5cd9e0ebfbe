package dash

import (
	"database/sql"
	"log"
	"net/http"

	"BudgetDeskSaas/api"
	"BudgetDeskSaas/api/dash/forecast"
	"BudgetDeskSaas/api/dash/ledger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartDashService(db *sql.DB, pgxPool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dash/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Dashboard Service"))
	})

	scoped := api.DepartmentMiddleware(db)

	// Forecast-vs-actual dashboard
	mux.Handle("/dash/forecast/monthly", scoped(forecast.GetForecastDashboardHandler(pgxPool)))
	mux.Handle("/dash/forecast/variance-report", scoped(forecast.GetBudgetVarianceReportHandler(pgxPool)))
	mux.Handle("/dash/forecast/export", scoped(forecast.ExportVarianceReportHandler(pgxPool)))

	// Consolidated ledger view
	mux.Handle("/dash/ledger", scoped(ledger.GetLedgerViewHandler(pgxPool)))

	log.Println("Dashboard Service started on :4143")
	if err := http.ListenAndServe(":4143", mux); err != nil {
		log.Fatalf("Dashboard Service failed: %v", err)
	}
}
