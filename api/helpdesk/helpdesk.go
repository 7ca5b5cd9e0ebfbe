package helpdesk

import (
	"database/sql"
	"log"
	"net/http"

	"BudgetDeskSaas/api"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

func StartHelpdeskService(db *sql.DB, pgxPool *pgxpool.Pool) {
	router := mux.NewRouter()
	router.HandleFunc("/helpdesk/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Helpdesk Service"))
	}).Methods("GET")

	scoped := api.DepartmentMiddleware(db)

	router.Handle("/helpdesk/tickets/create", scoped(CreateTicketHandler(pgxPool))).Methods("POST")
	router.Handle("/helpdesk/tickets/list", scoped(ListTicketsHandler(pgxPool))).Methods("POST")
	router.Handle("/helpdesk/tickets/{id}", scoped(GetTicketHandler(pgxPool))).Methods("POST")
	router.Handle("/helpdesk/tickets/{id}/assign", scoped(AssignTicketHandler(pgxPool))).Methods("POST")
	router.Handle("/helpdesk/tickets/{id}/transition", scoped(TransitionTicketHandler(pgxPool))).Methods("POST")

	log.Println("Helpdesk Service started on :5143")
	if err := http.ListenAndServe(":5143", router); err != nil {
		log.Fatalf("Helpdesk Service failed: %v", err)
	}
}
