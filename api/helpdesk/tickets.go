package helpdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"BudgetDeskSaas/api"
	"BudgetDeskSaas/api/constants"
	"BudgetDeskSaas/api/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Ticket struct {
	TicketID   string `json:"ticket_id"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Department string `json:"department"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	Assignee   string `json:"assignee,omitempty"`
	Requester  string `json:"requester"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		constants.ValueSuccess: false,
		constants.ValueError:   msg,
	})
}

var priorities = map[string]bool{"low": true, "medium": true, "high": true, "urgent": true}

// CreateTicketHandler opens a new ticket for the requesting user's
// department.
func CreateTicketHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID   string `json:"user_id"`
		Subject  string `json:"subject"`
		Body     string `json:"body"`
		Priority string `json:"priority"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req reqBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		req.Subject = strings.TrimSpace(req.Subject)
		if req.Subject == "" {
			writeError(w, http.StatusBadRequest, "subject is required")
			return
		}
		req.Priority = strings.ToLower(strings.TrimSpace(req.Priority))
		if req.Priority == "" {
			req.Priority = "medium"
		}
		if !priorities[req.Priority] {
			writeError(w, http.StatusBadRequest, "priority must be low, medium, high or urgent")
			return
		}

		ctx := r.Context()
		dept := api.GetDepartmentFromCtx(ctx)
		requester := api.GetUserIDFromCtx(ctx)
		ticketID := uuid.New().String()

		_, err := pgxPool.Exec(ctx, `
            INSERT INTO helpdesk_tickets (ticket_id, subject, body, department, priority, status, requester, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
			ticketID, req.Subject, req.Body, dept, req.Priority, StatusOpen, requester)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create ticket: "+err.Error())
			return
		}
		recordEvent(ctx, pgxPool, ticketID, requester, "created", "", StatusOpen)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			constants.ValueSuccess: true,
			"ticket_id":            ticketID,
			"status":               StatusOpen,
		})
	}
}

// ListTicketsHandler returns the department's tickets, newest first, with
// optional status filtering and pagination.
func ListTicketsHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID string `json:"user_id"`
		Status string `json:"status,omitempty"`
		Page   int    `json:"page,omitempty"`
		Limit  int    `json:"limit,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req reqBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		if req.Status != "" && !ValidStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "unknown status: "+req.Status)
			return
		}

		ctx := r.Context()
		dept := api.GetDepartmentFromCtx(ctx)
		tickets, err := fetchTickets(ctx, pgxPool, dept, req.Status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		params := utils.Normalize(req.Page, req.Limit)
		params.SetPaginationStats(len(tickets))
		start, end := params.Window(len(tickets))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			constants.ValueSuccess: true,
			"rows":                 tickets[start:end],
			"pagination":           params,
		})
	}
}

// GetTicketHandler returns one ticket with its event history.
func GetTicketHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID := mux.Vars(r)["id"]
		ctx := r.Context()

		ticket, err := fetchTicket(ctx, pgxPool, ticketID)
		if err != nil {
			writeError(w, http.StatusNotFound, constants.ErrTicketNotFound)
			return
		}
		events, err := fetchEvents(ctx, pgxPool, ticketID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			constants.ValueSuccess: true,
			"ticket":               ticket,
			"events":               events,
		})
	}
}

// AssignTicketHandler sets or changes a ticket's assignee.
func AssignTicketHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID   string `json:"user_id"`
		Assignee string `json:"assignee"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID := mux.Vars(r)["id"]
		var req reqBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		req.Assignee = strings.TrimSpace(req.Assignee)
		if req.Assignee == "" {
			writeError(w, http.StatusBadRequest, "assignee is required")
			return
		}

		ctx := r.Context()
		ticket, err := fetchTicket(ctx, pgxPool, ticketID)
		if err != nil {
			writeError(w, http.StatusNotFound, constants.ErrTicketNotFound)
			return
		}
		if ticket.Status == StatusClosed {
			writeError(w, http.StatusConflict, "cannot assign a closed ticket")
			return
		}

		_, err = pgxPool.Exec(ctx, `
            UPDATE helpdesk_tickets SET assignee = $1, updated_at = now() WHERE ticket_id = $2`,
			req.Assignee, ticketID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to assign ticket: "+err.Error())
			return
		}
		recordEvent(ctx, pgxPool, ticketID, api.GetUserIDFromCtx(ctx), "assigned to "+req.Assignee, ticket.Status, ticket.Status)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			constants.ValueSuccess: true,
			"ticket_id":            ticketID,
			"assignee":             req.Assignee,
		})
	}
}

// TransitionTicketHandler moves a ticket through the workflow. Disallowed
// moves come back as 409 so callers can distinguish them from bad input.
func TransitionTicketHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	type reqBody struct {
		UserID string `json:"user_id"`
		Status string `json:"status"`
		Note   string `json:"note,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID := mux.Vars(r)["id"]
		var req reqBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		if !ValidStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "unknown status: "+req.Status)
			return
		}

		ctx := r.Context()
		ticket, err := fetchTicket(ctx, pgxPool, ticketID)
		if err != nil {
			writeError(w, http.StatusNotFound, constants.ErrTicketNotFound)
			return
		}
		if !CanTransition(ticket.Status, req.Status) {
			writeError(w, http.StatusConflict,
				fmt.Sprintf("%s: %s -> %s", constants.ErrInvalidTransition, ticket.Status, req.Status))
			return
		}

		_, err = pgxPool.Exec(ctx, `
            UPDATE helpdesk_tickets SET status = $1, updated_at = now() WHERE ticket_id = $2`,
			req.Status, ticketID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update ticket: "+err.Error())
			return
		}
		action := "status changed"
		if req.Note != "" {
			action = req.Note
		}
		recordEvent(ctx, pgxPool, ticketID, api.GetUserIDFromCtx(ctx), action, ticket.Status, req.Status)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			constants.ValueSuccess: true,
			"ticket_id":            ticketID,
			"status":               req.Status,
			"previous_status":      ticket.Status,
		})
	}
}

func fetchTicket(ctx context.Context, pgxPool *pgxpool.Pool, ticketID string) (Ticket, error) {
	var t Ticket
	err := pgxPool.QueryRow(ctx, `
        SELECT ticket_id, subject, COALESCE(body,''), department, priority, status,
               COALESCE(assignee,''), requester, created_at::text, updated_at::text
        FROM helpdesk_tickets WHERE ticket_id = $1`, ticketID).
		Scan(&t.TicketID, &t.Subject, &t.Body, &t.Department, &t.Priority, &t.Status,
			&t.Assignee, &t.Requester, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return t, fmt.Errorf("ticket %s not found", ticketID)
		}
		return t, fmt.Errorf("ticket query: %w", err)
	}
	return t, nil
}

func fetchTickets(ctx context.Context, pgxPool *pgxpool.Pool, department, status string) ([]Ticket, error) {
	q := `
        SELECT ticket_id, subject, COALESCE(body,''), department, priority, status,
               COALESCE(assignee,''), requester, created_at::text, updated_at::text
        FROM helpdesk_tickets
        WHERE department = $1 AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC`
	rows, err := pgxPool.Query(ctx, q, department, status)
	if err != nil {
		return nil, fmt.Errorf("tickets query: %w", err)
	}
	defer rows.Close()

	out := []Ticket{}
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.TicketID, &t.Subject, &t.Body, &t.Department, &t.Priority, &t.Status,
			&t.Assignee, &t.Requester, &t.CreatedAt, &t.UpdatedAt); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func fetchEvents(ctx context.Context, pgxPool *pgxpool.Pool, ticketID string) ([]map[string]interface{}, error) {
	rows, err := pgxPool.Query(ctx, `
        SELECT actor, action, COALESCE(from_status,''), to_status, created_at::text
        FROM helpdesk_ticket_events WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket events query: %w", err)
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var actor, action, from, to, at string
		if err := rows.Scan(&actor, &action, &from, &to, &at); err != nil {
			continue
		}
		out = append(out, map[string]interface{}{
			"actor":       actor,
			"action":      action,
			"from_status": from,
			"to_status":   to,
			"at":          at,
		})
	}
	return out, nil
}

// recordEvent appends to the ticket's audit trail. Failures are swallowed,
// the main write already succeeded.
func recordEvent(ctx context.Context, pgxPool *pgxpool.Pool, ticketID, actor, action, from, to string) {
	pgxPool.Exec(ctx, `
        INSERT INTO helpdesk_ticket_events (ticket_id, actor, action, from_status, to_status, created_at)
        VALUES ($1, $2, $3, NULLIF($4,''), $5, now())`,
		ticketID, actor, action, from, to)
}
