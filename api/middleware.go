package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"BudgetDeskSaas/api/auth"
	"BudgetDeskSaas/api/constants"
)

type contextKey string

const (
	DepartmentKey contextKey = "department"
	EntityIDsKey  contextKey = "entityIDs"
	UserIDKey     contextKey = "userID"
)

func GetDepartmentFromCtx(ctx context.Context) string {
	if dept, ok := ctx.Value(DepartmentKey).(string); ok {
		return dept
	}
	return ""
}

func GetEntityIDsFromCtx(ctx context.Context) []string {
	if ids, ok := ctx.Value(EntityIDsKey).([]string); ok {
		return ids
	}
	return []string{}
}

func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// IsEntityAllowed reports whether the request's department scope covers the
// given cost entity.
func IsEntityAllowed(ctx context.Context, entityID string) bool {
	ids := GetEntityIDsFromCtx(ctx)
	want := strings.ToUpper(strings.TrimSpace(entityID))
	for _, id := range ids {
		if strings.ToUpper(strings.TrimSpace(id)) == want {
			return true
		}
	}
	return false
}

// DepartmentMiddleware validates the session behind user_id in the request
// body and attaches the user's department plus its accessible cost entity IDs
// to the request context.
func DepartmentMiddleware(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string
			ct := r.Header.Get(constants.ContentTypeText)
			if strings.HasPrefix(ct, constants.ContentTypeJSON) && (r.Method == "POST" || r.Method == "PUT") {
				var bodyMap map[string]interface{}
				_ = json.NewDecoder(r.Body).Decode(&bodyMap)
				if uid, ok := bodyMap[constants.KeyUserID].(string); ok {
					userID = uid
				}
				// Re-marshal and reset body for downstream handlers
				bodyBytes, _ := json.Marshal(bodyMap)
				r.Body = io.NopCloser(strings.NewReader(string(bodyBytes)))
			} else if strings.HasPrefix(ct, constants.ContentTypeMultipart) && (r.Method == "POST" || r.Method == "PUT") {
				if err := r.ParseMultipartForm(32 << 20); err == nil {
					userID = r.FormValue(constants.KeyUserID)
				}
			}

			if userID == "" {
				log.Println("[ERROR] Missing user_id in request")
				writeMiddlewareError(w, constants.ErrMissingUserID)
				return
			}

			found := false
			for _, session := range auth.GetActiveSessions() {
				if session.UserID == userID {
					found = true
					break
				}
			}
			if !found {
				log.Println("[ERROR] Invalid session for user_id:", userID)
				writeMiddlewareError(w, constants.ErrInvalidSession)
				return
			}

			var department string
			err := db.QueryRow("SELECT department FROM users WHERE id = $1", userID).Scan(&department)
			if err != nil || department == "" {
				log.Println("[ERROR] User not found or has no department for user_id:", userID)
				writeMiddlewareError(w, constants.ErrNoDepartment)
				return
			}

			rows, err := db.Query(`
                SELECT entity_id FROM cost_entities
                WHERE department = $1
                  AND (is_deleted = false OR is_deleted IS NULL)
                  AND LOWER(active_status) = 'active'`, department)
			if err != nil {
				log.Printf("[ERROR] cost entity lookup failed for department %s: %v", department, err)
				writeMiddlewareError(w, constants.ErrNoAccessibleEntity)
				return
			}
			defer rows.Close()

			var entityIDs []string
			for rows.Next() {
				var id string
				if err := rows.Scan(&id); err == nil {
					entityIDs = append(entityIDs, id)
				}
			}
			if len(entityIDs) == 0 {
				log.Printf("[ERROR] No accessible cost entities for department: %s", department)
				writeMiddlewareError(w, constants.ErrNoAccessibleEntity)
				return
			}

			ctx := context.WithValue(r.Context(), DepartmentKey, department)
			ctx = context.WithValue(ctx, EntityIDsKey, entityIDs)
			ctx = context.WithValue(ctx, UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeMiddlewareError(w http.ResponseWriter, msg string) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]interface{}{
		constants.ValueSuccess: false,
		constants.ValueError:   msg,
	})
}
