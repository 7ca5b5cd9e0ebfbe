package budget

import (
	"database/sql"

	"BudgetDeskSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BudgetService struct {
	config  map[string]interface{}
	db      *sql.DB
	pgxPool *pgxpool.Pool
}

func NewBudgetService(cfg map[string]interface{}, db *sql.DB, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &BudgetService{config: cfg, db: db, pgxPool: pgxPool}
}

func (s *BudgetService) Name() string {
	return "budget"
}

func (s *BudgetService) Start() error {
	go StartBudgetService(s.db, s.pgxPool)
	return nil
}

func (s *BudgetService) Stop() error {
	return nil
}
