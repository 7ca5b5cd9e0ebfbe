package helpdesk

import (
	"database/sql"

	"BudgetDeskSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HelpdeskService struct {
	config  map[string]interface{}
	db      *sql.DB
	pgxPool *pgxpool.Pool
}

func NewHelpdeskService(cfg map[string]interface{}, db *sql.DB, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &HelpdeskService{config: cfg, db: db, pgxPool: pgxPool}
}

func (s *HelpdeskService) Name() string {
	return "helpdesk"
}

func (s *HelpdeskService) Start() error {
	go StartHelpdeskService(s.db, s.pgxPool)
	return nil
}

func (s *HelpdeskService) Stop() error {
	return nil
}
