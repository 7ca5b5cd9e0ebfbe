package dash

import (
	"database/sql"

	"BudgetDeskSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DashService struct {
	config  map[string]interface{}
	db      *sql.DB
	pgxPool *pgxpool.Pool
}

func NewDashService(cfg map[string]interface{}, db *sql.DB, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &DashService{config: cfg, db: db, pgxPool: pgxPool}
}

func (s *DashService) Name() string {
	return "dash"
}

func (s *DashService) Start() error {
	go StartDashService(s.db, s.pgxPool)
	return nil
}

func (s *DashService) Stop() error {
	return nil
}
