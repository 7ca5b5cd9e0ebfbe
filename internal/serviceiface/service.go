package serviceiface

// Service is the lifecycle contract every BudgetDesk service implements.
// Start must not block; long-running work belongs in goroutines owned by the
// service and torn down in Stop.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
