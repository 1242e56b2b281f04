package port

import "ragctx/internal/domain"

// HistoryStore persists run metadata between invocations.
type HistoryStore interface {
	Record(run *domain.Run) error
	List(limit int) ([]domain.Run, error)
	Clear() error
	Close() error
}
