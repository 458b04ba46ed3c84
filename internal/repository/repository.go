package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/locus/internal/models"
)

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	FetchTasksForResolution(ctx context.Context, limit, maxAttempts int) ([]models.Task, error)
	UpdateTaskPlace(ctx context.Context, taskID int, place models.ResolvedPlace) error
	IncrementFailureCount(ctx context.Context, taskID int, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
