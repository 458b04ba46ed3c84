package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/locus/internal/models"
)

// FetchTasksForResolution retrieves a list of tasks whose place id still has to be resolved.
// It returns open tasks that carry a non-empty place_id, have no formatted address yet
// and have failed fewer than maxAttempts times. The results are ordered by creation date
// and limited to the specified count.
//
// Parameters:
// - ctx: The context for the operation, allowing for cancellation and timeout.
// - limit: The maximum number of tasks to retrieve.
// - maxAttempts: Tasks with this many failed resolutions are skipped.
//
// Returns:
// - A slice of models.Task containing the tasks that match the criteria.
// - An error if the query fails or if there is an issue scanning the results.
func (r *Repository) FetchTasksForResolution(ctx context.Context, limit, maxAttempts int) ([]models.Task, error) {
	var tasks []models.Task
	query := `
		SELECT task_id, place_id
		FROM public.tasks
		WHERE
			formatted_address IS NULL
			AND is_closed = false
			AND resolution_attempts < $1
			AND place_id IS NOT NULL AND place_id <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.PlaceID); errScan != nil {
			return nil, fmt.Errorf("failed to scan unresolved task: %w", errScan)
		}
		r.log.DebugContext(ctx, "A new task with an unresolved place has been received.",
			"ID", task.ID, "PlaceID", task.PlaceID)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateTaskPlace stores the resolved address of a task identified by taskID.
// Coordinates are written as NULL when the place has no geometry.
// It clears the resolution_error field. It returns an error if the update fails.
func (r *Repository) UpdateTaskPlace(ctx context.Context, taskID int, place models.ResolvedPlace) error {
	query := `
		UPDATE tasks
		SET
			formatted_address = $1,
			city = $2,
			postal_code = $3,
			country_code = $4,
			latitude = $5,
			longitude = $6,
			resolution_error = NULL
		WHERE
			task_id = $7;
	`

	var lat, lng *float64
	if place.Coordinates != nil {
		lat, lng = &place.Coordinates.Latitude, &place.Coordinates.Longitude
	}

	_, err := r.db.Exec(ctx, query,
		place.FormattedAddress, place.City, place.PostalCode, place.CountryCode, lat, lng, taskID)
	if err != nil {
		return fmt.Errorf("failed to update task place: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the resolution attempt count for a specific task
// identified by taskID and updates the associated error message. If the update
// operation fails, it returns an error with additional context.
func (r *Repository) IncrementFailureCount(ctx context.Context, taskID int, errMsg string) error {
	query := `
		UPDATE tasks
		SET
			resolution_attempts = resolution_attempts + 1,
			resolution_error = $1
		WHERE task_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, taskID)
	if err != nil {
		return fmt.Errorf("failed to update resolution error and number of attempts: %w", err)
	}

	return nil
}
