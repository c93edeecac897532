package storage

import (
	"context"
	"fmt"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

// InsertEvent appends an immutable audit row (spec.md §3: Event is
// append-only; never updated or deleted by the core).
func InsertEvent(ctx context.Context, q Queryable, taskID, tokenID int64, change string) error {
	query, args, err := psql.Insert("event").
		Columns("task_id", "token_id", "change").
		Values(taskID, tokenID, change).
		ToSql()
	if err != nil {
		return fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	return nil
}

// EventsForTask returns all events for the task identified by taskID, in
// insertion order (spec.md §4.4.5, §5: "Events for one task are totally
// ordered by time then event_id").
func (db DB) EventsForTask(ctx context.Context, taskID int64) ([]models.Event, error) {
	query, args, err := psql.Select("event_id", "task_id", "token_id", "time", "change").
		From("event").
		Where("task_id = ?", taskID).
		OrderBy("time", "event_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var rows []eventRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	events := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toModel())
	}

	return events, nil
}
