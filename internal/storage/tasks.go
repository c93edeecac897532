package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	qb "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

const taskFrom = "task JOIN pipeline ON task.pipeline_id = pipeline.pipeline_id"

// CreateTask inserts a task row with state PENDING inside a savepoint on tx,
// so a unique-violation on (pipeline_id, job_descriptor) can be absorbed
// without aborting the caller's outer transaction (spec.md §4.4.1 step 4-5,
// §9 "Savepoint use"). It returns the task_id and whether the row was newly
// inserted; when created is false, the existing task_id is returned instead.
func (db DB) CreateTask(ctx context.Context, tx *sqlx.Tx, pipelineID int64, jobDescriptor string, taskInput []byte) (int64, bool, error) {
	var taskID int64
	created := true

	insertQuery, insertArgs, err := psql.Insert("task").
		Columns("pipeline_id", "job_descriptor", "task_input", "state").
		Values(pipelineID, jobDescriptor, taskInput, string(models.TaskStatePending)).
		Suffix("RETURNING task_id").
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	err = InsideSavepoint(tx, "create_task", func() error {
		return tx.GetContext(ctx, &taskID, insertQuery, insertArgs...)
	})
	if err != nil {
		if !IsUniqueViolation(err) {
			return 0, false, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
		}

		created = false

		selectQuery, selectArgs, serr := psql.Select("task_id").
			From("task").
			Where("pipeline_id = ? AND job_descriptor = ?", pipelineID, jobDescriptor).
			ToSql()
		if serr != nil {
			return 0, false, fmt.Errorf("database error occurred; building query: %v; %w", serr, ErrInternal)
		}

		if err := tx.GetContext(ctx, &taskID, selectQuery, selectArgs...); err != nil {
			return 0, false, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
		}
	}

	return taskID, created, nil
}

// GetTaskByDescriptor resolves the task matching (pipelineID, jobDescriptor),
// joined against its pipeline (spec.md §4.4.3 step 3: update_task's
// same-signature lookup).
func (db DB) GetTaskByDescriptor(ctx context.Context, q Queryable, pipelineID int64, jobDescriptor string) (int64, models.Task, error) {
	query, args, err := psql.Select(taskSelectColumns...).
		From(taskFrom).
		Where("task.pipeline_id = ? AND task.job_descriptor = ?", pipelineID, jobDescriptor).
		ToSql()
	if err != nil {
		return 0, models.Task{}, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var row taskRow
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.Task{}, ErrEntityNotFound
		}
		return 0, models.Task{}, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	task, err := row.toModel()
	if err != nil {
		return 0, models.Task{}, err
	}

	return row.TaskID, task, nil
}

// ClaimTasks selects up to limit PENDING tasks of pipelineID, oldest first,
// locking each selected row for the duration of tx with FOR UPDATE SKIP
// LOCKED so concurrent claimers never block on or duplicate-claim the same
// row (spec.md §4.4.2 step 3). It then flips each locked row to CLAIMED and
// returns the post-claim task values. Callers must commit tx to make the
// claim durable.
func (db DB) ClaimTasks(ctx context.Context, tx *sqlx.Tx, pipelineID int64, limit int) ([]int64, []models.Task, error) {
	lockQuery, lockArgs, err := psql.Select("task_id").
		From("task").
		Where("pipeline_id = ? AND state = ?", pipelineID, string(models.TaskStatePending)).
		OrderBy("created ASC", "task_id ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var ids []int64
	if err := tx.SelectContext(ctx, &ids, lockQuery, lockArgs...); err != nil {
		return nil, nil, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	if len(ids) == 0 {
		return ids, nil, nil
	}

	updateQuery, updateArgs, err := psql.Update("task").
		Set("state", string(models.TaskStateClaimed)).
		Where(qb.Eq{"task_id": ids}).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return nil, nil, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	selectQuery, selectArgs, err := psql.Select(taskSelectColumns...).
		From(taskFrom).
		Where(qb.Eq{"task.task_id": ids}).
		OrderBy("task.created ASC", "task.task_id ASC").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var rows []taskRow
	if err := tx.SelectContext(ctx, &rows, selectQuery, selectArgs...); err != nil {
		return nil, nil, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toModel()
		if err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, task)
	}

	return ids, tasks, nil
}

// UpdateTaskState overwrites the state column of the task identified by
// taskID, unconditionally (spec.md §4.4.3 step 5: "Overwrite state with the
// supplied value ... including writing the same value").
func UpdateTaskState(ctx context.Context, q Queryable, taskID int64, state models.TaskState) error {
	query, args, err := psql.Update("task").
		Set("state", string(state)).
		Where("task_id = ?", taskID).
		ToSql()
	if err != nil {
		return fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	return nil
}

// ListTasks returns tasks filtered by the optional pipeline name and/or
// state (spec.md §4.4.4). Results are not ordered. Capped at maxResultsLimit
// rows.
func (db DB) ListTasks(ctx context.Context, pipelineName string, state *models.TaskState) ([]models.Task, error) {
	builder := psql.Select(taskSelectColumns...).From(taskFrom).Limit(uint64(db.maxResultsLimit))

	if pipelineName != "" {
		builder = builder.Where("pipeline.name = ?", pipelineName)
	}
	if state != nil {
		builder = builder.Where("task.state = ?", string(*state))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var rows []taskRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}
