// Package taskservice orchestrates task create/claim/update/list against
// storage under Permission constraints, appending events for every mutation
// (spec.md §4.4).
package taskservice

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/wtsi-npg/npg_porch_go/internal/identity"
	"github.com/wtsi-npg/npg_porch_go/internal/models"
	"github.com/wtsi-npg/npg_porch_go/internal/porcherr"
	"github.com/wtsi-npg/npg_porch_go/internal/storage"
)

// Service orchestrates the task lifecycle.
type Service struct {
	db storage.DB
}

func New(db storage.DB) Service {
	return Service{db: db}
}

func pipelineNotFound(err error) error {
	if errors.Is(err, storage.ErrEntityNotFound) {
		return porcherr.New(porcherr.KindNotFound, "Failed to find pipeline for this task")
	}
	return porcherr.Wrap(porcherr.KindInternal, "looking up pipeline", err)
}

// CreateTask implements spec.md §4.4.1: idempotent create via a savepoint
// around the INSERT, with an appended "Created" event on the first insert
// only.
func (s Service) CreateTask(ctx context.Context, permission models.Permission, task models.Task) (models.Task, bool, error) {
	if err := permission.AuthorizeFor(task.Pipeline); err != nil {
		return models.Task{}, false, err
	}

	jobDescriptor, err := identity.Fingerprint(task.TaskInput)
	if err != nil {
		return models.Task{}, false, porcherr.Wrap(porcherr.KindInternal, "computing job descriptor", err)
	}

	taskInputJSON, err := json.Marshal(task.TaskInput)
	if err != nil {
		return models.Task{}, false, porcherr.Wrap(porcherr.KindInternal, "encoding task_input", err)
	}

	var result models.Task
	var created bool

	err = storage.InsideTx(s.db.DB, func(tx *sqlx.Tx) error {
		pipelineID, _, err := s.db.GetPipeline(ctx, tx, task.Pipeline.Name)
		if err != nil {
			return pipelineNotFound(err)
		}

		taskID, wasCreated, err := s.db.CreateTask(ctx, tx, pipelineID, jobDescriptor, taskInputJSON)
		if err != nil {
			return porcherr.Wrap(porcherr.KindInternal, "creating task", err)
		}
		created = wasCreated

		if wasCreated {
			if err := storage.InsertEvent(ctx, tx, taskID, permission.RequestorID, models.EventChangeCreated); err != nil {
				return porcherr.Wrap(porcherr.KindInternal, "recording creation event", err)
			}
		}

		_, task, err := s.db.GetTaskByDescriptor(ctx, tx, pipelineID, jobDescriptor)
		if err != nil {
			return porcherr.Wrap(porcherr.KindInternal, "re-reading created task", err)
		}
		result = task

		return nil
	})
	if err != nil {
		return models.Task{}, false, err
	}

	log.Debug().Str("pipeline", task.Pipeline.Name).Str("job_descriptor", jobDescriptor).Bool("created", created).Msg("create_task")

	return result, created, nil
}

// ClaimTasks implements spec.md §4.4.2. A transient serialization failure
// on commit is absorbed: the service returns an empty list rather than an
// error, per §4.6, so callers retry.
func (s Service) ClaimTasks(ctx context.Context, permission models.Permission, pipeline models.Pipeline, limit int) ([]models.Task, error) {
	if err := permission.AuthorizeFor(pipeline); err != nil {
		return nil, err
	}

	if limit < 1 {
		return nil, porcherr.New(porcherr.KindInvalidArgument, "num_tasks must be greater than zero")
	}

	var claimed []models.Task

	err := storage.InsideTx(s.db.DB, func(tx *sqlx.Tx) error {
		pipelineID, _, err := s.db.GetPipeline(ctx, tx, pipeline.Name)
		if err != nil {
			return pipelineNotFound(err)
		}

		ids, tasks, err := s.db.ClaimTasks(ctx, tx, pipelineID, limit)
		if err != nil {
			return porcherr.Wrap(porcherr.KindInternal, "claiming tasks", err)
		}

		for _, taskID := range ids {
			if err := storage.InsertEvent(ctx, tx, taskID, permission.RequestorID, models.EventChangeClaimed); err != nil {
				return porcherr.Wrap(porcherr.KindInternal, "recording claim event", err)
			}
		}

		claimed = tasks
		return nil
	})
	if err != nil {
		if storage.IsSerializationFailure(err) {
			log.Warn().Str("pipeline", pipeline.Name).Msg("claim_tasks: serialization conflict, returning empty list")
			return []models.Task{}, nil
		}

		var perr *porcherr.Error
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, porcherr.Wrap(porcherr.KindInternal, "claiming tasks", err)
	}

	if claimed == nil {
		claimed = []models.Task{}
	}

	return claimed, nil
}

// UpdateTask implements spec.md §4.4.3. task_input must regenerate the
// persisted job_descriptor; any mismatch surfaces as NotFound, never a
// distinct "input mismatch" error (same-signature requirement).
func (s Service) UpdateTask(ctx context.Context, permission models.Permission, task models.Task) (models.Task, error) {
	if err := permission.AuthorizeFor(task.Pipeline); err != nil {
		return models.Task{}, err
	}

	jobDescriptor, err := identity.Fingerprint(task.TaskInput)
	if err != nil {
		return models.Task{}, porcherr.Wrap(porcherr.KindInternal, "computing job descriptor", err)
	}

	var result models.Task

	err = storage.InsideTx(s.db.DB, func(tx *sqlx.Tx) error {
		pipelineID, _, err := s.db.GetPipeline(ctx, tx, task.Pipeline.Name)
		if err != nil {
			return pipelineNotFound(err)
		}

		taskID, _, err := s.db.GetTaskByDescriptor(ctx, tx, pipelineID, jobDescriptor)
		if err != nil {
			if errors.Is(err, storage.ErrEntityNotFound) {
				return porcherr.New(porcherr.KindNotFound, "Task to be modified could not be found")
			}
			return porcherr.Wrap(porcherr.KindInternal, "looking up task", err)
		}

		if err := storage.UpdateTaskState(ctx, tx, taskID, task.Status); err != nil {
			return porcherr.Wrap(porcherr.KindInternal, "updating task state", err)
		}

		if err := storage.InsertEvent(ctx, tx, taskID, permission.RequestorID, models.EventChangeStatusUpdate(task.Status)); err != nil {
			return porcherr.Wrap(porcherr.KindInternal, "recording update event", err)
		}

		_, updated, err := s.db.GetTaskByDescriptor(ctx, tx, pipelineID, jobDescriptor)
		if err != nil {
			return porcherr.Wrap(porcherr.KindInternal, "re-reading updated task", err)
		}
		result = updated

		return nil
	})
	if err != nil {
		return models.Task{}, err
	}

	return result, nil
}

// ListTasks implements spec.md §4.4.4. Results are not ordered.
func (s Service) ListTasks(ctx context.Context, pipelineName, status string) ([]models.Task, error) {
	var state *models.TaskState
	if status != "" {
		st := models.TaskState(status)
		state = &st
	}

	tasks, err := s.db.ListTasks(ctx, pipelineName, state)
	if err != nil {
		return nil, porcherr.Wrap(porcherr.KindInternal, "listing tasks", err)
	}

	return tasks, nil
}

// EventsForTask implements spec.md §4.4.5.
func (s Service) EventsForTask(ctx context.Context, pipelineName string, taskInput map[string]any) ([]models.Event, error) {
	jobDescriptor, err := identity.Fingerprint(taskInput)
	if err != nil {
		return nil, porcherr.Wrap(porcherr.KindInternal, "computing job descriptor", err)
	}

	pipelineID, _, err := s.db.GetPipeline(ctx, s.db.DB, pipelineName)
	if err != nil {
		return nil, pipelineNotFound(err)
	}

	taskID, _, err := s.db.GetTaskByDescriptor(ctx, s.db.DB, pipelineID, jobDescriptor)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil, porcherr.New(porcherr.KindNotFound, "Task to list events for could not be found")
		}
		return nil, porcherr.Wrap(porcherr.KindInternal, "looking up task", err)
	}

	events, err := s.db.EventsForTask(ctx, taskID)
	if err != nil {
		return nil, porcherr.Wrap(porcherr.KindInternal, "listing events", err)
	}

	return events, nil
}
