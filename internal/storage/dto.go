package storage

import (
	"time"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

// pipelineRow is the row shape of the pipeline table.
type pipelineRow struct {
	PipelineID int64  `db:"pipeline_id"`
	Name       string `db:"name"`
	URI        string `db:"uri"`
	Version    string `db:"version"`
}

func (r pipelineRow) toModel() models.Pipeline {
	return models.Pipeline{Name: r.Name, URI: r.URI, Version: r.Version}
}

// taskRow is a task row joined against its pipeline (every task has exactly
// one, so an INNER JOIN suffices), the shape every task query in this
// package scans into.
type taskRow struct {
	TaskID        int64     `db:"task_id"`
	PipelineID    int64     `db:"pipeline_id"`
	JobDescriptor string    `db:"job_descriptor"`
	TaskInput     []byte    `db:"task_input"`
	State         string    `db:"state"`
	Created       time.Time `db:"created"`
	PipelineName  string    `db:"pipeline_name"`
	PipelineURI   string    `db:"pipeline_uri"`
	PipelineVer   string    `db:"pipeline_version"`
}

var taskSelectColumns = []string{
	"task.task_id", "task.pipeline_id", "task.job_descriptor", "task.task_input", "task.state", "task.created",
	"pipeline.name AS pipeline_name", "pipeline.uri AS pipeline_uri", "pipeline.version AS pipeline_version",
}

func (r taskRow) toModel() (models.Task, error) {
	taskInput, err := models.DecodeTaskInput(r.TaskInput)
	if err != nil {
		return models.Task{}, err
	}

	return models.Task{
		Pipeline:    models.Pipeline{Name: r.PipelineName, URI: r.PipelineURI, Version: r.PipelineVer},
		TaskInputID: r.JobDescriptor,
		TaskInput:   taskInput,
		Status:      models.TaskState(r.State),
		Created:     r.Created,
	}, nil
}

// tokenRow is the row shape of a token joined (LEFT JOIN) against its
// pipeline. A NULL pipeline_id surfaces as a zero-valued PipelineName.
type tokenRow struct {
	TokenID      int64      `db:"token_id"`
	Token        string     `db:"token"`
	PipelineID   *int64     `db:"pipeline_id"`
	PipelineName *string    `db:"pipeline_name"`
	PipelineURI  *string    `db:"pipeline_uri"`
	PipelineVer  *string    `db:"pipeline_version"`
	Description  string     `db:"description"`
	DateIssued   time.Time  `db:"date_issued"`
	DateRevoked  *time.Time `db:"date_revoked"`
}

func (r tokenRow) toModel() models.Token {
	var pipeline *models.Pipeline
	if r.PipelineID != nil {
		pipeline = &models.Pipeline{Name: *r.PipelineName, URI: *r.PipelineURI, Version: *r.PipelineVer}
	}

	return models.Token{
		ID:          r.TokenID,
		Value:       r.Token,
		Pipeline:    pipeline,
		Description: r.Description,
		DateIssued:  r.DateIssued,
		DateRevoked: r.DateRevoked,
	}
}

// eventRow is the row shape of the event table.
type eventRow struct {
	EventID int64     `db:"event_id"`
	TaskID  int64     `db:"task_id"`
	TokenID int64     `db:"token_id"`
	Time    time.Time `db:"time"`
	Change  string    `db:"change"`
}

func (r eventRow) toModel() models.Event {
	return models.Event{ID: r.EventID, TaskID: r.TaskID, TokenID: r.TokenID, Time: r.Time, Change: r.Change}
}
