package models

import "time"

// TaskState is the task's position in its (caller-controlled) lifecycle.
// spec.md §4.5: the core enforces no state-machine restrictions beyond the
// implicit PENDING -> CLAIMED transition performed by ClaimTasks itself.
type TaskState string

const (
	TaskStatePending   TaskState = "PENDING"
	TaskStateClaimed   TaskState = "CLAIMED"
	TaskStateRunning   TaskState = "RUNNING"
	TaskStateDone      TaskState = "DONE"
	TaskStateFailed    TaskState = "FAILED"
	TaskStateCancelled TaskState = "CANCELLED"
)

// ValidTaskStates enumerates the six legal values, in the order spec.md
// lists them.
var ValidTaskStates = []TaskState{
	TaskStatePending, TaskStateClaimed, TaskStateRunning,
	TaskStateDone, TaskStateFailed, TaskStateCancelled,
}

func (s TaskState) Valid() bool {
	for _, v := range ValidTaskStates {
		if v == s {
			return true
		}
	}
	return false
}

// Task is a unit of work for a pipeline (spec.md §3). TaskInputID is the
// job_descriptor: the SHA-256 fingerprint of TaskInput. It is server-assigned
// and any value supplied on input is ignored.
type Task struct {
	Pipeline    Pipeline       `json:"pipeline" doc:"The pipeline this task belongs to."`
	TaskInputID string         `json:"task_input_id,omitempty" example:"b413f47d0d6..." doc:"Server-assigned SHA-256 fingerprint of task_input. Ignored on input."`
	TaskInput   map[string]any `json:"task_input" doc:"Structured parameter set that uniquely identifies this piece of work."`
	Status      TaskState      `json:"status,omitempty" example:"PENDING"`

	// Created is server-assigned and not part of the wire contract (it
	// exists to support FIFO ordering within taskservice/storage); it is
	// not serialized to JSON.
	Created time.Time `json:"-"`
}
