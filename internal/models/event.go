package models

import "time"

// Event is an immutable audit record describing a change to a task
// (spec.md §3). Append-only: never updated or deleted by the core.
type Event struct {
	ID      int64     `json:"-"`
	TaskID  int64     `json:"-"`
	TokenID int64     `json:"-"`
	Time    time.Time `json:"time"`
	Change  string    `json:"change" example:"Task claimed"`
}

const (
	EventChangeCreated = "Created"
	EventChangeClaimed = "Task claimed"
)

// EventChangeStatusUpdate formats the event message update_task appends
// (spec.md §4.4.3 step 6).
func EventChangeStatusUpdate(state TaskState) string {
	return "Task changed, new status " + string(state)
}
