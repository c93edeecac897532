package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

type ListTasksRequest struct {
	Auth         string `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	PipelineName string `query:"pipeline_name" doc:"Restrict to tasks of this pipeline."`
	Status       string `query:"status" doc:"Restrict to tasks in this status." enum:"PENDING,CLAIMED,RUNNING,DONE,FAILED,CANCELLED"`
}

type ListTasksResponse struct {
	Body []models.Task
}

func (apictx *APIContext) registerListTasks(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID: "ListTasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Description: "Returns all tasks matching the supplied pipeline_name/status filters, AND-combined (spec.md §4.4.4). Results are not ordered.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, request *ListTasksRequest) (*ListTasksResponse, error) {
		tasks, err := apictx.tasks.ListTasks(ctx, request.PipelineName, request.Status)
		if err != nil {
			return nil, asHumaError(err)
		}

		return &ListTasksResponse{Body: tasks}, nil
	})
}

type CreateTaskRequest struct {
	Auth string      `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	Body models.Task `doc:"Task to create. task_input_id is server-assigned and ignored if supplied."`
}

// Status is huma's recognized field name for a dynamically chosen response
// status (201 created vs 200 idempotent-replay, spec.md §6).
type CreateTaskResponse struct {
	Status int
	Body   models.Task
}

func (apictx *APIContext) registerCreateTask(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID: "CreateTask",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a task",
		Description: "Idempotent: a second call with the same pipeline and task_input returns the existing task with status 200 instead of creating a duplicate (spec.md §4.4.1).",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, request *CreateTaskRequest) (*CreateTaskResponse, error) {
		task, created, err := apictx.tasks.CreateTask(ctx, permissionFrom(ctx), request.Body)
		if err != nil {
			return nil, asHumaError(err)
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}

		return &CreateTaskResponse{Status: status, Body: task}, nil
	})
}

type UpdateTaskRequest struct {
	Auth string      `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	Body models.Task `doc:"Task with the desired new status. pipeline and task_input must match an existing task exactly."`
}

type UpdateTaskResponse struct {
	Body models.Task
}

func (apictx *APIContext) registerUpdateTask(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID: "UpdateTask",
		Method:      http.MethodPut,
		Path:        "/tasks",
		Summary:     "Update a task's status",
		Description: "Any supplied task_input that does not regenerate the task's existing job_descriptor surfaces as 404 (spec.md §4.4.3).",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, request *UpdateTaskRequest) (*UpdateTaskResponse, error) {
		task, err := apictx.tasks.UpdateTask(ctx, permissionFrom(ctx), request.Body)
		if err != nil {
			return nil, asHumaError(err)
		}

		return &UpdateTaskResponse{Body: task}, nil
	})
}

type ClaimTasksRequest struct {
	Auth     string          `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	NumTasks *int            `query:"num_tasks" doc:"Maximum number of tasks to claim. Defaults to a server-configured value if omitted. Must be greater than zero."`
	Body     models.Pipeline `doc:"The pipeline to claim tasks from."`
}

type ClaimTasksResponse struct {
	Body []models.Task
}

func (apictx *APIContext) registerClaimTasks(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID: "ClaimTasks",
		Method:      http.MethodPost,
		Path:        "/tasks/claim",
		Summary:     "Claim pending tasks for a pipeline",
		Description: "Locks and returns up to num_tasks PENDING tasks, FIFO by creation order (spec.md §4.4.2). May return fewer than requested, including zero, under no error condition.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, request *ClaimTasksRequest) (*ClaimTasksResponse, error) {
		// An omitted num_tasks falls back to the server-configured default; an
		// explicit value, including a non-positive one, passes straight to
		// ClaimTasks so num_tasks<=0 surfaces as 422 (spec.md §6, §7, §4.4.2)
		// instead of silently being rewritten into a default-sized claim.
		numTasks := apictx.claimDefaultLimit
		if request.NumTasks != nil {
			numTasks = *request.NumTasks
		}
		if numTasks > apictx.claimMaxLimit {
			numTasks = apictx.claimMaxLimit
		}

		tasks, err := apictx.tasks.ClaimTasks(ctx, permissionFrom(ctx), request.Body, numTasks)
		if err != nil {
			return nil, asHumaError(err)
		}

		return &ClaimTasksResponse{Body: tasks}, nil
	})
}
