package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

type ListPipelinesRequest struct {
	Auth    string `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	Name    string `query:"name" doc:"Exact pipeline name filter."`
	URI     string `query:"uri" doc:"Exact pipeline URI filter."`
	Version string `query:"version" doc:"Exact pipeline version filter."`
}

type ListPipelinesResponse struct {
	Body []models.Pipeline
}

func (apictx *APIContext) registerListPipelines(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID: "ListPipelines",
		Method:      http.MethodGet,
		Path:        "/pipelines",
		Summary:     "List registered pipelines",
		Description: "Returns all pipelines matching the supplied name/uri/version filters, AND-combined. Any valid token authorizes this endpoint.",
		Tags:        []string{"Pipelines"},
	}, func(ctx context.Context, request *ListPipelinesRequest) (*ListPipelinesResponse, error) {
		pipelines, err := apictx.pipelines.ListPipelines(ctx, models.PipelineFilter{
			Name:    request.Name,
			URI:     request.URI,
			Version: request.Version,
		})
		if err != nil {
			return nil, asHumaError(err)
		}

		return &ListPipelinesResponse{Body: pipelines}, nil
	})
}

type GetPipelineRequest struct {
	Auth string `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	Name string `path:"name" doc:"Pipeline name."`
}

type GetPipelineResponse struct {
	Body models.Pipeline
}

func (apictx *APIContext) registerGetPipeline(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID: "GetPipeline",
		Method:      http.MethodGet,
		Path:        "/pipelines/{name}",
		Summary:     "Get one pipeline by name",
		Tags:        []string{"Pipelines"},
	}, func(ctx context.Context, request *GetPipelineRequest) (*GetPipelineResponse, error) {
		pipeline, err := apictx.pipelines.GetPipeline(ctx, request.Name)
		if err != nil {
			return nil, asHumaError(err)
		}

		return &GetPipelineResponse{Body: pipeline}, nil
	})
}

type CreatePipelineRequest struct {
	Auth string          `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	Body models.Pipeline `doc:"Pipeline to register. name, uri and version are all required."`
}

type CreatePipelineResponse struct {
	Body models.Pipeline
}

func (apictx *APIContext) registerCreatePipeline(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID:   "CreatePipeline",
		Method:        http.MethodPost,
		Path:          "/pipelines",
		Summary:       "Register a new pipeline",
		DefaultStatus: http.StatusCreated,
		Description:   "Requires a power-user token (spec.md §4.3).",
		Tags:          []string{"Pipelines"},
	}, func(ctx context.Context, request *CreatePipelineRequest) (*CreatePipelineResponse, error) {
		pipeline, err := apictx.pipelines.CreatePipeline(ctx, permissionFrom(ctx), request.Body)
		if err != nil {
			return nil, asHumaError(err)
		}

		return &CreatePipelineResponse{Body: pipeline}, nil
	})
}

type CreateTokenRequest struct {
	Auth        string `header:"Authorization" example:"Bearer 7dc1457531e34959bd5bcda579c1c6a1" required:"true"`
	Name        string `path:"name" doc:"Pipeline name to mint the token for."`
	Description string `path:"desc" doc:"Free-text description of the token's purpose."`
}

type CreateTokenResponse struct {
	Body models.MintedToken
}

func (apictx *APIContext) registerCreateToken(apiDesc huma.API) {
	huma.Register(apiDesc, huma.Operation{
		OperationID:   "CreatePipelineToken",
		Method:        http.MethodPost,
		Path:          "/pipelines/{name}/token/{desc}",
		Summary:       "Mint a bearer token scoped to a pipeline",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Pipelines"},
	}, func(ctx context.Context, request *CreateTokenRequest) (*CreateTokenResponse, error) {
		token, err := apictx.pipelines.MintToken(ctx, request.Name, request.Description)
		if err != nil {
			return nil, asHumaError(err)
		}

		return &CreateTokenResponse{Body: token}, nil
	})
}
