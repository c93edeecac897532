// Package pipelineservice implements pipeline CRUD and token minting
// (spec.md §4.3).
package pipelineservice

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
	"github.com/wtsi-npg/npg_porch_go/internal/porcherr"
	"github.com/wtsi-npg/npg_porch_go/internal/storage"
)

// Service implements pipeline registration and token issuance.
type Service struct {
	db storage.DB
}

func New(db storage.DB) Service {
	return Service{db: db}
}

// CreatePipeline implements spec.md §4.3. Requires a POWER_USER permission.
func (s Service) CreatePipeline(ctx context.Context, permission models.Permission, pipeline models.Pipeline) (models.Pipeline, error) {
	if permission.Role != models.RolePowerUser {
		return models.Pipeline{}, porcherr.New(porcherr.KindRoleNotAllowed, "a power user token is required to create a pipeline")
	}

	if pipeline.Name == "" || pipeline.URI == "" || pipeline.Version == "" {
		return models.Pipeline{}, porcherr.New(porcherr.KindMissingField, "Pipeline must specify a name and URI and version")
	}

	if _, err := s.db.InsertPipeline(ctx, s.db.DB, pipeline); err != nil {
		if errors.Is(err, storage.ErrEntityExists) {
			return models.Pipeline{}, porcherr.New(porcherr.KindConflict, "Pipeline already exists")
		}
		return models.Pipeline{}, porcherr.Wrap(porcherr.KindInternal, "creating pipeline", err)
	}

	return pipeline, nil
}

// GetPipeline implements spec.md §4.3.
func (s Service) GetPipeline(ctx context.Context, name string) (models.Pipeline, error) {
	_, pipeline, err := s.db.GetPipeline(ctx, s.db.DB, name)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return models.Pipeline{}, porcherr.New(porcherr.KindNotFound, "Pipeline not found")
		}
		return models.Pipeline{}, porcherr.Wrap(porcherr.KindInternal, "looking up pipeline", err)
	}

	return pipeline, nil
}

// ListPipelines implements spec.md §4.3.
func (s Service) ListPipelines(ctx context.Context, filter models.PipelineFilter) ([]models.Pipeline, error) {
	pipelines, err := s.db.ListPipelines(ctx, filter)
	if err != nil {
		return nil, porcherr.Wrap(porcherr.KindInternal, "listing pipelines", err)
	}

	return pipelines, nil
}

// MintToken implements spec.md §4.3: issues a new 32-hex bearer token bound
// to the named pipeline, built from a UUID with its separators stripped.
func (s Service) MintToken(ctx context.Context, pipelineName, description string) (models.MintedToken, error) {
	pipelineID, pipeline, err := s.db.GetPipeline(ctx, s.db.DB, pipelineName)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return models.MintedToken{}, porcherr.New(porcherr.KindNotFound, "Pipeline not found")
		}
		return models.MintedToken{}, porcherr.Wrap(porcherr.KindInternal, "looking up pipeline", err)
	}

	value := strings.ReplaceAll(uuid.New().String(), "-", "")

	if _, err := s.db.InsertToken(ctx, value, &pipelineID, description); err != nil {
		return models.MintedToken{}, porcherr.Wrap(porcherr.KindInternal, "minting token", err)
	}

	return models.MintedToken{Name: pipeline.Name, Token: value, Description: description}, nil
}
