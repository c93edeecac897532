package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

// InsertPipeline persists a new pipeline row. It returns ErrEntityExists if
// a pipeline with the same name already exists (spec.md §4.3: pipeline
// create is not idempotent).
func (db DB) InsertPipeline(ctx context.Context, q Queryable, pipeline models.Pipeline) (int64, error) {
	query, args, err := psql.Insert("pipeline").
		Columns("name", "uri", "version").
		Values(pipeline.Name, pipeline.URI, pipeline.Version).
		Suffix("RETURNING pipeline_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var id int64
	if err := q.GetContext(ctx, &id, query, args...); err != nil {
		if IsUniqueViolation(err) {
			return 0, ErrEntityExists
		}
		return 0, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	return id, nil
}

// GetPipeline looks up a pipeline by its unique name.
func (db DB) GetPipeline(ctx context.Context, q Queryable, name string) (int64, models.Pipeline, error) {
	query, args, err := psql.Select("pipeline_id", "name", "uri", "version").
		From("pipeline").
		Where("name = ?", name).
		ToSql()
	if err != nil {
		return 0, models.Pipeline{}, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var row pipelineRow
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.Pipeline{}, ErrEntityNotFound
		}
		return 0, models.Pipeline{}, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	return row.PipelineID, row.toModel(), nil
}

// ListPipelines returns pipelines matching the AND-combined equality filter
// (spec.md §4.3). Empty filter fields are not constrained. Capped at
// maxResultsLimit rows.
func (db DB) ListPipelines(ctx context.Context, filter models.PipelineFilter) ([]models.Pipeline, error) {
	builder := psql.Select("pipeline_id", "name", "uri", "version").
		From("pipeline").
		OrderBy("name").
		Limit(uint64(db.maxResultsLimit))

	if filter.Name != "" {
		builder = builder.Where("name = ?", filter.Name)
	}
	if filter.URI != "" {
		builder = builder.Where("uri = ?", filter.URI)
	}
	if filter.Version != "" {
		builder = builder.Where("version = ?", filter.Version)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var rows []pipelineRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	pipelines := make([]models.Pipeline, 0, len(rows))
	for _, r := range rows {
		pipelines = append(pipelines, r.toModel())
	}

	return pipelines, nil
}
