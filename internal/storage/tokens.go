package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

const tokenSelectColumns = `
	token.token_id, token.token,
	token.pipeline_id, pipeline.name AS pipeline_name, pipeline.uri AS pipeline_uri, pipeline.version AS pipeline_version,
	token.description, token.date_issued, token.date_revoked`

// InsertToken persists a new token row, scoped to pipelineID when non-nil
// (spec.md §4.3 mint_token), and returns the new row's token_id. The
// plaintext token text is supplied by the caller — storage never generates
// entropy itself.
func (db DB) InsertToken(ctx context.Context, value string, pipelineID *int64, description string) (int64, error) {
	query, args, err := psql.Insert("token").
		Columns("token", "pipeline_id", "description").
		Values(value, pipelineID, description).
		Suffix("RETURNING token_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("database error occurred; building query: %v; %w", err, ErrInternal)
	}

	var id int64
	if err := db.GetContext(ctx, &id, query, args...); err != nil {
		if IsUniqueViolation(err) {
			return 0, ErrEntityExists
		}
		return 0, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	return id, nil
}

// GetTokenByValue looks up a token by its bearer value, LEFT JOINing its
// pipeline so a power-user token (no pipeline) is still returned
// (spec.md §4.2).
func (db DB) GetTokenByValue(ctx context.Context, value string) (models.Token, error) {
	query := "SELECT" + tokenSelectColumns + " FROM token LEFT JOIN pipeline ON token.pipeline_id = pipeline.pipeline_id WHERE token.token = $1"

	var row tokenRow
	if err := db.GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Token{}, ErrEntityNotFound
		}
		return models.Token{}, fmt.Errorf("database error occurred: %v; %w", err, ErrInternal)
	}

	return row.toModel(), nil
}
