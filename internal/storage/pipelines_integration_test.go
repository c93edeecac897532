//go:build integration

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

func TestInsertAndGetPipeline(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pipeline := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/cram_to_bam", Version: "1.0.0"}

	id, err := db.InsertPipeline(ctx, db.DB, pipeline)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero pipeline_id")
	}

	_, got, err := db.GetPipeline(ctx, db.DB, "cram_to_bam")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(pipeline, got); diff != "" {
		t.Errorf("pipeline mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertPipelineDuplicateName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	pipeline := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/cram_to_bam", Version: "1.0.0"}

	if _, err := db.InsertPipeline(ctx, db.DB, pipeline); err != nil {
		t.Fatal(err)
	}

	_, err := db.InsertPipeline(ctx, db.DB, pipeline)
	if !errors.Is(err, ErrEntityExists) {
		t.Fatalf("expected ErrEntityExists on duplicate name, got %v", err)
	}
}

func TestGetPipelineNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _, err := db.GetPipeline(ctx, db.DB, "does_not_exist")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestListPipelinesFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/a", Version: "1.0.0"}
	b := models.Pipeline{Name: "bam_to_cram", URI: "https://example.org/a", Version: "2.0.0"}

	if _, err := db.InsertPipeline(ctx, db.DB, a); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertPipeline(ctx, db.DB, b); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListPipelines(ctx, models.PipelineFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(all))
	}

	byURI, err := db.ListPipelines(ctx, models.PipelineFilter{URI: "https://example.org/a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byURI) != 2 {
		t.Fatalf("expected both pipelines to match the shared URI, got %d", len(byURI))
	}

	byVersion, err := db.ListPipelines(ctx, models.PipelineFilter{Version: "2.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]models.Pipeline{b}, byVersion); diff != "" {
		t.Errorf("version filter mismatch (-want +got):\n%s", diff)
	}
}
