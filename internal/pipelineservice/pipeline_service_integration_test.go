//go:build integration

package pipelineservice

import (
	"context"
	"testing"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
	"github.com/wtsi-npg/npg_porch_go/internal/porcherr"
)

func powerUserPermission(t *testing.T) models.Permission {
	t.Helper()

	permission, err := models.NewPermission(models.RolePowerUser, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	return permission
}

func regularUserPermission(t *testing.T, pipeline models.Pipeline) models.Permission {
	t.Helper()

	permission, err := models.NewPermission(models.RoleRegularUser, 2, &pipeline)
	if err != nil {
		t.Fatal(err)
	}
	return permission
}

func TestCreateGetAndListPipelines(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	ctx := context.Background()

	pipeline := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/cram_to_bam", Version: "1.0.0"}

	created, err := svc.CreatePipeline(ctx, powerUserPermission(t), pipeline)
	if err != nil {
		t.Fatal(err)
	}
	if created.Name != pipeline.Name {
		t.Fatalf("expected created pipeline name %q, got %q", pipeline.Name, created.Name)
	}

	got, err := svc.GetPipeline(ctx, "cram_to_bam")
	if err != nil {
		t.Fatal(err)
	}
	if got.URI != pipeline.URI || got.Version != pipeline.Version {
		t.Fatalf("expected retrieved pipeline to match created pipeline, got %+v", got)
	}

	all, err := svc.ListPipelines(ctx, models.PipelineFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 pipeline, got %d", len(all))
	}
}

func TestCreatePipelineRequiresPowerUser(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	ctx := context.Background()

	existing := models.Pipeline{Name: "existing", URI: "https://example.org/existing", Version: "1.0.0"}
	if _, err := svc.CreatePipeline(ctx, powerUserPermission(t), existing); err != nil {
		t.Fatal(err)
	}

	newPipeline := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/cram_to_bam", Version: "1.0.0"}

	_, err := svc.CreatePipeline(ctx, regularUserPermission(t, existing), newPipeline)
	if porcherr.KindOf(err) != porcherr.KindRoleNotAllowed {
		t.Fatalf("expected KindRoleNotAllowed for a non-power-user caller, got %v", err)
	}
}

func TestCreatePipelineRequiresAllFields(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	ctx := context.Background()

	_, err := svc.CreatePipeline(ctx, powerUserPermission(t), models.Pipeline{Name: "cram_to_bam"})
	if porcherr.KindOf(err) != porcherr.KindMissingField {
		t.Fatalf("expected KindMissingField when URI and version are omitted, got %v", err)
	}
}

func TestCreatePipelineDuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	ctx := context.Background()

	pipeline := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/cram_to_bam", Version: "1.0.0"}

	if _, err := svc.CreatePipeline(ctx, powerUserPermission(t), pipeline); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreatePipeline(ctx, powerUserPermission(t), pipeline)
	if porcherr.KindOf(err) != porcherr.KindConflict {
		t.Fatalf("expected KindConflict on duplicate pipeline, got %v", err)
	}
}

func TestGetPipelineNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)

	_, err := svc.GetPipeline(context.Background(), "does_not_exist")
	if porcherr.KindOf(err) != porcherr.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestMintToken(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	ctx := context.Background()

	pipeline := models.Pipeline{Name: "cram_to_bam", URI: "https://example.org/cram_to_bam", Version: "1.0.0"}
	if _, err := svc.CreatePipeline(ctx, powerUserPermission(t), pipeline); err != nil {
		t.Fatal(err)
	}

	minted, err := svc.MintToken(ctx, "cram_to_bam", "CI runner for cram_to_bam")
	if err != nil {
		t.Fatal(err)
	}
	if minted.Name != "cram_to_bam" {
		t.Fatalf("expected minted token scoped to cram_to_bam, got %q", minted.Name)
	}
	if len(minted.Token) != 32 {
		t.Fatalf("expected a 32-char token, got length %d", len(minted.Token))
	}

	resolved, err := db.GetTokenByValue(ctx, minted.Token)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Pipeline == nil || resolved.Pipeline.Name != "cram_to_bam" {
		t.Fatalf("expected minted token to resolve to cram_to_bam, got %+v", resolved.Pipeline)
	}
}

func TestMintTokenPipelineNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)

	_, err := svc.MintToken(context.Background(), "does_not_exist", "description")
	if porcherr.KindOf(err) != porcherr.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}
