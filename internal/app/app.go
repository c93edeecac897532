// Package app is the setup package that wires storage, the core services
// and the HTTP gateway together and starts the server (mirrors the
// teacher's internal/app: StartServices as the single init entrypoint for
// cmd/porchd).
package app

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wtsi-npg/npg_porch_go/internal/api"
	"github.com/wtsi-npg/npg_porch_go/internal/authz"
	"github.com/wtsi-npg/npg_porch_go/internal/config"
	"github.com/wtsi-npg/npg_porch_go/internal/pipelineservice"
	"github.com/wtsi-npg/npg_porch_go/internal/storage"
	"github.com/wtsi-npg/npg_porch_go/internal/taskservice"
)

// StartServices initializes storage, the core services and the gateway,
// then blocks serving HTTP on cfg.Bind.
func StartServices(cfg *config.Config) {
	db, err := storage.New(cfg.DBURL, cfg.DBSchema, cfg.MaxResultsLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("could not init storage")
	}

	log.Info().Str("schema", cfg.DBSchema).Msg("storage initialized")

	validator := authz.NewValidator(db)
	tasks := taskservice.New(db)
	pipelines := pipelineservice.New(db)

	router := api.NewRouter(validator, tasks, pipelines, cfg.ClaimDefaultLimit, cfg.ClaimMaxLimit)

	log.Info().Str("bind", cfg.Bind).Msg("starting gateway")

	if err := http.ListenAndServe(cfg.Bind, router); err != nil {
		log.Fatal().Err(err).Msg("gateway stopped")
	}
}
