// Command porchd runs the npg_porch coordination service.
//
// Unlike the teacher's cobra-based "service start" subcommand (which sits
// alongside a large client CLI surface for pipelines/runs/triggers/etc this
// core has no equivalent of), this core has exactly one thing to run and
// one way to configure it (environment variables, spec.md §6), so main
// reads configuration and starts the server directly rather than through a
// command tree.
package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wtsi-npg/npg_porch_go/internal/app"
	"github.com/wtsi-npg/npg_porch_go/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error in config initialization")
	}

	setupLogging(cfg.LogLevel)

	app.StartServices(cfg)
}

func setupLogging(loglevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Caller().Logger()
	zerolog.SetGlobalLevel(parseLogLevel(loglevel))
}

func parseLogLevel(loglevel string) zerolog.Level {
	switch loglevel {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		log.Error().Msgf("loglevel %s not recognized; defaulting to info", loglevel)
		return zerolog.InfoLevel
	}
}
