// Package api exposes the HTTP/JSON gateway described in spec.md §6: a
// chi router carrying huma-described operations, translated from the
// porcherr taxonomy to HTTP status codes (spec.md §7).
//
// This follows the teacher's APIContext-holds-dependencies, register*
// builds-one-huma.Operation shape (internal/api/tokenHandlers.go,
// systemHandlers.go), adapted from the teacher's gRPC/mux transport to
// humachi's chi adapter, since this core has no gRPC surface to carry.
package api

import (
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"

	"github.com/wtsi-npg/npg_porch_go/internal/authz"
	"github.com/wtsi-npg/npg_porch_go/internal/pipelineservice"
	"github.com/wtsi-npg/npg_porch_go/internal/taskservice"
)

// APIContext holds every dependency the gateway's handlers need.
type APIContext struct {
	authz     authz.Validator
	tasks     taskservice.Service
	pipelines pipelineservice.Service
	humaAPI   huma.API

	claimDefaultLimit int
	claimMaxLimit     int
}

// NewRouter builds the chi mux serving spec.md §6's HTTP interface, with
// request logging via gorilla/handlers (the same pairing the teacher uses
// around its own mux) and bearer-token authorization on every operation.
func NewRouter(validator authz.Validator, tasks taskservice.Service, pipelines pipelineservice.Service, claimDefaultLimit, claimMaxLimit int) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	humaConfig := huma.DefaultConfig("npg_porch", "1.0.0")
	humaConfig.Info.Description = "Central coordination service for distributed pipeline task processing."
	humaAPI := humachi.New(router, humaConfig)

	apictx := &APIContext{
		authz:             validator,
		tasks:             tasks,
		pipelines:         pipelines,
		humaAPI:           humaAPI,
		claimDefaultLimit: claimDefaultLimit,
		claimMaxLimit:     claimMaxLimit,
	}

	humaAPI.UseMiddleware(authMiddleware(apictx))

	apictx.registerListPipelines(humaAPI)
	apictx.registerGetPipeline(humaAPI)
	apictx.registerCreatePipeline(humaAPI)
	apictx.registerCreateToken(humaAPI)

	apictx.registerListTasks(humaAPI)
	apictx.registerCreateTask(humaAPI)
	apictx.registerUpdateTask(humaAPI)
	apictx.registerClaimTasks(humaAPI)

	return handlers.LoggingHandler(os.Stdout, router)
}
