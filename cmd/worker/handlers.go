package main

import (
	"github.com/hibiken/asynq"

	importerJob "pos-backend/internal/domains/importer/job"
	"pos-backend/internal/shared"
	"pos-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	runImport   *importerJob.RunImportHandler
	reapImports *importerJob.ReapStuckImportsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		runImport:   importerJob.NewRunImportHandler(c.ImportRunner),
		reapImports: importerJob.NewReapStuckImportsHandler(c.ImportRepo, c.Config.Import),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeRunImport, h.runImport.ProcessTask)
	mux.HandleFunc(shared.TypeReapStuckImports, h.reapImports.ProcessTask)
}
