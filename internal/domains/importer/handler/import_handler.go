package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/config"
	"pos-backend/internal/domains/importer/model"
	"pos-backend/internal/domains/importer/service"
	"pos-backend/internal/domains/importer/spreadsheet"
	"pos-backend/internal/shared/response"
)

type ImportHandler struct {
	service  service.ServiceInterface
	notifier service.Notifier
	cfg      config.ImportConfig
}

func NewImportHandler(svc service.ServiceInterface, notifier service.Notifier, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{service: svc, notifier: notifier, cfg: cfg}
}

type startImportRequest struct {
	ImportKind string `form:"import_kind"`
}

func (r startImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ImportKind,
			validation.Required,
			validation.In(
				string(model.KindProducts),
				string(model.KindStock),
				string(model.KindUsers),
			),
		),
	)
}

// StartImport handles POST /v1/imports. The upload is accepted, stored and
// queued; processing happens in the worker, so the reply is 202 with the
// pending job.
func (h *ImportHandler) StartImport(c *gin.Context) {
	userID, ok := c.Get("userID")
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	ownerID := userID.(uuid.UUID)

	var req startImportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind, err := model.ParseKind(req.ImportKind)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}
	if fileHeader.Size > h.cfg.MaxUploadBytes {
		response.BadRequest(c, fmt.Sprintf("file exceeds the %d byte limit", h.cfg.MaxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		response.InternalServerError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		response.InternalServerError(c, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		response.BadRequest(c, fmt.Sprintf("file exceeds the %d byte limit", h.cfg.MaxUploadBytes))
		return
	}

	job, err := h.service.StartImport(c.Request.Context(), ownerID, kind, fileHeader.Filename, data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start import")
		response.InternalServerError(c, "Failed to start import")
		return
	}

	response.Success(c, http.StatusAccepted, job)
}

// GetJob handles GET /v1/imports/:id.
func (h *ImportHandler) GetJob(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		h.renderJobError(c, err)
		return
	}

	response.Success(c, http.StatusOK, job)
}

// ListJobs handles GET /v1/imports with limit/offset pagination.
func (h *ImportHandler) ListJobs(c *gin.Context) {
	userID, ok := c.Get("userID")
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var query struct {
		Limit  int `form:"limit,default=20"`
		Offset int `form:"offset,default=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), userID.(uuid.UUID), query.Limit, query.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list import jobs")
		response.InternalServerError(c, "Failed to list import jobs")
		return
	}

	response.Success(c, http.StatusOK, jobs)
}

// ListRecords handles GET /v1/imports/:id/records with limit/offset
// pagination.
func (h *ImportHandler) ListRecords(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	var query struct {
		Limit  int `form:"limit,default=50"`
		Offset int `form:"offset,default=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	records, err := h.service.ListRecords(c.Request.Context(), id, query.Limit, query.Offset)
	if err != nil {
		h.renderJobError(c, err)
		return
	}

	response.Success(c, http.StatusOK, records)
}

type updateJobRequest struct {
	Status string `json:"status"`
}

func (r updateJobRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(string(model.StatusCancelled)),
		),
	)
}

// UpdateStatus handles PATCH /v1/imports/:id. Cancellation is the only
// status a caller may request directly.
func (h *ImportHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	job, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.renderJobError(c, err)
		return
	}

	response.Success(c, http.StatusOK, job)
}

// Retry handles POST /v1/imports/:id/retry.
func (h *ImportHandler) Retry(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.service.Retry(c.Request.Context(), id)
	if err != nil {
		h.renderJobError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, job)
}

// Events handles GET /v1/imports/:id/events as a server-sent event stream.
// Clients get the current snapshot first, then live updates until the job
// reaches a terminal state or they disconnect.
func (h *ImportHandler) Events(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		h.renderJobError(c, err)
		return
	}

	events, stop := h.notifier.Subscribe(c.Request.Context(), id)
	defer stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("progress", model.NewProgressEvent(job))
	c.Writer.Flush()
	if job.Status.Terminal() {
		return
	}

	// Keepalive comments stop proxies from closing an idle stream.
	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-keepalive.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			c.SSEvent("progress", event)
			c.Writer.Flush()
			if event.Status.Terminal() {
				return
			}
		}
	}
}

// Template handles GET /v1/imports/templates/:kind and streams an empty
// workbook with the expected headers.
func (h *ImportHandler) Template(c *gin.Context) {
	kind, err := model.ParseKind(c.Param("kind"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	f, err := spreadsheet.Template(kind)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build template workbook")
		response.InternalServerError(c, "Failed to build template")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="import_%s.xlsx"`, kind))
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("Failed to stream template workbook")
	}
}

func (h *ImportHandler) jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid job id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ImportHandler) renderJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrJobNotFound):
		response.NotFound(c, "Import job not found")
	case errors.Is(err, model.ErrNotCancellable), errors.Is(err, model.ErrNotRetryable):
		response.Conflict(c, err.Error())
	default:
		log.Error().Err(err).Msg("Import job request failed")
		response.InternalServerError(c, "Internal server error")
	}
}
