package updates

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dotupdate-backend/internal/airtable"
	"dotupdate-backend/internal/shared/metrics"
	"dotupdate-backend/internal/shared/server/respond"
)

const (
	serviceName    = "dot-update"
	serviceVersion = "2.0"
)

// Handler wires HTTP handlers to the update service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the update routes to the engine. The paths are part
// of the existing automation contract and stay at the root.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/update", h.handleUpdate)
	r.GET("/updates/:jobNumber", h.handleHistory)
	r.GET("/health", h.handleHealth)
}

type updateRequest struct {
	JobNumber    string `json:"jobNumber"`
	EmailContent string `json:"emailContent"`
}

func (h *Handler) handleUpdate(c *gin.Context) {
	metrics.IncUpdateRequest()
	start := time.Now()
	defer func() {
		metrics.ObserveUpdateDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Failure(c, http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "request body must be JSON",
		})
		return
	}
	if req.JobNumber == "" {
		respond.Failure(c, http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "No job number provided",
		})
		return
	}
	c.Set("jobNumber", req.JobNumber)
	if req.EmailContent == "" {
		respond.Failure(c, http.StatusBadRequest, gin.H{
			"error":     "validation_error",
			"message":   "No email content provided",
			"jobNumber": req.JobNumber,
		})
		return
	}

	result, err := h.Svc.Process(c.Request.Context(), req.JobNumber, req.EmailContent)
	if err != nil {
		h.respondError(c, req.JobNumber, err)
		return
	}

	c.Set("updateOutcome", OutcomeOK)
	respond.OK(c, successPayload(req.JobNumber, result))
}

func (h *Handler) respondError(c *gin.Context, jobNumber string, err error) {
	var notFound *airtable.NotFoundError
	var upstream *airtable.UpstreamError
	var malformed *MalformedOutputError
	var rejection *Rejection

	switch {
	case errors.As(err, &notFound):
		c.Set("updateOutcome", OutcomeFailed)
		respond.Failure(c, http.StatusNotFound, gin.H{
			"error":     "job_not_found",
			"jobNumber": jobNumber,
			"message":   "Could not find job " + jobNumber + " in the system",
		})
	case errors.Is(err, airtable.ErrNotConfigured):
		c.Set("updateOutcome", OutcomeFailed)
		respond.Failure(c, http.StatusServiceUnavailable, gin.H{
			"error":     "not_configured",
			"jobNumber": jobNumber,
			"message":   "Datastore credentials are not configured",
		})
	case errors.As(err, &rejection):
		c.Set("updateOutcome", OutcomeRejected)
		respond.Failure(c, http.StatusBadRequest, gin.H{
			"error":     rejection.Code,
			"jobNumber": jobNumber,
			"message":   rejection.Message,
		})
	case errors.As(err, &malformed):
		c.Set("updateOutcome", OutcomeFailed)
		respond.Failure(c, http.StatusInternalServerError, gin.H{
			"error":       "invalid_model_output",
			"jobNumber":   jobNumber,
			"message":     malformed.Err.Error(),
			"rawResponse": malformed.Raw,
		})
	case errors.As(err, &upstream):
		c.Set("updateOutcome", OutcomeFailed)
		respond.Failure(c, http.StatusBadGateway, gin.H{
			"error":     "upstream_error",
			"jobNumber": jobNumber,
			"message":   upstream.Error(),
		})
	default:
		c.Set("updateOutcome", OutcomeFailed)
		respond.Failure(c, http.StatusInternalServerError, gin.H{
			"error":     "internal_error",
			"jobNumber": jobNumber,
			"message":   "Unexpected internal failure",
		})
	}
}

func successPayload(jobNumber string, result Result) gin.H {
	analysis := result.Analysis
	payload := gin.H{
		"jobNumber":       jobNumber,
		"jobName":         result.Project.JobName,
		"update":          analysis.UpdateSummary,
		"updateDue":       airtable.FormatDate(result.UpdateDue),
		"stage":           analysis.Stage,
		"status":          analysis.Status,
		"withClient":      analysis.WithClient,
		"hasBlocker":      analysis.HasBlocker,
		"blockerNote":     analysis.BlockerNote,
		"confidence":      analysis.Confidence,
		"confidenceNote":  analysis.ConfidenceNote,
		"updateCreated":   result.UpdateCreated,
		"projectUpdated":  result.ProjectUpdated,
		"projectRecordId": result.Project.RecordID,
	}
	if analysis.ChatMessage != nil {
		payload["chatMessage"] = analysis.ChatMessage
	}
	if result.Project.TeamsChannelID != "" {
		payload["teamsChannelId"] = result.Project.TeamsChannelID
	}
	return payload
}

func (h *Handler) handleHistory(c *gin.Context) {
	jobNumber := c.Param("jobNumber")
	if jobNumber == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job number is required", nil)
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.Svc.History(c.Request.Context(), jobNumber, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list update history", nil)
		return
	}
	if entries == nil {
		entries = []UpdateLog{}
	}

	respond.OK(c, gin.H{
		"jobNumber": jobNumber,
		"updates":   entries,
	})
}

func (h *Handler) handleHealth(c *gin.Context) {
	respond.OK(c, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}
