package attendance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/izdlan/AttendanceSMC/internal/metrics"
	"github.com/izdlan/AttendanceSMC/internal/student"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/attendance/scan", h.Scan)
	router.GET("/attendance/:date", h.AttendanceForDate)
	router.GET("/reports/:date/absent", h.AbsentForDate)
	router.GET("/reports/:date/late", h.LateForDate)
	router.GET("/stats", h.Stats)
}

type scanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
	// ObservedAt is the kiosk's own scan time (RFC3339). Optional; the
	// server clock is used when absent.
	ObservedAt string `json:"observedAt"`
}

func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil || h.validate.Struct(&req) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Barcode is required"})
		return
	}

	var observedAt time.Time
	if req.ObservedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ObservedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid observedAt, must be RFC3339"})
			return
		}
		observedAt = t
	}

	h.logger.InfoContext(c.Request.Context(), "resolving scan", "barcode", req.Barcode)
	outcome, err := h.service.ResolveScan(c.Request.Context(), req.Barcode, observedAt)
	if err != nil {
		if errors.Is(err, student.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Barcode is required"})
			return
		}
		h.logger.Error("scan failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch outcome.Kind {
	case OutcomeAccepted:
		h.metrics.RecordScanAccepted(c.Request.Context())
		c.JSON(http.StatusOK, outcome)
	case OutcomeNotFound:
		h.metrics.RecordScanRejected(c.Request.Context())
		c.JSON(http.StatusNotFound, outcome)
	default:
		// Window and duplicate rejections are warnings, not failures: the
		// kiosk user did nothing wrong.
		h.metrics.RecordScanRejected(c.Request.Context())
		c.JSON(http.StatusOK, outcome)
	}
}

func (h *Handler) AttendanceForDate(c *gin.Context) {
	h.report(c, h.service.AttendanceForDate)
}

func (h *Handler) AbsentForDate(c *gin.Context) {
	h.report(c, h.service.AbsentForDate)
}

func (h *Handler) LateForDate(c *gin.Context) {
	h.report(c, h.service.LateForDate)
}

// report handles the shared shape of the three views: date path param,
// form/class filter, rows out.
func (h *Handler) report(c *gin.Context, view func(ctx context.Context, date string, filter student.Filter) ([]Row, error)) {
	date := c.Param("date")
	if _, err := time.Parse(DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, must be YYYY-MM-DD"})
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	rows, err := view(c.Request.Context(), date, filter)
	if err != nil {
		h.logger.Error("report failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordReportViewed(c.Request.Context())

	c.JSON(http.StatusOK, rows)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseFilter(c *gin.Context) (student.Filter, bool) {
	var filter student.Filter
	if v := c.Query("form"); v != "" {
		form, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
			return student.Filter{}, false
		}
		filter.Form = form
	}
	filter.Class = c.Query("class")
	return filter, true
}
