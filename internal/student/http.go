package student

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/izdlan/AttendanceSMC/internal/catalog"
	"github.com/izdlan/AttendanceSMC/internal/metrics"

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
	router.POST("/students", h.EnrollStudent)
	router.GET("/students", h.ListStudents)
	router.GET("/students/:id", h.GetStudent)
	router.PUT("/students/:id", h.UpdateStudent)
	router.DELETE("/students/:id", h.DeleteStudent)
	router.DELETE("/students/:id/attendance", h.ClearAttendance)
}

type enrollRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name" validate:"required"`
	Form      int    `json:"form" validate:"required,min=1"`
	Class     string `json:"class" validate:"required"`
}

type updateRequest struct {
	Name  string `json:"name" validate:"required"`
	Form  int    `json:"form" validate:"required,min=1"`
	Class string `json:"class" validate:"required"`
}

func (h *Handler) EnrollStudent(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || h.validate.Struct(&req) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.logger.InfoContext(c.Request.Context(), "enrolling student", "name", req.Name, "form", req.Form, "class", req.Class)
	student, err := h.service.Enroll(c.Request.Context(), EnrollInput{
		StudentID: req.StudentID,
		Name:      req.Name,
		Form:      req.Form,
		Class:     req.Class,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.metrics.RecordStudentEnrolled(c.Request.Context())

	c.JSON(http.StatusCreated, student)
}

func (h *Handler) ListStudents(c *gin.Context) {
	filter, ok := filterFromQuery(c)
	if !ok {
		return
	}

	students, err := h.service.ListStudents(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	student, err := h.service.GetStudentByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil || h.validate.Struct(&req) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.logger.InfoContext(c.Request.Context(), "updating student", "id", id)
	student, err := h.service.UpdateStudent(c.Request.Context(), id, req.Name, req.Form, req.Class)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}
	cascade := c.Query("cascade") == "true"

	h.logger.InfoContext(c.Request.Context(), "deleting student", "id", id, "cascade", cascade)
	if err := h.service.DeleteStudent(c.Request.Context(), id, cascade); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearAttendance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	h.logger.InfoContext(c.Request.Context(), "clearing attendance for student", "id", id)
	deleted, err := h.service.ClearAttendance(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		h.logger.Info("student not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
	case errors.Is(err, catalog.ErrUnknownForm):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
	case errors.Is(err, catalog.ErrInvalidClass):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class for this form"})
	case errors.Is(err, ErrDuplicateStudent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student ID or barcode already exists"})
	case errors.Is(err, ErrHasAttendance):
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete student with attendance records. Use cascade=true to delete attendance records as well."})
	case errors.Is(err, ErrInvalidInput):
		h.logger.Info("invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("internal error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// filterFromQuery parses the shared form/class query parameters. It writes
// the 400 response itself when the form value is not a number.
func filterFromQuery(c *gin.Context) (Filter, bool) {
	var filter Filter
	if v := c.Query("form"); v != "" {
		form, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
			return Filter{}, false
		}
		filter.Form = form
	}
	filter.Class = c.Query("class")
	return filter, true
}
