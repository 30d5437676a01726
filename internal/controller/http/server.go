// Package http exposes the portal over a JSON API: one route group per page
// surface (auth, admin, teacher, student), each guarded by role middleware.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unifiedmentor/appointment-portal/internal/model"
	"github.com/unifiedmentor/appointment-portal/internal/repository"
	"github.com/unifiedmentor/appointment-portal/internal/service"
)

type Server struct {
	auth         *service.AuthService
	admin        *service.AdminService
	schedule     *service.ScheduleService
	appointments *service.AppointmentService
	jwtSecret    string
	logger       *zap.Logger
}

func NewServer(
	auth *service.AuthService,
	admin *service.AdminService,
	schedule *service.ScheduleService,
	appointments *service.AppointmentService,
	jwtSecret string,
	logger *zap.Logger,
) *Server {
	return &Server{
		auth:         auth,
		admin:        admin,
		schedule:     schedule,
		appointments: appointments,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

// Router builds the gin engine with all portal routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("")
	authed.Use(s.sessionRequired())
	authed.GET("/me", s.handleMe)

	admin := authed.Group("/admin")
	admin.Use(s.roleRequired(model.RoleAdmin))
	admin.GET("/students/pending", s.handlePendingStudents)
	admin.POST("/students/:id/approve", s.handleApproveStudent)
	admin.GET("/teachers", s.handleListTeachers)
	admin.POST("/teachers", s.handleCreateTeacher)
	admin.DELETE("/teachers/:id", s.handleDeleteTeacher)

	teacher := authed.Group("/teacher")
	teacher.Use(s.roleRequired(model.RoleTeacher))
	teacher.GET("/slots", s.handleTeacherSlots)
	teacher.POST("/slots", s.handleAddSlot)
	teacher.DELETE("/slots/:id", s.handleDeleteSlot)
	teacher.GET("/appointments", s.handleTeacherAppointments)
	teacher.POST("/appointments/:id/approve", s.handleApproveAppointment)
	teacher.POST("/appointments/:id/cancel", s.handleCancelAppointment)

	student := authed.Group("")
	student.Use(s.approvedStudentRequired())
	student.GET("/teachers/search", s.handleSearchTeachers)
	student.GET("/teachers/:id/slots", s.handleOpenSlots)
	student.GET("/appointments", s.handleStudentAppointments)
	student.POST("/appointments", s.handleRequestAppointment)

	return router
}

// fail maps service and storage errors onto HTTP statuses. The short
// human-readable message is passed through to the caller; only unclassified
// errors are hidden behind a generic message and logged.
func (s *Server) fail(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrPurposeRequired),
		errors.Is(err, model.ErrBadDate),
		errors.Is(err, model.ErrBadTime),
		errors.Is(err, model.ErrBadTimeWindow),
		errors.Is(err, model.ErrDateInPast):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotApproved),
		errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrSlotUnavailable),
		errors.Is(err, repository.ErrSlotReferenced),
		errors.Is(err, repository.ErrTeacherReferenced),
		errors.Is(err, repository.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		s.logger.Error("Request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
