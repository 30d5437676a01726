package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleSearchTeachers(c *gin.Context) {
	teachers, err := s.schedule.SearchTeachers(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, teachers)
}

func (s *Server) handleOpenSlots(c *gin.Context) {
	slots, err := s.schedule.OpenSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

type requestAppointmentRequest struct {
	SlotID  string `json:"slot_id" binding:"required"`
	Purpose string `json:"purpose"`
}

func (s *Server) handleRequestAppointment(c *gin.Context) {
	var req requestAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := s.appointments.Request(c.Request.Context(),
		sessionClaims(c).UserID, req.SlotID, req.Purpose)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": appt,
		"message":     "Appointment request sent successfully!",
	})
}

func (s *Server) handleStudentAppointments(c *gin.Context) {
	appts, err := s.appointments.StudentAppointments(c.Request.Context(), sessionClaims(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, appts)
}
