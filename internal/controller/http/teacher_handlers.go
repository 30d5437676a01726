package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addSlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

func (s *Server) handleAddSlot(c *gin.Context) {
	var req addSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The slot row carries the teacher's display name, so resolve the account.
	teacher, err := s.auth.CurrentUser(c.Request.Context(), sessionClaims(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	slot, err := s.schedule.AddSlot(c.Request.Context(), teacher, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

func (s *Server) handleTeacherSlots(c *gin.Context) {
	slots, err := s.schedule.TeacherSlots(c.Request.Context(), sessionClaims(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

func (s *Server) handleDeleteSlot(c *gin.Context) {
	err := s.schedule.DeleteSlot(c.Request.Context(), sessionClaims(c).UserID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted."})
}

func (s *Server) handleTeacherAppointments(c *gin.Context) {
	appts, err := s.appointments.TeacherAppointments(c.Request.Context(), sessionClaims(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, appts)
}

func (s *Server) handleApproveAppointment(c *gin.Context) {
	err := s.appointments.Approve(c.Request.Context(), sessionClaims(c).UserID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment confirmed."})
}

func (s *Server) handleCancelAppointment(c *gin.Context) {
	err := s.appointments.Cancel(c.Request.Context(), sessionClaims(c).UserID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled."})
}
