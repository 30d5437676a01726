package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handlePendingStudents(c *gin.Context) {
	students, err := s.admin.PendingStudents(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (s *Server) handleApproveStudent(c *gin.Context) {
	if err := s.admin.ApproveStudent(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Student approved successfully!"})
}

type createTeacherRequest struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
	Subject    string `json:"subject"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

func (s *Server) handleCreateTeacher(c *gin.Context) {
	var req createTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	teacher, err := s.admin.CreateTeacher(c.Request.Context(),
		req.Name, req.Department, req.Subject, req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, teacher)
}

func (s *Server) handleListTeachers(c *gin.Context) {
	teachers, err := s.admin.Teachers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, teachers)
}

func (s *Server) handleDeleteTeacher(c *gin.Context) {
	if err := s.admin.DeleteTeacher(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Teacher deleted successfully."})
}
