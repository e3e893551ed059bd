package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizeos/workforce/internal/adapters/repository"
	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/internal/events"
)

type createEmployeeRequest struct {
	Name          string   `json:"name" binding:"required,min=2"`
	Email         string   `json:"email" binding:"required,email"`
	Role          string   `json:"role"`
	Department    string   `json:"department"`
	Skills        []string `json:"skills"`
	WalletAddress *string  `json:"wallet_address"`
}

func (s *Server) handleCreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	emp := model.Employee{
		OrgID:         orgID(c),
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Department:    req.Department,
		Skills:        model.StringList(req.Skills),
		WalletAddress: req.WalletAddress,
		Status:        model.EmployeeActive,
	}
	if err := s.store.CreateEmployee(c.Request.Context(), &emp); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	s.bus.Publish(c.Request.Context(), events.EmployeeAdded, model.EmployeeAddedPayload{
		EmployeeID: emp.ID,
		OrgID:      emp.OrgID,
	})

	respondData(c, http.StatusCreated, emp)
}

func (s *Server) handleListEmployees(c *gin.Context) {
	employees, err := s.store.ListEmployees(c.Request.Context(), orgID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondData(c, http.StatusOK, employees)
}

func (s *Server) handleGetEmployee(c *gin.Context) {
	emp, err := s.store.GetEmployee(c.Request.Context(), orgID(c), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondData(c, http.StatusOK, emp)
}
