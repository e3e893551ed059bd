package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizeos/workforce/internal/domain/assign"
)

type smartAssignRequest struct {
	RequiredSkills []string `json:"required_skills"`
}

func (s *Server) handleSmartAssign(c *gin.Context) {
	var req smartAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	candidates, err := s.assign.Recommend(c.Request.Context(), orgID(c), req.RequiredSkills)
	if errors.Is(err, assign.ErrNoRequiredSkills) {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"recommendations": candidates})
}

func (s *Server) handleScores(c *gin.Context) {
	rows, err := s.store.ListScores(c.Request.Context(), orgID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}
