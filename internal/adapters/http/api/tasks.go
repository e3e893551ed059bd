package api

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizeos/workforce/internal/adapters/repository"
	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/internal/events"
)

type createTaskRequest struct {
	Title          string     `json:"title" binding:"required,min=3"`
	Description    string     `json:"description"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo     *string    `json:"assigned_to"`
	RequiredSkills []string   `json:"required_skills"`
	Deadline       *time.Time `json:"deadline"`
}

type updateTaskRequest struct {
	Title          *string    `json:"title" binding:"omitempty,min=3"`
	Description    *string    `json:"description"`
	Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo     *string    `json:"assigned_to"`
	RequiredSkills *[]string  `json:"required_skills"`
	Deadline       *time.Time `json:"deadline"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=assigned in_progress completed"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	creator := subject(c)
	task := model.Task{
		OrgID:          orgID(c),
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      &creator,
		RequiredSkills: model.StringList(req.RequiredSkills),
		Deadline:       req.Deadline,
	}
	if err := s.store.CreateTask(c.Request.Context(), &task); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	s.bus.Publish(c.Request.Context(), events.TaskCreated, model.TaskCreatedPayload{
		TaskID: task.ID,
		OrgID:  task.OrgID,
		Title:  task.Title,
	})

	respondData(c, http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	var query struct {
		Status string `form:"status" binding:"omitempty,oneof=assigned in_progress completed"`
		Page   int    `form:"page" binding:"omitempty,min=1"`
		Limit  int    `form:"limit" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = s.defaultPageSize
	}
	if query.Limit > s.maxPageSize {
		query.Limit = s.maxPageSize
	}

	tasks, total, err := s.store.ListTasks(c.Request.Context(), orgID(c), repository.TaskFilter{
		Status: query.Status,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
		"pagination": gin.H{
			"total":      total,
			"page":       query.Page,
			"limit":      query.Limit,
			"totalPages": int(math.Ceil(float64(total) / float64(query.Limit))),
		},
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Request.Context(), orgID(c), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.RequiredSkills != nil {
		updates["required_skills"] = model.StringList(*req.RequiredSkills)
	}
	if req.Deadline != nil {
		updates["deadline"] = *req.Deadline
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, errors.New("at least one field must be provided to update"))
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), orgID(c), c.Param("id"), updates)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// handleUpdateTaskStatus mutates the task's status and, when the task
// completes with an assignee, publishes task.completed. The response
// succeeds regardless of what the subscribers do with the event.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.store.UpdateTaskStatus(c.Request.Context(), orgID(c), c.Param("id"), req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	if task.Status == model.StatusCompleted && task.AssignedTo != nil {
		s.bus.Publish(c.Request.Context(), events.TaskCompleted, model.TaskCompletedPayload{
			TaskID:     task.ID,
			OrgID:      task.OrgID,
			EmployeeID: *task.AssignedTo,
		})
	}

	respondData(c, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	err := s.store.DeleteTask(c.Request.Context(), orgID(c), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted"})
}
