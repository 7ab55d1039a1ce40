package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/services/tasks"
)

type TaskHandler struct {
	Tasks *tasks.Service
}

func NewTaskHandler(tasks *tasks.Service) *TaskHandler {
	return &TaskHandler{Tasks: tasks}
}

type CreateTaskReq struct {
	ProposalID  string `json:"proposal_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"` // RFC 3339
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateTaskReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}

	var deadline time.Time
	if req.Deadline != "" {
		deadline, err = time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return badRequest(c, "deadline must be RFC 3339")
		}
	}

	task, err := h.Tasks.Create(c.Context(), userID, tasks.CreateInput{
		ProposalID:  proposalID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
	})
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Task created",
		"data":    fiber.Map{"task": task},
	})
}

func (h *TaskHandler) ListByJob(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	list, err := h.Tasks.ListByJob(c.Context(), jobID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"tasks": list},
	})
}

type UpdateTaskStatusReq struct {
	Status         string `json:"status"`
	RevisionReason string `json:"revision_reason"`
}

func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid task id")
	}

	var req UpdateTaskStatusReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Status == "" {
		return badRequest(c, "status is required")
	}

	task, err := h.Tasks.Transition(c.Context(), taskID, userID, models.TaskStatus(req.Status), req.RevisionReason)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task updated",
		"data":    fiber.Map{"task": task},
	})
}
