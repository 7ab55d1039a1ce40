package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/services/jobs"
)

type JobHandler struct {
	Jobs *jobs.Service
}

func NewJobHandler(jobs *jobs.Service) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

type CreateJobReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      int64    `json:"budget"`
	PaymentType string   `json:"payment_type"`
	Tags        []string `json:"tags"`
	Milestones  []struct {
		Description string `json:"description"`
		Amount      int64  `json:"amount"`
	} `json:"milestones"`
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	in := jobs.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		PaymentType: models.PaymentType(req.PaymentType),
		Tags:        req.Tags,
	}
	for _, m := range req.Milestones {
		in.Milestones = append(in.Milestones, jobs.MilestoneInput{
			Description: m.Description,
			Amount:      m.Amount,
		})
	}

	job, err := h.Jobs.Create(c.Context(), userID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Job posted",
		"data":    fiber.Map{"job": job},
	})
}

// ListMine returns the client's jobs grouped by lifecycle stage.
func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	grouped, err := h.Jobs.ListForClient(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    grouped,
	})
}

// ListOpen is the public job board for freelancers.
func (h *JobHandler) ListOpen(c *fiber.Ctx) error {
	openJobs, err := h.Jobs.ListOpen(c.Context())
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"jobs": openJobs},
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	job, err := h.Jobs.Get(c.Context(), jobID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"job": job},
	})
}

func (h *JobHandler) ListMilestones(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	milestones, err := h.Jobs.ListMilestones(c.Context(), jobID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"milestones": milestones},
	})
}

func (h *JobHandler) Cancel(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	if err := h.Jobs.Cancel(c.Context(), jobID, userID); err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job cancelled",
	})
}

func (h *JobHandler) Complete(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	job, err := h.Jobs.Complete(c.Context(), jobID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job completed",
		"data":    fiber.Map{"job": job},
	})
}
