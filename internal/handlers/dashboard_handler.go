package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/services/jobs"
	"github.com/rojgarhq/rojgar-backend/internal/services/proposals"
)

type DashboardHandler struct {
	Jobs      *jobs.Service
	Proposals *proposals.Service
}

func NewDashboardHandler(jobs *jobs.Service, proposals *proposals.Service) *DashboardHandler {
	return &DashboardHandler{Jobs: jobs, Proposals: proposals}
}

// Overview returns the role-appropriate landing data: job partitions for
// clients, proposals plus active workspaces for freelancers.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	role, _ := c.Locals("role").(string)

	if role == string(models.RoleClient) {
		grouped, err := h.Jobs.ListForClient(c.Context(), userID)
		if err != nil {
			return apperr.Respond(c, err)
		}
		pending, err := h.Proposals.ListForClient(c.Context(), userID)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"role":      role,
				"jobs":      grouped,
				"proposals": pending,
			},
		})
	}

	mine, err := h.Proposals.ListForFreelancer(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	active, err := h.Proposals.ListAccepted(c.Context(), userID, models.RoleFreelancer)
	if err != nil {
		return apperr.Respond(c, err)
	}
	openJobs, err := h.Jobs.ListOpen(c.Context())
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"role":       role,
			"proposals":  mine,
			"workspaces": active,
			"open_jobs":  openJobs,
		},
	})
}
