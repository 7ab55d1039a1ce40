package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/services/proposals"
)

type ProposalHandler struct {
	Proposals *proposals.Service
}

func NewProposalHandler(proposals *proposals.Service) *ProposalHandler {
	return &ProposalHandler{Proposals: proposals}
}

type SubmitProposalReq struct {
	CoverLetter string `json:"cover_letter"`
	BidAmount   int64  `json:"bid_amount"`
}

func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	var req SubmitProposalReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	proposal, err := h.Proposals.Submit(c.Context(), jobID, userID, req.CoverLetter, req.BidAmount)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Proposal submitted",
		"data":    fiber.Map{"proposal": proposal},
	})
}

// Decide accepts or rejects a pending proposal; the action comes from
// the route path.
func (h *ProposalHandler) Decide(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}
	action := c.Params("action")

	proposal, err := h.Proposals.Decide(c.Context(), proposalID, userID, action)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Proposal " + string(proposal.Status),
		"data":    fiber.Map{"proposal": proposal},
	})
}

func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}

	proposal, err := h.Proposals.Get(c.Context(), proposalID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"proposal": proposal},
	})
}

func (h *ProposalHandler) ListForClient(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.Proposals.ListForClient(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"proposals": list},
	})
}

func (h *ProposalHandler) ListForFreelancer(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.Proposals.ListForFreelancer(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"proposals": list},
	})
}

// ListAccepted returns the user's active workspaces on either side.
func (h *ProposalHandler) ListAccepted(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	role := models.RoleFreelancer
	if r, ok := c.Locals("role").(string); ok && r == string(models.RoleClient) {
		role = models.RoleClient
	}

	list, err := h.Proposals.ListAccepted(c.Context(), userID, role)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"proposals": list},
	})
}
