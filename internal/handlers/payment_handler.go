package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/services/payments"
)

type PaymentHandler struct {
	Payments *payments.Service
}

func NewPaymentHandler(payments *payments.Service) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

type InitiatePaymentReq struct {
	JobID string `json:"job_id"`
}

// Initiate starts a gateway checkout for a job and returns the hosted
// payment URL.
func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req InitiatePaymentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	payment, err := h.Payments.Initiate(c.Context(), jobID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Payment initiated",
		"data": fiber.Map{
			"pidx":        payment.Pidx,
			"payment_url": payment.PaymentURL,
			"payment":     payment,
		},
	})
}

// Verify settles the payment named by pidx against the gateway. The
// redirect query parameters are never trusted; only the lookup result.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	if _, err := getUserUUID(c); err != nil {
		return unauthorized(c)
	}

	pidx := c.Query("pidx")
	if pidx == "" {
		return badRequest(c, "pidx is required")
	}

	payment, err := h.Payments.Verify(c.Context(), pidx)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment " + string(payment.Status),
		"data":    fiber.Map{"payment": payment},
	})
}

// History lists the client's payments.
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.Payments.ListForUser(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"payments": list},
	})
}
