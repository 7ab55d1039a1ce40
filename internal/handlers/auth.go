package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/mail"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/otp"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
	"github.com/rojgarhq/rojgar-backend/internal/utils"
)

type AuthHandler struct {
	Users     repository.UserRepository
	OTP       *otp.Store
	Mailer    *mail.Mailer
	JWTSecret string
	Expires   int
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"code":    "VALIDATION_ERROR",
		"message": "Validation error",
		"errors":  errs,
	})
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // client / freelancer
}

// Register stages a signup and mails a verification code. No user row
// exists until the code is verified.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "Name is required")
	}
	if email == "" {
		errs.Add("email", "Email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Invalid email format")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	}
	if role != string(models.RoleClient) && role != string(models.RoleFreelancer) {
		errs.Add("role", "Role must be client or freelancer")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	if _, err := h.Users.FindByEmail(c.Context(), email); err == nil {
		errs := FieldErrors{}
		errs.Add("email", "Email is already registered")
		return validationFail(c, errs)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return apperr.Respond(c, err)
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process password",
		})
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate verification code",
		})
	}

	pending := otp.PendingSignup{
		Name:         name,
		Email:        email,
		PasswordHash: pw,
		Role:         role,
		Code:         code,
	}
	if err := h.OTP.Put(c.Context(), pending); err != nil {
		return apperr.Respond(c, err)
	}

	if err := h.Mailer.SendOTP(email, code); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"code":    "UNAVAILABLE",
			"message": "Failed to send verification email",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Verification code sent to your email",
	})
}

type VerifyOTPReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyOTP consumes the staged signup and creates the verified user.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return badRequest(c, "email and code are required")
	}

	pending, err := h.OTP.Verify(c.Context(), email, code)
	if err != nil {
		return apperr.Respond(c, err)
	}

	u := models.User{
		Name:       pending.Name,
		Email:      pending.Email,
		Password:   pending.PasswordHash,
		Role:       models.Role(pending.Role),
		IsVerified: true,
	}
	if err := h.Users.Create(c.Context(), &u); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"code":    "CONFLICT",
			"message": "Failed to create account",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}
	setSessionCookie(c, token, h.Expires)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account verified",
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
				"role":  u.Role,
			},
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	u, err := h.Users.FindByEmail(c.Context(), email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	if u.Password == "" || !utils.CheckPassword(u.Password, password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	if !u.IsVerified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"code":    "FORBIDDEN",
			"message": "Account is not verified",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}
	setSessionCookie(c, token, h.Expires)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data": fiber.Map{
			"user": fiber.Map{
				"id":        u.ID,
				"name":      u.Name,
				"email":     u.Email,
				"role":      u.Role,
				"onboarded": u.Onboarded,
			},
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	u, err := h.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": u},
	})
}

type UpdateRoleReq struct {
	Role string `json:"role"`
}

// UpdateRole flips the client/freelancer toggle and reissues the session
// token, since the role is embedded in the JWT.
func (h *AuthHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req UpdateRoleReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != string(models.RoleClient) && role != string(models.RoleFreelancer) {
		return badRequest(c, "role must be client or freelancer")
	}

	now := time.Now()
	if err := h.Users.UpdateFields(c.Context(), userID, map[string]interface{}{
		"role":            role,
		"role_changed_at": now,
	}); err != nil {
		return apperr.Respond(c, err)
	}

	token, err := utils.SignJWT(h.JWTSecret, userID.String(), role, h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}
	setSessionCookie(c, token, h.Expires)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Role updated",
		"data":    fiber.Map{"role": role},
	})
}

type OnboardingReq struct {
	Interests []string `json:"interests"`
}

// SetOnboarding records the user's interests and marks onboarding done.
func (h *AuthHandler) SetOnboarding(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req OnboardingReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if len(req.Interests) == 0 {
		return badRequest(c, "at least one interest is required")
	}

	raw, err := json.Marshal(req.Interests)
	if err != nil {
		return badRequest(c, "invalid interests")
	}

	if err := h.Users.UpdateFields(c.Context(), userID, map[string]interface{}{
		"interests": datatypes.JSON(raw),
		"onboarded": true,
	}); err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Onboarding complete",
	})
}
