package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
	"github.com/rojgarhq/rojgar-backend/internal/services/cvparser"
)

type ProfileHandler struct {
	Profiles repository.ProfileRepository
	Parser   *cvparser.Service
}

func NewProfileHandler(profiles repository.ProfileRepository, parser *cvparser.Service) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Parser: parser}
}

type ParseCVReq struct {
	Text string `json:"text"`
}

// ParseCV extracts a structured profile from raw CV text without
// persisting anything; the client reviews it before saving.
func (h *ProfileHandler) ParseCV(c *fiber.Ctx) error {
	if _, err := getUserUUID(c); err != nil {
		return unauthorized(c)
	}

	var req ParseCVReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "cv text is required")
	}

	parsed, err := h.Parser.Parse(req.Text)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"code":    "UNAVAILABLE",
			"message": "CV parsing failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"profile": parsed},
	})
}

type SaveProfileReq struct {
	Name       string                `json:"name"`
	Email      string                `json:"email"`
	Phone      string                `json:"phone"`
	Bio        string                `json:"bio"`
	Skills     []string              `json:"skills"`
	Education  []cvparser.Education  `json:"education"`
	Experience []cvparser.Experience `json:"experience"`
}

func (h *ProfileHandler) buildProfile(req SaveProfileReq) (*models.Profile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	skills, err := json.Marshal(req.Skills)
	if err != nil {
		return nil, apperr.Validation("invalid skills")
	}
	education, err := json.Marshal(req.Education)
	if err != nil {
		return nil, apperr.Validation("invalid education")
	}
	experience, err := json.Marshal(req.Experience)
	if err != nil {
		return nil, apperr.Validation("invalid experience")
	}

	bio := strings.TrimSpace(req.Bio)
	shortBio := bio
	// truncate on a rune boundary so multibyte text is never split
	if runes := []rune(shortBio); len(runes) > 200 {
		shortBio = string(runes[:200])
	}

	return &models.Profile{
		Name:       name,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      strings.TrimSpace(req.Phone),
		Bio:        bio,
		ShortBio:   shortBio,
		Skills:     datatypes.JSON(skills),
		Education:  datatypes.JSON(education),
		Experience: datatypes.JSON(experience),
	}, nil
}

// Create saves a reviewed profile for the authenticated user.
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req SaveProfileReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	profile, err := h.buildProfile(req)
	if err != nil {
		return apperr.Respond(c, err)
	}
	profile.UserID = &userID

	if err := h.Profiles.Create(c.Context(), profile); err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Profile saved",
		"data":    fiber.Map{"profile": profile},
	})
}

func (h *ProfileHandler) List(c *fiber.Ctx) error {
	profiles, err := h.Profiles.List(c.Context())
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"profiles": profiles},
	})
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	profileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid profile id")
	}

	profile, err := h.Profiles.FindByID(c.Context(), profileID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"profile": profile},
	})
}

// Update replaces the profile's content. Only its owner may update it.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	profileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid profile id")
	}

	existing, err := h.Profiles.FindByID(c.Context(), profileID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if existing.UserID == nil || *existing.UserID != userID {
		return apperr.Respond(c, apperr.Forbidden("only the owner can update this profile"))
	}

	var req SaveProfileReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	updated, err := h.buildProfile(req)
	if err != nil {
		return apperr.Respond(c, err)
	}

	existing.Name = updated.Name
	existing.Email = updated.Email
	existing.Phone = updated.Phone
	existing.Bio = updated.Bio
	existing.ShortBio = updated.ShortBio
	existing.Skills = updated.Skills
	existing.Education = updated.Education
	existing.Experience = updated.Experience

	if err := h.Profiles.Update(c.Context(), existing); err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated",
		"data":    fiber.Map{"profile": existing},
	})
}
