package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
)

const maxUploadBytes = 10 << 20 // 10 MB

type FileHandler struct {
	Files     repository.FileRepository
	Jobs      repository.JobRepository
	Proposals repository.ProposalRepository
	UploadDir string
}

func NewFileHandler(files repository.FileRepository, jobs repository.JobRepository, proposals repository.ProposalRepository, uploadDir string) *FileHandler {
	return &FileHandler{Files: files, Jobs: jobs, Proposals: proposals, UploadDir: uploadDir}
}

// hasJobAccess allows the job's client and, once a proposal is accepted,
// its freelancer.
func (h *FileHandler) hasJobAccess(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	job, err := h.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job.ClientID == userID {
		return true, nil
	}
	if job.AcceptedProposalID == nil {
		return false, nil
	}
	proposal, err := h.Proposals.FindByID(ctx, *job.AcceptedProposalID)
	if err != nil {
		return false, err
	}
	return proposal.FreelancerID == userID, nil
}

// Upload stores a multipart file on disk under the uploader's directory
// and records its metadata. An optional job_id links it to a workspace.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"code":    "VALIDATION_ERROR",
			"message": "file exceeds the 10MB limit",
		})
	}

	var jobID *uuid.UUID
	if raw := c.FormValue("job_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid job id")
		}
		ok, err := h.hasJobAccess(c.Context(), parsed, userID)
		if err != nil {
			return apperr.Respond(c, err)
		}
		if !ok {
			return apperr.Respond(c, apperr.Forbidden("you do not have access to this job"))
		}
		jobID = &parsed
	}

	userDir := filepath.Join(h.UploadDir, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to prepare upload directory",
		})
	}

	storedName := fmt.Sprintf("%s_%s", uuid.New().String()[:8], filepath.Base(fileHeader.Filename))
	dst := filepath.Join(userDir, storedName)
	if err := c.SaveFile(fileHeader, dst); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to save file",
		})
	}

	file := &models.File{
		UserID:   userID,
		JobID:    jobID,
		Filename: fileHeader.Filename,
		Path:     dst,
		Mimetype: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
	}
	if raw := c.FormValue("tags"); raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			if enc, err := json.Marshal(tags); err == nil {
				file.Tags = datatypes.JSON(enc)
			}
		}
	}

	if err := h.Files.Create(c.Context(), file); err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File uploaded",
		"data":    fiber.Map{"file": file},
	})
}

// ListByJob returns a workspace's files for a job party.
func (h *FileHandler) ListByJob(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	ok, err := h.hasJobAccess(c.Context(), jobID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if !ok {
		return apperr.Respond(c, apperr.Forbidden("you do not have access to this job"))
	}

	files, err := h.Files.ListByJob(c.Context(), jobID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"files": files},
	})
}

// ListMine returns the user's own uploads.
func (h *FileHandler) ListMine(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	files, err := h.Files.ListByUser(c.Context(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"files": files},
	})
}

func (h *FileHandler) authorizeFile(c *fiber.Ctx) (*models.File, error) {
	userID, err := getUserUUID(c)
	if err != nil {
		return nil, apperr.ErrForbidden
	}

	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperr.Validation("invalid file id")
	}

	file, err := h.Files.FindByID(c.Context(), fileID)
	if err != nil {
		return nil, err
	}

	if file.UserID == userID {
		return file, nil
	}
	if file.JobID != nil {
		ok, err := h.hasJobAccess(c.Context(), *file.JobID, userID)
		if err != nil {
			return nil, err
		}
		if ok {
			return file, nil
		}
	}
	return nil, apperr.Forbidden("you do not have access to this file")
}

// Download streams the file as an attachment.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	file, err := h.authorizeFile(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Download(file.Path, file.Filename)
}

// View streams the file inline.
func (h *FileHandler) View(c *fiber.Ctx) error {
	file, err := h.authorizeFile(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if file.Mimetype != "" {
		c.Set(fiber.HeaderContentType, file.Mimetype)
	}
	return c.SendFile(file.Path)
}

// Delete removes the metadata row and the bytes. Only the uploader can
// delete a file.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid file id")
	}

	file, err := h.Files.FindByID(c.Context(), fileID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if file.UserID != userID {
		return apperr.Respond(c, apperr.Forbidden("only the uploader can delete this file"))
	}

	if err := h.Files.Delete(c.Context(), fileID); err != nil {
		return apperr.Respond(c, err)
	}
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		// metadata row already gone; the orphan on disk is harmless
		log.Printf("failed to remove file from disk: %v", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted",
	})
}
