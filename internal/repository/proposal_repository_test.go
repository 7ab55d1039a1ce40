package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
)

// The uuid defaults in the model tags are Postgres functions, so the
// sqlite test schema is declared by hand and ids are set explicitly.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection gets its own in-memory database, so keep
	// the pool at one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE jobs (
			id text PRIMARY KEY,
			client_id text NOT NULL,
			title text NOT NULL,
			description text NOT NULL,
			budget integer NOT NULL,
			payment_type text NOT NULL,
			status text,
			accepted_proposal_id text,
			tags text,
			created_at datetime,
			updated_at datetime)`,
		`CREATE TABLE proposals (
			id text PRIMARY KEY,
			job_id text NOT NULL,
			freelancer_id text NOT NULL,
			client_id text NOT NULL,
			cover_letter text NOT NULL,
			bid_amount integer NOT NULL,
			status text,
			created_at datetime,
			updated_at datetime)`,
		`CREATE TABLE milestones (
			id text PRIMARY KEY,
			job_id text NOT NULL,
			description text NOT NULL,
			amount integer NOT NULL,
			status text,
			due_date datetime,
			created_at datetime,
			updated_at datetime)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOpenJobWithProposals(t *testing.T, db *gorm.DB) (*models.Job, *models.Proposal, *models.Proposal) {
	t.Helper()
	clientID := uuid.New()

	job := &models.Job{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       "Build a landing page",
		Description: "Next.js site with CMS",
		Budget:      20000,
		PaymentType: models.PaymentTypeFull,
		Status:      models.JobStatusOpen,
	}
	require.NoError(t, db.Create(job).Error)

	p1 := &models.Proposal{
		ID:           uuid.New(),
		JobID:        job.ID,
		FreelancerID: uuid.New(),
		ClientID:     clientID,
		CoverLetter:  "I have shipped three of these",
		BidAmount:    18000,
		Status:       models.ProposalStatusPending,
	}
	p2 := &models.Proposal{
		ID:           uuid.New(),
		JobID:        job.ID,
		FreelancerID: uuid.New(),
		ClientID:     clientID,
		CoverLetter:  "Available immediately",
		BidAmount:    17000,
		Status:       models.ProposalStatusPending,
	}
	require.NoError(t, db.Create(p1).Error)
	require.NoError(t, db.Create(p2).Error)

	return job, p1, p2
}

func TestAcceptExclusiveSQL(t *testing.T) {
	ctx := context.Background()

	t.Run("first accept wins and rejects siblings", func(t *testing.T) {
		db := openTestDB(t)
		job, p1, p2 := seedOpenJobWithProposals(t, db)
		repo := NewProposalRepository(db)

		require.NoError(t, repo.AcceptExclusive(ctx, p1.ID, job.ID))

		var gotJob models.Job
		require.NoError(t, db.First(&gotJob, "id = ?", job.ID).Error)
		assert.Equal(t, models.JobStatusInProgress, gotJob.Status)
		require.NotNil(t, gotJob.AcceptedProposalID)
		assert.Equal(t, p1.ID, *gotJob.AcceptedProposalID)

		var got1, got2 models.Proposal
		require.NoError(t, db.First(&got1, "id = ?", p1.ID).Error)
		require.NoError(t, db.First(&got2, "id = ?", p2.ID).Error)
		assert.Equal(t, models.ProposalStatusAccepted, got1.Status)
		assert.Equal(t, models.ProposalStatusRejected, got2.Status)
	})

	t.Run("a second accept conflicts", func(t *testing.T) {
		db := openTestDB(t)
		job, p1, p2 := seedOpenJobWithProposals(t, db)
		repo := NewProposalRepository(db)

		require.NoError(t, repo.AcceptExclusive(ctx, p1.ID, job.ID))
		assert.ErrorIs(t, repo.AcceptExclusive(ctx, p2.ID, job.ID), apperr.ErrConflict)

		var accepted int64
		require.NoError(t, db.Model(&models.Proposal{}).
			Where("status = ?", models.ProposalStatusAccepted).
			Count(&accepted).Error)
		assert.Equal(t, int64(1), accepted)
	})

	t.Run("losing the job race rolls the proposal back", func(t *testing.T) {
		db := openTestDB(t)
		job, p1, p2 := seedOpenJobWithProposals(t, db)
		repo := NewProposalRepository(db)

		require.NoError(t, repo.AcceptExclusive(ctx, p1.ID, job.ID))

		// a proposal that somehow stayed Pending after the job was taken
		require.NoError(t, db.Model(&models.Proposal{}).
			Where("id = ?", p2.ID).
			Update("status", models.ProposalStatusPending).Error)

		assert.ErrorIs(t, repo.AcceptExclusive(ctx, p2.ID, job.ID), apperr.ErrConflict)

		var got2 models.Proposal
		require.NoError(t, db.First(&got2, "id = ?", p2.ID).Error)
		assert.Equal(t, models.ProposalStatusPending, got2.Status)
	})
}

func TestCreateWithScheduleSQL(t *testing.T) {
	ctx := context.Background()

	newMilestoneJob := func() (*models.Job, []models.Milestone) {
		job := &models.Job{
			ID:          uuid.New(),
			ClientID:    uuid.New(),
			Title:       "Brand refresh",
			Description: "Logo, palette, site skin",
			Budget:      30000,
			PaymentType: models.PaymentTypeMilestone,
			Status:      models.JobStatusOpen,
		}
		milestones := []models.Milestone{
			{ID: uuid.New(), Description: "logo", Amount: 10000, Status: models.MilestoneStatusPending},
			{ID: uuid.New(), Description: "site skin", Amount: 20000, Status: models.MilestoneStatusPending},
		}
		return job, milestones
	}

	t.Run("persists job and full schedule", func(t *testing.T) {
		db := openTestDB(t)
		repo := NewJobRepository(db)
		job, milestones := newMilestoneJob()

		require.NoError(t, repo.CreateWithSchedule(ctx, job, milestones))

		var count int64
		require.NoError(t, db.Model(&models.Milestone{}).
			Where("job_id = ?", job.ID).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("failed schedule write leaves no job behind", func(t *testing.T) {
		db := openTestDB(t)
		repo := NewJobRepository(db)
		job, milestones := newMilestoneJob()

		require.NoError(t, db.Exec(`DROP TABLE milestones`).Error)
		assert.Error(t, repo.CreateWithSchedule(ctx, job, milestones))

		var count int64
		require.NoError(t, db.Model(&models.Job{}).
			Where("id = ?", job.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}
