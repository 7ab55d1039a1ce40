package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByPidx(ctx context.Context, pidx string) (*models.Payment, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error)
	// MarkEscrowed flips Initiated -> Escrowed. Zero rows means the
	// payment was already settled; verification is idempotent on top of
	// this.
	MarkEscrowed(ctx context.Context, pidx string) (int64, error)
	// Refund flips Escrowed -> Refunded for a job's payment.
	Refund(ctx context.Context, jobID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) FindByPidx(ctx context.Context, pidx string) (*models.Payment, error) {
	var payment models.Payment
	err := withRetry(func() error {
		return r.db.WithContext(ctx).First(&payment, "pidx = ?", pidx).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *paymentRepository) FindByJob(ctx context.Context, jobID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("job_id = ?", jobID).
			Order("created_at DESC").
			First(&payment).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (r *paymentRepository) MarkEscrowed(ctx context.Context, pidx string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("pidx = ? AND status = ?", pidx, models.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status":      models.PaymentStatusEscrowed,
			"escrowed_at": time.Now(),
		})
	return result.RowsAffected, translate(result.Error)
}

func (r *paymentRepository) Refund(ctx context.Context, jobID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("job_id = ? AND status = ?", jobID, models.PaymentStatusEscrowed).
		Update("status", models.PaymentStatusRefunded)
	return result.RowsAffected, translate(result.Error)
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("client_id = ?", userID).
			Order("created_at DESC").
			Find(&payments).Error
	})
	return payments, translate(err)
}
