package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/unetra-global/member-portal-sub000/internal/models"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.MembershipPayment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepo) Save(ctx context.Context, payment *models.MembershipPayment) error {
	return translate(r.db.WithContext(ctx).Save(payment).Error)
}

func (r *paymentRepo) FindByReference(ctx context.Context, reference string) (*models.MembershipPayment, error) {
	var payment models.MembershipPayment
	if err := r.db.WithContext(ctx).First(&payment, "payment_reference = ?", reference).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

type auditLogRepo struct {
	db *gorm.DB
}

func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
