package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juva99/yoop-sub001/internal/domain"
)

// FieldRepo is the minimal field catalog plus the manager capability
// query the scheduling service injects as its Authorizer.
type FieldRepo struct{ db *gorm.DB }

func NewFieldRepo(db *gorm.DB) *FieldRepo {
	return &FieldRepo{db: db}
}

func (r *FieldRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Field{})
}

func (r *FieldRepo) Create(ctx context.Context, f *domain.Field) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FieldRepo) List(ctx context.Context) ([]domain.Field, error) {
	var out []domain.Field
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *FieldRepo) ByID(ctx context.Context, id string) (*domain.Field, error) {
	var f domain.Field
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// CanManageField reports whether userID manages the field. It satisfies
// service.Authorizer.
func (r *FieldRepo) CanManageField(ctx context.Context, userID, fieldID string) (bool, error) {
	f, err := r.ByID(ctx, fieldID)
	if err != nil {
		return false, err
	}
	return f.ManagerID == userID, nil
}
