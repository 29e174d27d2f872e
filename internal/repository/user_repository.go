package repository

import (
	"context"
	"errors"

	"ice-breakun/backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository is the data access contract for users
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	// GetByID returns nil without an error when no user has the id
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, id uint, changes models.UserChanges) (*models.User, error)
	// Delete removes the user and every message it owns. The returned user
	// carries the removed messages.
	Delete(ctx context.Context, id uint) (*models.User, error)
}

// GormUserRepository implements UserRepository on top of an injected GORM handle
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, translate("user.list", err)
	}
	return users, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate("user.create", r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("user.get", err)
	}
	return &user, nil
}

func (r *GormUserRepository) Update(ctx context.Context, id uint, changes models.UserChanges) (*models.User, error) {
	const op = "user.update"

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		fields := map[string]any{}
		if changes.Name != nil {
			fields["name"] = *changes.Name
		}
		if changes.Email != nil {
			fields["email"] = *changes.Email
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&user).Updates(fields).Error
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return &user, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uint) (*models.User, error) {
	const op = "user.delete"

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Messages").First(&user, id).Error; err != nil {
			return err
		}
		// The foreign key cascades too; deleting the association explicitly
		// keeps the behaviour on engines where enforcement is switched off.
		res := tx.Select("Messages").Delete(&user)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return &user, nil
}
