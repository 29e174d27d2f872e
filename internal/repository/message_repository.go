package repository

import (
	"context"
	"errors"

	"ice-breakun/backend/internal/models"

	"gorm.io/gorm"
)

// MessageRepository is the data access contract for messages.
// Every returned message has its owning user loaded.
type MessageRepository interface {
	// List returns all messages, newest first
	List(ctx context.Context) ([]models.Message, error)
	// GetByID returns nil without an error when no message has the id
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, id uint, content string) (*models.Message, error)
	Delete(ctx context.Context, id uint) (*models.Message, error)
}

// GormMessageRepository implements MessageRepository on top of an injected GORM handle
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) newestFirst(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC")
}

func (r *GormMessageRepository) List(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}
	if err := r.newestFirst(ctx).Find(&messages).Error; err != nil {
		return nil, translate("message.list", err)
	}
	return messages, nil
}

func (r *GormMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("message.get", err)
	}
	return &message, nil
}

func (r *GormMessageRepository) ListByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.newestFirst(ctx).Where("user_id = ?", userID).Find(&messages).Error
	if err != nil {
		return nil, translate("message.list_by_user", err)
	}
	return messages, nil
}

// Create inserts the message; a user_id that references no user fails with
// a foreign key violation and leaves no row behind.
func (r *GormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	const op = "message.create"

	// Never let an attached User be upserted through the association
	message.User = nil
	if err := r.db.WithContext(ctx).Omit("User").Create(message).Error; err != nil {
		return translate(op, err)
	}
	return translate(op, r.db.WithContext(ctx).Preload("User").First(message, message.ID).Error)
}

func (r *GormMessageRepository) Update(ctx context.Context, id uint, content string) (*models.Message, error) {
	const op = "message.update"

	var message models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&message, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&message).Update("content", content).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(&message, id).Error
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return &message, nil
}

func (r *GormMessageRepository) Delete(ctx context.Context, id uint) (*models.Message, error) {
	const op = "message.delete"

	var message models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&message, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Message{}, id)
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
	return &message, nil
}
