package service

import (
	"context"

	"ice-breakun/backend/internal/events"
	"ice-breakun/backend/internal/models"
	"ice-breakun/backend/internal/repository"
	apperrors "ice-breakun/backend/pkg/errors"
)

// MessageService handles message-related operations
type MessageService struct {
	repo   repository.MessageRepository
	events events.Publisher
}

// NewMessageService creates a new message service. A nil publisher drops events.
func NewMessageService(repo repository.MessageRepository, publisher events.Publisher) *MessageService {
	if publisher == nil {
		publisher = events.Discard
	}
	return &MessageService{repo: repo, events: publisher}
}

// ListMessages returns every message, newest first
func (s *MessageService) ListMessages(ctx context.Context) ([]models.Message, error) {
	return s.repo.List(ctx)
}

// ListMessagesByUser returns the user's messages, newest first.
// An unknown user simply has no messages.
func (s *MessageService) ListMessagesByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetMessage returns the message or a NotFound error
func (s *MessageService) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	message, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, apperrors.E(apperrors.KindNotFound, "message.get", nil)
	}
	return message, nil
}

// CreateMessage posts a message for an existing user
func (s *MessageService) CreateMessage(ctx context.Context, content string, userID uint) (*models.Message, error) {
	message := &models.Message{Content: content, UserID: userID}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.New(events.MessageCreated, message.ID, message.UserID, message))
	return message, nil
}

// UpdateMessage replaces the content of a message
func (s *MessageService) UpdateMessage(ctx context.Context, id uint, content string) (*models.Message, error) {
	message, err := s.repo.Update(ctx, id, content)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.New(events.MessageUpdated, message.ID, message.UserID, message))
	return message, nil
}

// DeleteMessage removes a message
func (s *MessageService) DeleteMessage(ctx context.Context, id uint) error {
	message, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.events.Publish(ctx, events.New(events.MessageDeleted, message.ID, message.UserID, nil))
	return nil
}
