package service

import (
	"context"

	"ice-breakun/backend/internal/events"
	"ice-breakun/backend/internal/models"
	"ice-breakun/backend/internal/repository"
	apperrors "ice-breakun/backend/pkg/errors"
)

// UserService handles user-related operations
type UserService struct {
	repo   repository.UserRepository
	events events.Publisher
}

// NewUserService creates a new user service. A nil publisher drops events.
func NewUserService(repo repository.UserRepository, publisher events.Publisher) *UserService {
	if publisher == nil {
		publisher = events.Discard
	}
	return &UserService{repo: repo, events: publisher}
}

// ListUsers returns every user in ascending id order
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// GetUser returns the user or a NotFound error
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.E(apperrors.KindNotFound, "user.get", nil)
	}
	return user, nil
}

// CreateUser creates a new user
func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	user := &models.User{Name: req.Name, Email: req.Email}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.New(events.UserCreated, user.ID, user.ID, user))
	return user, nil
}

// UpdateUser applies the supplied fields only
func (s *UserService) UpdateUser(ctx context.Context, id uint, changes models.UserChanges) (*models.User, error) {
	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.New(events.UserUpdated, user.ID, user.ID, user))
	return user, nil
}

// DeleteUser removes the user together with its messages. Each cascaded
// message gets its own message.deleted event ahead of user.deleted.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, m := range user.Messages {
		s.events.Publish(ctx, events.New(events.MessageDeleted, m.ID, user.ID, nil))
	}
	s.events.Publish(ctx, events.New(events.UserDeleted, user.ID, user.ID, nil))
	return nil
}
