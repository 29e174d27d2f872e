// Package seed loads demo users and their messages.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"ice-breakun/backend/internal/models"
	"ice-breakun/backend/internal/service"
	apperrors "ice-breakun/backend/pkg/errors"
	"ice-breakun/backend/pkg/logger"
)

// User is one fixture entry
type User struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Messages []string `json:"messages"`
}

// Result counts what a run created
type Result struct {
	UsersCreated    int
	UsersSkipped    int
	MessagesCreated int
}

// Default is the fixture used when no file is given
var Default = []User{
	{Name: "Alice", Email: "alice@example.com", Messages: []string{"Hi everyone!", "Who is up for coffee?"}},
	{Name: "Bob", Email: "bob@example.com", Messages: []string{"Hello Alice"}},
	{Name: "Carol", Email: "carol@example.com"},
}

// Decode reads a JSON array of fixture users
func Decode(r io.Reader) ([]User, error) {
	var users []User
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	return users, nil
}

// Seeder creates fixture data through the services so events fire as usual
type Seeder struct {
	users    *service.UserService
	messages *service.MessageService
	log      *logger.Logger
}

func New(users *service.UserService, messages *service.MessageService, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Seeder{users: users, messages: messages, log: log.WithComponent("seed")}
}

// Run creates every fixture user whose email is not taken yet, followed by its
// messages. Users that already exist are left alone, so repeated runs are no-ops.
func (s *Seeder) Run(ctx context.Context, fixture []User) (Result, error) {
	var res Result

	for _, u := range fixture {
		if u.Name == "" || u.Email == "" {
			return res, apperrors.E(apperrors.KindValidation, "seed.user", fmt.Errorf("fixture user needs name and email: %+v", u))
		}

		created, err := s.users.CreateUser(ctx, models.CreateUserRequest{Name: u.Name, Email: u.Email})
		if apperrors.IsKind(err, apperrors.KindUniqueViolation) {
			res.UsersSkipped++
			s.log.Debug("User already present", "email", u.Email)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		res.UsersCreated++

		for _, content := range u.Messages {
			if _, err := s.messages.CreateMessage(ctx, content, created.ID); err != nil {
				return res, fmt.Errorf("seed message for %s: %w", u.Email, err)
			}
			res.MessagesCreated++
		}
	}

	s.log.Info("Seed finished", "users_created", res.UsersCreated, "users_skipped", res.UsersSkipped, "messages_created", res.MessagesCreated)
	return res, nil
}
