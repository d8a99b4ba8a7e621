package application

import (
	"context"

	"betpool/domain/entities"
	"betpool/domain/interfaces"
	"betpool/domain/validation"

	log "github.com/sirupsen/logrus"
)

// LoginPayload is returned by a successful login
type LoginPayload struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

// CreateUser registers an account and opens its wallet
func (a *App) CreateUser(ctx context.Context, params interfaces.CreateUserParams) Result[*entities.User] {
	return execute(ctx, a, "create_user", log.Fields{"phone": params.Phone},
		func(s *serviceSet) (*entities.User, string, error) {
			user, err := s.users.CreateUser(ctx, params)
			return user, "User created successfully.", err
		})
}

// Login checks credentials and issues a token
func (a *App) Login(ctx context.Context, phone, password string) Result[*LoginPayload] {
	return execute(ctx, a, "login", log.Fields{"phone": phone},
		func(s *serviceSet) (*LoginPayload, string, error) {
			user, token, err := s.users.Login(ctx, phone, password)
			if err != nil {
				return nil, "", err
			}
			return &LoginPayload{User: user, Token: token}, "Login successful.", nil
		})
}

// SoftDeleteUser deactivates the account registered under phone. Users may
// delete their own account; staff may delete any.
func (a *App) SoftDeleteUser(ctx context.Context, actorID int64, phone string) Result[*entities.User] {
	return execute(ctx, a, "soft_delete_user", log.Fields{"actor_id": actorID, "phone": phone},
		func(s *serviceSet) (*entities.User, string, error) {
			actor, err := s.users.GetActiveUser(ctx, actorID)
			if err != nil {
				return nil, "", err
			}
			if actor.Phone != validation.NormalizePhone(phone) && !actor.IsStaff {
				return nil, "", entities.ErrNotAuthorized.WithMessage("You can only delete your own account.")
			}
			user, err := s.users.SoftDeleteUser(ctx, phone)
			return user, "User deleted successfully.", err
		})
}

// VerifyToken returns the id of the active user a token was issued to
func (a *App) VerifyToken(ctx context.Context, token string) Result[int64] {
	userID, err := a.tokens.Verify(token)
	if err != nil {
		return fail[int64](err, log.Fields{"operation": "verify_token"})
	}

	return execute(ctx, a, "verify_token", log.Fields{"user_id": userID},
		func(s *serviceSet) (int64, string, error) {
			if _, err := s.users.GetActiveUser(ctx, userID); err != nil {
				return 0, "", entities.ErrInvalidToken.WithMessage("The account behind this token is no longer active.")
			}
			return userID, "", nil
		})
}
