// Package auth implements credential verification and session handling for
// the web server. Explicit logins and the remember-me cookie bootstrap both
// resolve users through the same Service so the matching semantics never
// diverge.
package auth

import (
	"context"
	"errors"

	"github.com/TheZimbabwe/producto-transversal/database"
)

// ErrInvalidCredentials is returned for any failed credential check. It is
// deliberately generic: callers must not reveal which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates users against the database.
type Service struct {
	db *database.Client
}

func NewService(db *database.Client) *Service {
	return &Service{db: db}
}

// AuthenticateByCredentials verifies a username/password pair. An unknown
// username and a wrong password are indistinguishable to the caller.
func (s *Service) AuthenticateByCredentials(ctx context.Context, username, password string) (*database.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// AuthenticateByToken verifies a remember-me credential pair: the user ID and
// the opaque token must both match exactly.
func (s *Service) AuthenticateByToken(ctx context.Context, userID uint, token string) (*database.User, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.db.GetUserByIDAndToken(ctx, userID, token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueRememberToken generates a fresh token and persists it on the user,
// replacing any previous one.
func (s *Service) IssueRememberToken(ctx context.Context, userID uint) (string, error) {
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.db.SetRememberToken(ctx, userID, &token); err != nil {
		return "", err
	}
	return token, nil
}
