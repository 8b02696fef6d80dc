package member

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Password change failures. Each message is rendered to the user verbatim.
var (
	ErrPasswordFieldsMissing = errors.New("Please fill in all password fields")
	ErrPasswordTooShort      = errors.New("New password must be at least 8 characters")
	ErrPasswordMismatch      = errors.New("Passwords do not match")
	ErrOldPasswordIncorrect  = errors.New("Old password is incorrect")
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 8

// ChangePassword replaces the member's stored credential after validating the
// request. Checks run in a fixed order so the reported error is deterministic
// when several rules are violated at once:
//
//  1. all three fields present
//  2. new password long enough
//  3. new password matches confirmation
//  4. old password matches the stored credential
//
// A successful change does not invalidate the current session.
func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword, confirmPassword string) error {
	if oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrPasswordFieldsMissing
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "get member")
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(oldPassword)) != nil {
		return ErrOldPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.members.UpdatePassword(ctx, id, string(hash)); err != nil {
		return errors.Wrap(err, "update password")
	}
	return nil
}
