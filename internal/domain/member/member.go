// Package member holds storefront accounts: registration, authentication,
// profile updates, and password management.
package member

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a member id or email does not exist.
	ErrNotFound = errors.New("member not found")

	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrLoginFailed is returned for any failed login attempt. The message
	// shown to the user is deliberately the same for a wrong email, a wrong
	// password, and a not-yet-activated account.
	ErrLoginFailed = errors.New("Login fail")
)

// Member is a registered storefront account.
type Member struct {
	ID               int64
	Email            string
	PasswordHash     string
	Name             string
	Phone            string
	Country          string
	Address          string
	SecurityQuestion int
	SecurityAnswer   string
	Age              int
	Income           decimal.Decimal
	Consent          bool
	Activated        bool
	CreatedAt        time.Time
}

// ProfileUpdate carries the editable profile fields. The profile form always
// submits every field, so the update replaces all of them; re-submitting the
// same form is a no-op.
type ProfileUpdate struct {
	Name             string
	Phone            string
	Country          string
	Address          string
	SecurityQuestion int
	SecurityAnswer   string
	Age              int
	Income           decimal.Decimal
	Consent          bool
}

// Repository defines persistence operations for members.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByID(ctx context.Context, id int64) (*Member, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Activate(ctx context.Context, email string) error
}

// ValidationError is a client-fixable input error. Message is the exact text
// rendered to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
