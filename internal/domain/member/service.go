package member

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

var phonePattern = regexp.MustCompile(`^\d{8}$`)

// Service encapsulates member account business logic.
type Service struct {
	members Repository
}

// NewService creates a member Service backed by the given repository.
func NewService(members Repository) *Service {
	return &Service{members: members}
}

// Register creates a new, not-yet-activated member account.
func (s *Service) Register(ctx context.Context, email, password string, profile ProfileUpdate) (*Member, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Message: "Please enter a valid email address"}
	}
	if len(password) < 8 {
		return nil, &ValidationError{Message: "Password must be at least 8 characters"}
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	m := &Member{
		Email:            email,
		PasswordHash:     string(hash),
		Name:             profile.Name,
		Phone:            profile.Phone,
		Country:          profile.Country,
		Address:          profile.Address,
		SecurityQuestion: profile.SecurityQuestion,
		SecurityAnswer:   profile.SecurityAnswer,
		Age:              profile.Age,
		Income:           profile.Income,
		Consent:          profile.Consent,
	}
	if err := s.members.Create(ctx, m); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, &ValidationError{Message: "Email already registered"}
		}
		return nil, errors.Wrap(err, "create member")
	}
	return m, nil
}

// Activate marks the account for the given email as activated.
func (s *Service) Activate(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := s.members.Activate(ctx, email); err != nil {
		return errors.Wrap(err, "activate member")
	}
	return nil
}

// Authenticate verifies the email/password pair against the stored credential.
// Any failure, including a not-yet-activated account, yields ErrLoginFailed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Member, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, errors.Wrap(err, "get member")
	}
	if !m.Activated {
		return nil, ErrLoginFailed
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return nil, ErrLoginFailed
	}
	return m, nil
}

// Profile returns the member record for the given id.
func (s *Service) Profile(ctx context.Context, id int64) (*Member, error) {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get member")
	}
	return m, nil
}

// UpdateProfile replaces the member's editable profile fields. The update is
// idempotent: submitting the same fields twice leaves the row unchanged.
func (s *Service) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error {
	if err := validateProfile(upd); err != nil {
		return err
	}
	if err := s.members.UpdateProfile(ctx, id, upd); err != nil {
		return errors.Wrap(err, "update profile")
	}
	return nil
}

func validateProfile(upd ProfileUpdate) error {
	if strings.TrimSpace(upd.Name) == "" {
		return &ValidationError{Message: "Name cannot be blank"}
	}
	if upd.Phone != "" && !phonePattern.MatchString(upd.Phone) {
		return &ValidationError{Message: "Phone must be 8 digits"}
	}
	if upd.Age < 0 || upd.Age > 120 {
		return &ValidationError{Message: "Age must be between 0 and 120"}
	}
	if upd.Income.IsNegative() {
		return &ValidationError{Message: "Income cannot be negative"}
	}
	return nil
}
