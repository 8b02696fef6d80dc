package member

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock repository ---

type mockRepo struct {
	byID      map[int64]*Member
	byEmail   map[string]*Member
	created   *Member
	createErr error
	lastHash  string
	lastUpd   *ProfileUpdate
	activated string
}

func newMockRepo(members ...*Member) *mockRepo {
	r := &mockRepo{
		byID:    make(map[int64]*Member),
		byEmail: make(map[string]*Member),
	}
	for _, m := range members {
		r.byID[m.ID] = m
		r.byEmail[m.Email] = m
	}
	return r
}

func (r *mockRepo) Create(_ context.Context, m *Member) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byEmail[m.Email]; ok {
		return ErrEmailTaken
	}
	m.ID = int64(len(r.byID) + 1)
	r.created = m
	r.byID[m.ID] = m
	r.byEmail[m.Email] = m
	return nil
}

func (r *mockRepo) GetByEmail(_ context.Context, email string) (*Member, error) {
	m, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

func (r *mockRepo) GetByID(_ context.Context, id int64) (*Member, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

func (r *mockRepo) UpdateProfile(_ context.Context, _ int64, upd ProfileUpdate) error {
	r.lastUpd = &upd
	return nil
}

func (r *mockRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.lastHash = hash
	if m, ok := r.byID[id]; ok {
		m.PasswordHash = hash
	}
	return nil
}

func (r *mockRepo) Activate(_ context.Context, email string) error {
	r.activated = email
	if m, ok := r.byEmail[email]; ok {
		m.Activated = true
	}
	return nil
}

// --- Helpers ---

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeMember(t *testing.T, id int64, email, password string) *Member {
	t.Helper()
	return &Member{
		ID:           id,
		Email:        email,
		PasswordHash: hashOf(t, password),
		Name:         "John Doe",
		Activated:    true,
	}
}

// --- Authenticate ---

func TestAuthenticate_Success(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	m, err := svc.Authenticate(context.Background(), "John@Test.com", "NewPass@123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "john@test.com", "junwei1234")
	require.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, "Login fail", err.Error())
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Authenticate(context.Background(), "nobody@test.com", "whatever")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestAuthenticate_NotActivated(t *testing.T) {
	m := activeMember(t, 1, "john@test.com", "NewPass@123")
	m.Activated = false
	svc := NewService(newMockRepo(m))

	_, err := svc.Authenticate(context.Background(), "john@test.com", "NewPass@123")
	require.ErrorIs(t, err, ErrLoginFailed)
}

// --- ChangePassword ---

func TestChangePassword_Success(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), 1, "NewPass@123", "NewPass@456", "NewPass@456")
	require.NoError(t, err)
	require.NotEmpty(t, repo.lastHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("NewPass@456")))

	// The fresh credential must immediately authenticate.
	_, err = svc.Authenticate(context.Background(), "john@test.com", "NewPass@456")
	assert.NoError(t, err)
}

func TestChangePassword_BlankFields(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	for name, in := range map[string][3]string{
		"blank old":     {"", "newpass123", "newpass123"},
		"blank new":     {"NewPass@123", "", "newpass123"},
		"blank confirm": {"NewPass@123", "newpass123", ""},
	} {
		t.Run(name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), 1, in[0], in[1], in[2])
			require.ErrorIs(t, err, ErrPasswordFieldsMissing)
			assert.Equal(t, "Please fill in all password fields", err.Error())
		})
	}
}

func TestChangePassword_TooShort(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), 1, "NewPass@123", "123", "123")
	require.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestChangePassword_Mismatch(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), 1, "NewPass@123", "newpass1", "newpass2")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, "Passwords do not match", err.Error())
}

func TestChangePassword_MismatchWithWrongOldPassword(t *testing.T) {
	// Mismatch wins over a wrong old password regardless of old-password
	// correctness.
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), 1, "wrongpassword", "newpass1", "newpass2")
	require.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestChangePassword_TooShortBeforeMismatch(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), 1, "NewPass@123", "123", "456")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), 1, "wrongpassword", "newpass123", "newpass123")
	require.ErrorIs(t, err, ErrOldPasswordIncorrect)
	assert.Equal(t, "Old password is incorrect", err.Error())
	assert.Empty(t, repo.lastHash, "no credential update on failure")
}

// --- Register / Activate ---

func TestRegister_Success(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	m, err := svc.Register(context.Background(), "Jane@Test.com", "password123", ProfileUpdate{Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "jane@test.com", m.Email)
	assert.False(t, m.Activated)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("password123")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "jane@test.com", "password123"))
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), "jane@test.com", "password123", ProfileUpdate{Name: "Jane"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email already registered", verr.Message)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Register(context.Background(), "jane@test.com", "short", ProfileUpdate{Name: "Jane"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestActivate_EnablesLogin(t *testing.T) {
	m := activeMember(t, 1, "jane@test.com", "password123")
	m.Activated = false
	repo := newMockRepo(m)
	svc := NewService(repo)

	require.NoError(t, svc.Activate(context.Background(), "jane@test.com"))

	_, err := svc.Authenticate(context.Background(), "jane@test.com", "password123")
	assert.NoError(t, err)
}

// --- UpdateProfile ---

func TestUpdateProfile_Valid(t *testing.T) {
	repo := newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123"))
	svc := NewService(repo)

	upd := ProfileUpdate{
		Name:    "John Doe",
		Phone:   "67671234",
		Country: "Singapore",
		Address: "123 Singapore",
		Age:     20,
	}
	require.NoError(t, svc.UpdateProfile(context.Background(), 1, upd))
	require.NotNil(t, repo.lastUpd)
	assert.Equal(t, "John Doe", repo.lastUpd.Name)
}

func TestUpdateProfile_Invalid(t *testing.T) {
	svc := NewService(newMockRepo(activeMember(t, 1, "john@test.com", "NewPass@123")))

	tests := map[string]ProfileUpdate{
		"blank name": {Name: "  "},
		"bad phone":  {Name: "John", Phone: "12ab"},
		"bad age":    {Name: "John", Age: 200},
	}
	for name, upd := range tests {
		t.Run(name, func(t *testing.T) {
			err := svc.UpdateProfile(context.Background(), 1, upd)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Message)
		})
	}
}
