package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hausmart/storefront/internal/domain/member"
)

const (
	createMemberSQL = `INSERT INTO members
		(email, password_hash, name, phone, country, address,
		 security_question, security_answer, age, income, consent, activated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	memberByEmailSQL = `SELECT id, email, password_hash, name, phone, country, address,
		security_question, security_answer, age, income, consent, activated, created_at
		FROM members WHERE email = $1`

	memberByIDSQL = `SELECT id, email, password_hash, name, phone, country, address,
		security_question, security_answer, age, income, consent, activated, created_at
		FROM members WHERE id = $1`

	updateProfileSQL = `UPDATE members SET
		name = $2, phone = $3, country = $4, address = $5,
		security_question = $6, security_answer = $7,
		age = $8, income = $9, consent = $10
		WHERE id = $1`

	updatePasswordSQL = `UPDATE members SET password_hash = $2 WHERE id = $1`

	activateMemberSQL = `UPDATE members SET activated = TRUE WHERE email = $1`
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

var _ member.Repository = (*MemberRepository)(nil)

// MemberRepository implements member.Repository backed by PostgreSQL.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a MemberRepository that uses the given pool.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// Create inserts a new member and fills in the generated id and creation
// time. A duplicate email maps to member.ErrEmailTaken.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	err := r.pool.QueryRow(ctx, createMemberSQL,
		m.Email, m.PasswordHash, m.Name, m.Phone, m.Country, m.Address,
		m.SecurityQuestion, m.SecurityAnswer, m.Age, m.Income, m.Consent, m.Activated,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return member.ErrEmailTaken
		}
		return fmt.Errorf("creating member: %w", err)
	}
	return nil
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	return r.getMember(ctx, memberByEmailSQL, email)
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*member.Member, error) {
	return r.getMember(ctx, memberByIDSQL, id)
}

func (r *MemberRepository) getMember(ctx context.Context, query string, arg any) (*member.Member, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanMember)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrNotFound
		}
		return nil, fmt.Errorf("getting member: %w", err)
	}
	return &m, nil
}

// UpdateProfile replaces all editable profile fields of one member.
func (r *MemberRepository) UpdateProfile(ctx context.Context, id int64, upd member.ProfileUpdate) error {
	tag, err := r.pool.Exec(ctx, updateProfileSQL, id,
		upd.Name, upd.Phone, upd.Country, upd.Address,
		upd.SecurityQuestion, upd.SecurityAnswer,
		upd.Age, upd.Income, upd.Consent,
	)
	if err != nil {
		return fmt.Errorf("updating profile %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, updatePasswordSQL, id, passwordHash)
	if err != nil {
		return fmt.Errorf("updating password %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return member.ErrNotFound
	}
	return nil
}

// Activate flips the activation flag of the member with this email.
func (r *MemberRepository) Activate(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, activateMemberSQL, email)
	if err != nil {
		return fmt.Errorf("activating %q: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return member.ErrNotFound
	}
	return nil
}

func scanMember(row pgx.CollectableRow) (member.Member, error) {
	var m member.Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Phone,
		&m.Country, &m.Address, &m.SecurityQuestion, &m.SecurityAnswer,
		&m.Age, &m.Income, &m.Consent, &m.Activated, &m.CreatedAt,
	)
	return m, err
}
