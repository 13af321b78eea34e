package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stojkeex/testaii/internal/domain"
)

// ProfileRepo persists companion profiles. Group members are stored as a
// JSONB document since they are always read and written as a unit.
type ProfileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepo(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, kind, name, age, gender, nationality, traits, theme, is_new, members, created_at, updated_at`

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	members, err := json.Marshal(p.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO profiles (id, kind, name, age, gender, nationality, traits, theme, is_new, members)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		p.ID, p.Kind, p.Name, p.Age, p.Gender, p.Nationality, p.Traits, p.Theme, p.IsNew, members,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepo) List(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	members, err := json.Marshal(p.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET name = $2, age = $3, gender = $4, nationality = $5, traits = $6,
		    theme = $7, is_new = $8, members = $9, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.Nationality, p.Traits, p.Theme, p.IsNew, members,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// ClearNewFlag marks a profile as greeted. No-op if already cleared.
func (r *ProfileRepo) ClearNewFlag(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE profiles SET is_new = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clear new flag: %w", err)
	}
	return nil
}

func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var members []byte
	err := row.Scan(&p.ID, &p.Kind, &p.Name, &p.Age, &p.Gender, &p.Nationality,
		&p.Traits, &p.Theme, &p.IsNew, &members, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &p.Members); err != nil {
			return nil, fmt.Errorf("unmarshal members: %w", err)
		}
	}
	return &p, nil
}
