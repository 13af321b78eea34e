package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/domain"
)

// MessageRepo persists per-profile chat transcripts.
type MessageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepo(db *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores one message and prunes the transcript down to the stored
// cap, dropping the oldest rows first.
func (r *MessageRepo) Append(ctx context.Context, m *domain.StoredMessage) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (profile_id, role, content, sender_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		m.ProfileID, m.Role, m.Text, m.SenderName,
	)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	_, err := r.db.Exec(ctx, `
		DELETE FROM messages
		WHERE profile_id = $1 AND id NOT IN (
			SELECT id FROM messages WHERE profile_id = $1 ORDER BY id DESC LIMIT $2
		)`,
		m.ProfileID, config.MaxStoredMessages,
	)
	if err != nil {
		return fmt.Errorf("prune messages: %w", err)
	}
	return nil
}

// List returns a profile's transcript oldest-first.
func (r *MessageRepo) List(ctx context.Context, profileID uuid.UUID) ([]domain.StoredMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, profile_id, role, content, sender_name, created_at
		FROM messages WHERE profile_id = $1 ORDER BY id`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.StoredMessage
	for rows.Next() {
		var m domain.StoredMessage
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.Role, &m.Text, &m.SenderName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Count returns the number of stored messages for a profile.
func (r *MessageRepo) Count(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE profile_id = $1`, profileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// Clear drops a profile's entire transcript.
func (r *MessageRepo) Clear(ctx context.Context, profileID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages WHERE profile_id = $1`, profileID)
	if err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}
