package outbox

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx queues a message inside the caller's transaction.
func (r *Repository) InsertTx(tx *sql.Tx, routingKey string, payload []byte) error {
	query := `
		INSERT INTO outbox_messages (id, routing_key, payload, status, attempts)
		VALUES ($1, $2, $3, $4, 0)
	`
	_, err := tx.Exec(query, uuid.NewString(), routingKey, payload, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

// FetchPending returns the oldest pending messages, up to limit.
func (r *Repository) FetchPending(limit int) ([]Message, error) {
	query := `
		SELECT id, routing_key, payload, status, attempts, created_at
		FROM outbox_messages
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.db.Query(query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.RoutingKey, &m.Payload, &m.Status, &m.Attempts, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkSent records a successful publish.
func (r *Repository) MarkSent(id string) error {
	query := `UPDATE outbox_messages SET status = $1, sent_at = $2 WHERE id = $3`

	_, err := r.db.Exec(query, StatusSent, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message sent: %w", err)
	}

	return nil
}

// RecordAttempt bumps the attempt counter after a failed publish and
// moves the message to FAILED once maxAttempts is reached.
func (r *Repository) RecordAttempt(id string, maxAttempts int) error {
	query := `
		UPDATE outbox_messages
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $1 THEN $2 ELSE status END
		WHERE id = $3
	`

	_, err := r.db.Exec(query, maxAttempts, StatusFailed, id)
	if err != nil {
		return fmt.Errorf("failed to record outbox attempt: %w", err)
	}

	return nil
}
