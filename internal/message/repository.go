package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownReceiver surfaces the foreign key on receiver_id; senders
// always exist because their id comes out of a verified token.
var ErrUnknownReceiver = errors.New("receiver does not exist")

const fkViolation = "23503"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const joinedColumns = `
	m.id, m.sender_id, m.receiver_id, m.content, m.image_url, m.type, m.created_at,
	s.username, s.display_name, rcv.username, rcv.display_name`

const joinedFrom = `
	FROM messages m
	JOIN users s ON m.sender_id = s.id
	JOIN users rcv ON m.receiver_id = rcv.id`

// Insert writes the message and re-reads the joined row in the same
// transaction, so a successful response always reflects a committed
// write and a failed enrichment never leaves a half-visible one.
func (r *Repository) Insert(ctx context.Context, senderID, receiverID int, content, imageURL, msgType string) (*Message, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin send tx: %w", err)
	}
	defer tx.Rollback()

	var id int
	insert := `INSERT INTO messages (sender_id, receiver_id, content, image_url, type)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id`
	err = tx.QueryRowContext(ctx, insert,
		senderID, receiverID, nullable(content), nullable(imageURL), msgType,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return nil, ErrUnknownReceiver
		}
		return nil, fmt.Errorf("insert message: %w", err)
	}

	msg, err := scanMessage(tx.QueryRowContext(ctx, `SELECT`+joinedColumns+joinedFrom+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit send tx: %w", err)
	}
	return msg, nil
}

// Conversation returns every message between the two users in either
// direction, newest first. Callers rely on that order; there is no
// separate sort step anywhere downstream.
func (r *Repository) Conversation(ctx context.Context, userA, userB int) ([]*Message, error) {
	query := `SELECT` + joinedColumns + joinedFrom + `
	WHERE (m.sender_id = $1 AND m.receiver_id = $2)
	   OR (m.sender_id = $2 AND m.receiver_id = $1)
	ORDER BY m.created_at DESC, m.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	m := &Message{}
	var content, imageURL sql.NullString
	err := row.Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &content, &imageURL, &m.Type, &m.CreatedAt,
		&m.SenderUsername, &m.SenderDisplayName, &m.ReceiverUsername, &m.ReceiverDisplayName,
	)
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	m.Content = content.String
	m.ImageURL = imageURL.String
	return m, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
