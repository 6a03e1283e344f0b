package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
)

type ConversationsRepo struct {
	db *sql.DB
}

func NewConversationsRepo(db *sql.DB) *ConversationsRepo {
	return &ConversationsRepo{db: db}
}

// Create stores the conversation header and any messages it already holds.
func (r *ConversationsRepo) Create(ctx context.Context, conv core.Conversation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertConversation(ctx, tx, conv); err != nil {
		return err
	}
	for _, msg := range conv.Messages {
		if err := insertMessage(ctx, tx, conv.ID, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ConversationsRepo) Get(ctx context.Context, id string) (*core.Conversation, error) {
	conv := &core.Conversation{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT sender, text, sources, final, created_at FROM conversation_messages WHERE conversation_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg core.ConversationMessage
		var sender, sources string
		if err := rows.Scan(&sender, &msg.Text, &sources, &msg.Final, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Sender = core.Sender(sender)

		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &msg.RetrievedSources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("conversation", id).Int("messages", len(conv.Messages)).Msg("loaded conversation")
	return conv, nil
}

func (r *ConversationsRepo) AppendMessage(ctx context.Context, conversationID string, msg core.ConversationMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := touchConversation(ctx, tx, conversationID, msg.Timestamp); err != nil {
		return err
	}
	if err := insertMessage(ctx, tx, conversationID, msg); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendRound writes the header (for new conversations) and both messages
// in one transaction.
func (r *ConversationsRepo) AppendRound(ctx context.Context, conv core.Conversation, isNew bool, user, bot core.ConversationMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if bot.Timestamp.IsZero() {
		bot.Timestamp = time.Now()
	}

	if isNew {
		conv.Messages = nil
		conv.UpdatedAt = bot.Timestamp
		err = insertConversation(ctx, tx, conv)
	} else {
		err = touchConversation(ctx, tx, conv.ID, bot.Timestamp)
	}
	if err != nil {
		return err
	}

	for _, msg := range []core.ConversationMessage{user, bot} {
		if err := insertMessage(ctx, tx, conv.ID, msg); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit round: %w", err)
	}
	return nil
}

// List returns conversation headers, most recently updated first. Messages are not loaded.
func (r *ConversationsRepo) List(ctx context.Context, limit int) ([]core.Conversation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var out []core.Conversation
	for rows.Next() {
		var c core.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertConversation(ctx context.Context, tx *sql.Tx, conv core.Conversation) error {
	updated := conv.UpdatedAt
	if updated.IsZero() {
		updated = conv.CreatedAt
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.CreatedAt.UTC(), updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

func touchConversation(ctx context.Context, tx *sql.Tx, id string, ts time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, ts.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("conversation %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, conversationID string, msg core.ConversationMessage) error {
	sources := ""
	if len(msg.RetrievedSources) > 0 {
		data, err := json.Marshal(msg.RetrievedSources)
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		sources = string(data)
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO conversation_messages (conversation_id, sender, text, sources, final, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		conversationID, string(msg.Sender), msg.Text, sources, msg.Final, ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}
