package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domerrors "github.com/ozcamlab/museum-explorer-go/internal/errors"
)

// Message is one turn of a conversation. Tool fields are populated for the
// assistant's tool-call turns and the matching tool results.
type Message struct {
	Role       string
	Content    string
	ToolCallID string
	ToolName   string
	ToolArgs   string
}

// AppendMessage adds a message to a session, creating the session on first
// write.
func (db *DB) AppendMessage(ctx context.Context, sessionID string, msg Message) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()

	upsert := `
		INSERT INTO sessions (id, created_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, sessionID, now, now); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	insert := `
		INSERT INTO messages (session_id, role, content, tool_call_id, tool_name, tool_args, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert, sessionID, msg.Role, msg.Content,
		msg.ToolCallID, msg.ToolName, msg.ToolArgs, now); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

// History returns a session's messages in insertion order. An unknown
// session yields an empty history, not an error.
func (db *DB) History(ctx context.Context, sessionID string) ([]Message, error) {
	query := `
		SELECT role, content, tool_call_id, tool_name, tool_args
		FROM messages
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []Message
	for rows.Next() {
		var msg Message
		var callID, toolName, toolArgs sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &callID, &toolName, &toolArgs); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.ToolCallID = callID.String
		msg.ToolName = toolName.String
		msg.ToolArgs = toolArgs.String
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return history, nil
}

// Clear deletes a session and its messages. Returns
// errors.ErrSessionNotFound for an unknown session.
func (db *DB) Clear(ctx context.Context, sessionID string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read clear result: %w", err)
	}
	if affected == 0 {
		return domerrors.ErrSessionNotFound
	}
	return nil
}

// Trim drops the oldest messages of a session so at most keep remain.
// Bounds conversation context growth between requests.
func (db *DB) Trim(ctx context.Context, sessionID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	query := `
		DELETE FROM messages
		WHERE session_id = ?
		AND id NOT IN (
			SELECT id FROM messages
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		)
	`
	if _, err := db.conn.ExecContext(ctx, query, sessionID, sessionID, keep); err != nil {
		return fmt.Errorf("failed to trim session: %w", err)
	}
	return nil
}
