package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Save creates or updates a session header.
// Turns are only written when the session is new.
func (s *sessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, session.ID, session.Title, toUnix(session.CreatedAt), toUnix(session.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	if inserted == 0 {
		_, err = tx.ExecContext(ctx, "UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?",
			session.Title, toUnix(session.UpdatedAt), session.ID)
		if err != nil {
			return fmt.Errorf("updating session: %w", err)
		}
	} else {
		for i, turn := range session.Turns {
			if err := insertTurn(ctx, tx, session.ID, i, turn, session.UpdatedAt); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Get retrieves a session with all its turns.
func (s *sessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT question, answer FROM turns WHERE session_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var turn domain.ChatTurn
		if err := rows.Scan(&turn.Question, &turn.Answer); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		session.Turns = append(session.Turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	return session, nil
}

// List returns all sessions without turns, most recently updated first.
func (s *sessionStore) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at FROM sessions ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// AppendTurn adds a turn to the end of a session and bumps UpdatedAt.
func (s *sessionStore) AppendTurn(ctx context.Context, id string, turn domain.ChatTurn) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	res, err := tx.ExecContext(ctx, "UPDATE sessions SET updated_at = ? WHERE id = ?", toUnix(now), id)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("updating session: %w", err)
	} else if n == 0 {
		return domain.ErrNotFound
	}

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1 FROM turns WHERE session_id = ?
	`, id).Scan(&next)
	if err != nil {
		return fmt.Errorf("finding turn position: %w", err)
	}

	if err := insertTurn(ctx, tx, id, next, turn, now); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a session and, by cascade, its turns.
func (s *sessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func insertTurn(ctx context.Context, tx *sql.Tx, sessionID string, position int, turn domain.ChatTurn, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO turns (session_id, position, question, answer, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, position, turn.Question, turn.Answer, toUnix(at))
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var (
		session              domain.Session
		createdAt, updatedAt int64
	)
	err := row.Scan(&session.ID, &session.Title, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.CreatedAt = fromUnix(createdAt)
	session.UpdatedAt = fromUnix(updatedAt)
	return &session, nil
}

// Timestamps are stored as Unix nanoseconds so they order numerically.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
