package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/podium/internal/debate"
)

// ErrNotFound is returned when an archived debate does not exist.
var ErrNotFound = errors.New("archived debate not found")

// DebateSummary is one row of the archive listing.
type DebateSummary struct {
	ID         string               `json:"debate_id"`
	Topic      string               `json:"topic"`
	ProStyle   string               `json:"pro_style"`
	ConStyle   string               `json:"con_style"`
	Status     debate.SessionStatus `json:"status"`
	Vote       *debate.Vote         `json:"vote,omitempty"`
	Entries    int                  `json:"entries"`
	CreatedAt  time.Time            `json:"created_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

// Debate is an archived debate with its full transcript.
type Debate struct {
	DebateSummary
	Scoring    string         `json:"argument_scores"`
	Failure    string         `json:"failure,omitempty"`
	Transcript []debate.Entry `json:"transcript"`
}

// Archive stores rec and its transcript in one transaction. Archiving the
// same id again replaces the earlier copy.
func (db *DB) Archive(ctx context.Context, rec debate.Record) error {
	var vote sql.NullString
	if rec.Vote != nil {
		vote = sql.NullString{String: rec.Vote.String(), Valid: true}
	}

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := deleteDebateTx(ctx, tx, rec.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO debates (id, topic, pro_style, con_style, status, vote, argument_scores, failure, created_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.Topic, rec.ProStyle, rec.ConStyle, string(rec.Status), vote,
			rec.Scoring, rec.Failure, formatTime(rec.CreatedAt), nullableTime(rec.FinishedAt))
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transcript_entries (debate_id, seq, speaker, phase, content)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, e := range rec.Transcript {
			if _, err := stmt.ExecContext(ctx, rec.ID, i, e.Speaker.String(), e.Phase.String(), e.Content); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("archive debate %s: %w", rec.ID, err)
	}
	return nil
}

// GetDebate returns an archived debate with its transcript in order.
func (db *DB) GetDebate(id string) (*Debate, error) {
	row := db.QueryRow(`
		SELECT d.id, d.topic, d.pro_style, d.con_style, d.status, d.vote, d.argument_scores, d.failure,
			d.created_at, d.finished_at,
			(SELECT COUNT(*) FROM transcript_entries e WHERE e.debate_id = d.id)
		FROM debates d WHERE d.id = ?
	`, id)

	var d Debate
	if err := scanDebate(row, &d.DebateSummary, &d.Scoring, &d.Failure); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get debate: %w", err)
	}

	entries, err := db.transcript(id)
	if err != nil {
		return nil, err
	}
	d.Transcript = entries
	return &d, nil
}

func (db *DB) transcript(id string) ([]debate.Entry, error) {
	rows, err := db.Query(`
		SELECT speaker, phase, content FROM transcript_entries
		WHERE debate_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	defer rows.Close()

	entries := []debate.Entry{}
	for rows.Next() {
		var speaker, phase string
		var e debate.Entry
		if err := rows.Scan(&speaker, &phase, &e.Content); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		if err := e.Speaker.UnmarshalText([]byte(speaker)); err != nil {
			return nil, fmt.Errorf("transcript entry: %w", err)
		}
		if err := e.Phase.UnmarshalText([]byte(phase)); err != nil {
			return nil, fmt.Errorf("transcript entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListDebates returns the most recent debates first. A non-positive limit
// lists everything; a non-empty status filters.
func (db *DB) ListDebates(limit int, status debate.SessionStatus) ([]DebateSummary, error) {
	query := `
		SELECT d.id, d.topic, d.pro_style, d.con_style, d.status, d.vote, d.argument_scores, d.failure,
			d.created_at, d.finished_at,
			(SELECT COUNT(*) FROM transcript_entries e WHERE e.debate_id = d.id)
		FROM debates d`
	var args []any
	if status != "" {
		query += ` WHERE d.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY d.created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list debates: %w", err)
	}
	defer rows.Close()

	out := []DebateSummary{}
	for rows.Next() {
		var s DebateSummary
		var scoring, failure string
		if err := scanDebate(rows, &s, &scoring, &failure); err != nil {
			return nil, fmt.Errorf("scan debate: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteDebate removes a debate and its transcript.
func (db *DB) DeleteDebate(id string) error {
	ctx := context.Background()
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		return deleteDebateTx(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("delete debate: %w", err)
	}
	return nil
}

// deleteDebateTx removes entries explicitly; foreign_keys is a per-connection
// pragma and pooled connections may not have it set.
func deleteDebateTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_entries WHERE debate_id = ?`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM debates WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDebate(row scanner, s *DebateSummary, scoring, failure *string) error {
	var status, createdAt string
	var vote, finishedAt sql.NullString
	if err := row.Scan(&s.ID, &s.Topic, &s.ProStyle, &s.ConStyle, &status, &vote,
		scoring, failure, &createdAt, &finishedAt, &s.Entries); err != nil {
		return err
	}
	s.Status = debate.SessionStatus(status)
	created, err := parseTime(createdAt)
	if err != nil {
		return fmt.Errorf("debate %s: parse created_at: %w", s.ID, err)
	}
	s.CreatedAt = created
	s.FinishedAt = parseNullableTime(finishedAt)
	if vote.Valid {
		v, err := debate.ParseVote(vote.String)
		if err == nil {
			s.Vote = &v
		}
	}
	return nil
}
