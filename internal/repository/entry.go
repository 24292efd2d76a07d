package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chatdiary/chatdiary-go/internal/model"
)

var ErrEntryNotFound = errors.New("diary entry not found")

// EntryRepository handles diary entry and emotion score persistence.
// An entry and its emotion scores are only ever written together, inside
// one transaction; neither row exists without the other.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// CreateWithEmotions inserts a diary entry and its emotion scores as a single
// transaction and returns the new entry ID. If either insert fails, both are
// rolled back and no partial state is visible to subsequent reads.
func (r *EntryRepository) CreateWithEmotions(ctx context.Context, userID int64, entryDate, chatLog, summary string, scores model.EmotionScores) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO entries (user_id, entry_date, chat_log, summary) VALUES (?, ?, ?, ?)`,
		userID, entryDate, chatLog, summary,
	)
	if err != nil {
		return 0, err
	}

	entryID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO emotions (entry_id, joy, anger, sadness, anxiety, relief) VALUES (?, ?, ?, ?, ?, ?)`,
		entryID, scores.Joy, scores.Anger, scores.Sadness, scores.Anxiety, scores.Relief,
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return entryID, nil
}

// ListByUser retrieves the entry list for a user, newest first.
func (r *EntryRepository) ListByUser(ctx context.Context, userID int64) ([]model.EntrySummary, error) {
	query := `SELECT id, entry_date FROM entries WHERE user_id = ? ORDER BY entry_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.EntrySummary
	for rows.Next() {
		var e model.EntrySummary
		if err := rows.Scan(&e.ID, &e.EntryDate); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetDetails retrieves a full entry joined with its emotion scores. An entry
// whose emotion row is missing reads as not found; the transactional create
// means that state should never occur.
func (r *EntryRepository) GetDetails(ctx context.Context, entryID int64) (*model.EntryDetails, error) {
	query := `SELECT e.id, e.user_id, e.entry_date, e.chat_log, e.summary,
			em.joy, em.anger, em.sadness, em.anxiety, em.relief
		FROM entries e
		JOIN emotions em ON em.entry_id = e.id
		WHERE e.id = ?`

	d := &model.EntryDetails{}
	var summary sql.NullString
	err := r.db.QueryRowContext(ctx, query, entryID).Scan(
		&d.ID, &d.UserID, &d.EntryDate, &d.ChatLog, &summary,
		&d.Emotions.Joy, &d.Emotions.Anger, &d.Emotions.Sadness, &d.Emotions.Anxiety, &d.Emotions.Relief,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	d.Summary = summary.String

	return d, nil
}

// EmotionSeries retrieves all emotion scores for a user ordered by entry date
// ascending, ready for time-series plotting.
func (r *EntryRepository) EmotionSeries(ctx context.Context, userID int64) ([]model.EmotionPoint, error) {
	query := `SELECT e.entry_date, em.joy, em.anger, em.sadness, em.anxiety, em.relief
		FROM emotions em
		JOIN entries e ON em.entry_id = e.id
		WHERE e.user_id = ?
		ORDER BY e.entry_date ASC, e.id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []model.EmotionPoint
	for rows.Next() {
		var p model.EmotionPoint
		if err := rows.Scan(&p.EntryDate, &p.Joy, &p.Anger, &p.Sadness, &p.Anxiety, &p.Relief); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}
