package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/repository"
)

// MeetingRepository implements meeting.Repository for SQLite
type MeetingRepository struct {
	db *DB
}

// NewMeetingRepository creates a new MeetingRepository
func NewMeetingRepository(db *DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Save inserts an ended meeting
func (r *MeetingRepository) Save(ctx context.Context, m *meeting.EndedMeeting) error {
	query := `
		INSERT INTO ended_meetings (guid, title, custom_description, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.GUID,
		m.Title,
		m.CustomDescription,
		m.StartDate.UTC(),
		m.EndDate.UTC(),
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to save meeting: %w", err)
	}

	return nil
}

// Get retrieves an ended meeting by guid
func (r *MeetingRepository) Get(ctx context.Context, guid uuid.UUID) (*meeting.EndedMeeting, error) {
	query := `
		SELECT guid, title, custom_description, start_date, end_date
		FROM ended_meetings
		WHERE guid = ?
	`

	var m meeting.EndedMeeting
	err := r.db.QueryRowContext(ctx, query, guid).Scan(
		&m.GUID,
		&m.Title,
		&m.CustomDescription,
		&m.StartDate,
		&m.EndDate,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return &m, nil
}

// List returns ended meetings matching the given filters, most recently ended first
func (r *MeetingRepository) List(ctx context.Context, opts meeting.ListOptions) ([]meeting.EndedMeeting, error) {
	query := `
		SELECT guid, title, custom_description, start_date, end_date
		FROM ended_meetings
	`

	args := []any{}
	conditions := []string{}

	if opts.Since != nil {
		conditions = append(conditions, "end_date >= ?")
		args = append(args, opts.Since.UTC())
	}
	if opts.Until != nil {
		conditions = append(conditions, "start_date < ?")
		args = append(args, opts.Until.UTC())
	}

	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}

	query += " ORDER BY end_date DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []meeting.EndedMeeting
	for rows.Next() {
		var m meeting.EndedMeeting
		if err := rows.Scan(
			&m.GUID,
			&m.Title,
			&m.CustomDescription,
			&m.StartDate,
			&m.EndDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meeting rows: %w", err)
	}

	return meetings, nil
}
