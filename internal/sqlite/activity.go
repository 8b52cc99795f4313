package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/worklog/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	query := `
		INSERT INTO activity_log (meeting_id, activity_type, summary, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.MeetingID,
		entry.ActivityType,
		entry.Summary,
		entry.Details,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	query := `
		SELECT id, meeting_id, activity_type, summary, details, created_at
		FROM activity_log
	`

	args := []any{}
	conditions := []string{}

	if opts.MeetingID != nil {
		conditions = append(conditions, "meeting_id = ?")
		args = append(args, *opts.MeetingID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, *opts.ActivityType)
	}
	if opts.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, opts.Since.UTC())
	}

	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}

	query += " ORDER BY created_at DESC, id DESC"

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
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		var entry activity.ActivityEntry
		var meetingID sql.NullString
		var details sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&meetingID,
			&entry.ActivityType,
			&entry.Summary,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		if meetingID.Valid {
			entry.MeetingID = &meetingID.String
		}
		entry.Details = details.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
