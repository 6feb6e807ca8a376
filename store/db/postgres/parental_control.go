package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/buddylabs/buddy/store"
)

func (d *DB) UpsertParentalControl(ctx context.Context, upsert *store.ParentalControl) (*store.ParentalControl, error) {
	blockedTopics, err := json.Marshal(upsert.BlockedTopics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blocked topics: %w", err)
	}

	stmt := `
		INSERT INTO parental_control (
			user_id, updated_ts, daily_limit_minutes, allowed_hour_start,
			allowed_hour_end, break_interval_minutes, content_filter_enabled, blocked_topics
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id)
		DO UPDATE SET
			updated_ts = EXCLUDED.updated_ts,
			daily_limit_minutes = EXCLUDED.daily_limit_minutes,
			allowed_hour_start = EXCLUDED.allowed_hour_start,
			allowed_hour_end = EXCLUDED.allowed_hour_end,
			break_interval_minutes = EXCLUDED.break_interval_minutes,
			content_filter_enabled = EXCLUDED.content_filter_enabled,
			blocked_topics = EXCLUDED.blocked_topics
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.UserID, upsert.UpdatedTs, upsert.DailyLimitMinutes, upsert.AllowedHourStart,
		upsert.AllowedHourEnd, upsert.BreakIntervalMinutes, upsert.ContentFilterEnabled, string(blockedTopics),
	); err != nil {
		return nil, fmt.Errorf("failed to upsert parental control: %w", err)
	}

	return upsert, nil
}

func (d *DB) GetParentalControl(ctx context.Context, find *store.FindParentalControl) (*store.ParentalControl, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user id is required")
	}

	query := `
		SELECT user_id, updated_ts, daily_limit_minutes, allowed_hour_start,
			allowed_hour_end, break_interval_minutes, content_filter_enabled, blocked_topics
		FROM parental_control
		WHERE user_id = $1
	`

	pc := &store.ParentalControl{}
	var blockedTopics string
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&pc.UserID,
		&pc.UpdatedTs,
		&pc.DailyLimitMinutes,
		&pc.AllowedHourStart,
		&pc.AllowedHourEnd,
		&pc.BreakIntervalMinutes,
		&pc.ContentFilterEnabled,
		&blockedTopics,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Not configured yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parental control: %w", err)
	}

	if err := json.Unmarshal([]byte(blockedTopics), &pc.BlockedTopics); err != nil {
		pc.BlockedTopics = nil
	}

	return pc, nil
}
