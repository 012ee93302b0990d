package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO session_events
		(sequence, timestamp, session_id, learner_id, content_id, action,
		 items, answered, score, duration_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.SessionID, data.LearnerID, data.ContentID,
		data.Action, data.Items, data.Answered, data.Score, data.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	q, args := applyQueryOpts(`SELECT id, sequence, timestamp, session_id, learner_id,
		content_id, action, items, answered, score, duration_secs FROM session_events`,
		opts)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var records []SessionEventRecord
	for rows.Next() {
		var e SessionEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.LearnerID,
			&e.ContentID, &e.Action, &e.Items, &e.Answered, &e.Score, &e.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}
