// Package progress persists what a learner earns: points on their profile
// and the set of content they have completed.
package progress

import (
	"context"

	"github.com/abhisek/quizcraft/internal/logger"
	"github.com/abhisek/quizcraft/internal/store"
)

// ScoreCommitter adds finished session scores to learner profiles.
type ScoreCommitter struct {
	profiles store.ProfileRepo
	log      *logger.Logger
}

func NewScoreCommitter(profiles store.ProfileRepo, log *logger.Logger) *ScoreCommitter {
	if log == nil {
		log = logger.Nop()
	}
	return &ScoreCommitter{profiles: profiles, log: log.With("component", "score_committer")}
}

// Commit issues one additive increment. Non-positive scores are skipped.
// There is no retry: a failed write is logged and the points are lost.
func (c *ScoreCommitter) Commit(ctx context.Context, learnerID string, points int) {
	if points <= 0 {
		return
	}
	if err := c.profiles.IncrementPoints(ctx, learnerID, points); err != nil {
		c.log.Warn("failed to commit score", "learner_id", learnerID, "points", points, "error", err)
		return
	}
	c.log.Info("score committed", "learner_id", learnerID, "points", points)
}
