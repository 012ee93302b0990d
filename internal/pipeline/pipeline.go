// Package pipeline builds assessment sessions: it extracts text from a
// content source, synthesizes a quiz from it and hands back a session
// that is ready to play.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizcraft/internal/extract"
	"github.com/abhisek/quizcraft/internal/logger"
	"github.com/abhisek/quizcraft/internal/quizgen"
	"github.com/abhisek/quizcraft/internal/sandbox"
	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/store"
)

// BuildError reports that no session could be created. Err is the
// underlying *extract.ExtractionError, *quizgen.SynthesisError or
// content lookup failure.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("could not build a challenge (%s): %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Options configures a Service. Extractor, Synthesizer and Runner are
// required; the rest may be nil.
type Options struct {
	Extractor   extract.Extractor
	Synthesizer quizgen.Synthesizer
	Runner      sandbox.Runner
	Committer   session.Committer
	Ledger      session.Ledger
	Contents    store.ContentRepo
	Events      store.EventRepo
	Scheduler   session.Scheduler
	Session     session.Config
	Log         *logger.Logger
}

// Service creates sessions.
type Service struct {
	opts  Options
	log   *logger.Logger
	newID func() string
}

func New(opts Options) (*Service, error) {
	if opts.Extractor == nil || opts.Synthesizer == nil || opts.Runner == nil {
		return nil, errors.New("pipeline: extractor, synthesizer and runner are required")
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Service{
		opts:  opts,
		log:   opts.Log.With("component", "pipeline"),
		newID: uuid.NewString,
	}, nil
}

// CreateSession extracts src, synthesizes a quiz and returns an active
// session. contentID may be empty; when set, finishing the session marks
// it completed. On error no session exists.
func (s *Service) CreateSession(ctx context.Context, learnerID string, src extract.Source, contentID string) (*session.Session, error) {
	start := time.Now()

	text, err := s.opts.Extractor.Extract(ctx, src)
	if err != nil {
		s.log.Error("extraction failed", "learner_id", learnerID, "content_id", contentID, "error", err)
		return nil, &BuildError{Stage: "extract", Err: err}
	}

	q, err := s.opts.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		s.log.Error("synthesis failed", "learner_id", learnerID, "content_id", contentID, "error", err)
		return nil, &BuildError{Stage: "synthesize", Err: err}
	}

	id := s.newID()
	sess := session.New(id, learnerID, contentID, s.opts.Session, session.Deps{
		Runner:    s.opts.Runner,
		Committer: s.opts.Committer,
		Ledger:    s.opts.Ledger,
		Scheduler: s.opts.Scheduler,
		Log:       s.opts.Log,
		Hooks: session.Hooks{
			OnFinish:  func(sum session.Summary) { s.record(store.SessionFinish, sum) },
			OnAbandon: func(sum session.Summary) { s.record(store.SessionAbandon, sum) },
		},
	})
	if err := sess.Start(q); err != nil {
		return nil, &BuildError{Stage: "start", Err: err}
	}
	s.record(store.SessionStart, sess.Summary())

	s.log.Info("session created", "session_id", id, "learner_id", learnerID, "content_id", contentID,
		"items", q.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return sess, nil
}

// CreateSessionForContent resolves contentID through the content store and
// then behaves like CreateSession.
func (s *Service) CreateSessionForContent(ctx context.Context, learnerID, contentID string) (*session.Session, error) {
	if s.opts.Contents == nil {
		return nil, &BuildError{Stage: "lookup", Err: errors.New("no content store configured")}
	}
	meta, err := s.opts.Contents.GetContentMetadata(ctx, contentID)
	if err != nil {
		return nil, &BuildError{Stage: "lookup", Err: err}
	}
	return s.CreateSession(ctx, learnerID, SourceFor(meta), contentID)
}

// SourceFor maps stored content metadata to an extraction source.
func SourceFor(meta *store.ContentMetadata) extract.Source {
	if meta.Kind == store.ContentKindDocument {
		return extract.Document(meta.Location)
	}
	return extract.Text(meta.Location)
}

// record appends a session lifecycle event. Failures are logged only.
func (s *Service) record(action string, sum session.Summary) {
	if s.opts.Events == nil {
		return
	}
	err := s.opts.Events.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:    sum.SessionID,
		LearnerID:    sum.LearnerID,
		ContentID:    sum.ContentID,
		Action:       action,
		Items:        sum.Items,
		Answered:     sum.Answered,
		Score:        sum.Score,
		DurationSecs: int(sum.Duration.Seconds()),
	})
	if err != nil {
		s.log.Warn("failed to record session event", "session_id", sum.SessionID, "action", action, "error", err)
	}
}
