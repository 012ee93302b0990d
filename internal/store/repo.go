package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single model call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored model call.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsage aggregates model calls under one key (purpose or model).
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Session lifecycle actions.
const (
	SessionStart   = "start"
	SessionFinish  = "finish"
	SessionAbandon = "abandon"
)

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID    string
	LearnerID    string
	ContentID    string
	Action       string
	Items        int
	Answered     int
	Score        int
	DurationSecs int
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	SessionEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendLLMRequest records a model call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns model calls, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single model call by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates model calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates model calls per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendSessionEvent records a session lifecycle transition.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)
}

// Content source kinds as stored.
const (
	ContentKindText     = "text"
	ContentKindDocument = "document"
)

// ContentMetadata describes where a piece of learning content lives.
type ContentMetadata struct {
	ID   string
	Kind string
	// Location is the document URL or path for documents, or the
	// text itself for raw text content.
	Location  string
	Title     string
	CreatedAt time.Time
}

// ContentRepo is the key-addressable content store.
type ContentRepo interface {
	PutContent(ctx context.Context, meta ContentMetadata) error

	// GetContentMetadata returns ErrNotFound for unknown ids.
	GetContentMetadata(ctx context.Context, id string) (*ContentMetadata, error)

	ListContent(ctx context.Context) ([]ContentMetadata, error)
}

// Profile is a learner's accumulated record.
type Profile struct {
	LearnerID string
	Points    int
	UpdatedAt time.Time
}

// ProfileRepo is the learner profile store.
type ProfileRepo interface {
	// IncrementPoints adds delta to the learner's points in a single
	// statement, creating the profile if needed.
	IncrementPoints(ctx context.Context, learnerID string, delta int) error

	// GetProfile returns ErrNotFound for unknown learners.
	GetProfile(ctx context.Context, learnerID string) (*Profile, error)

	ResetProfile(ctx context.Context, learnerID string) error
}

// SetRepo is a key-addressable store of string sets.
type SetRepo interface {
	// GetSet returns the members of key, or an empty slice.
	GetSet(ctx context.Context, key string) ([]string, error)

	// PutSet replaces the members of key.
	PutSet(ctx context.Context, key string, values []string) error

	// AddToSet adds members to key, keeping the existing ones.
	AddToSet(ctx context.Context, key string, values ...string) error
}
