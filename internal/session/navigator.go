package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
	"github.com/annolab/imagejudge/internal/storage"
)

type State string

const (
	// StateIdle: no task list loaded.
	StateIdle State = "idle"
	// StatePresenting: an item is shown, awaiting submission.
	StatePresenting State = "presenting"
	// StateFlushing: the buffer is being persisted; a failed flush stays
	// here so it can be retried without re-annotating.
	StateFlushing State = "flushing"
)

// SessionState is the mutable position of one session: the current index and
// the records buffered since the last flush. Owned by exactly one Navigator.
type SessionState struct {
	Index   int
	Pending []domain.AnnotationRecord
}

// Transition is the outcome of a navigator step. NeedsRender tells the
// rendering collaborator to re-present the (new) current item; the navigator
// itself never drives any refresh mechanism.
type Transition struct {
	State       State    `json:"state"`
	Index       int      `json:"index"`
	Defaulted   []string `json:"defaulted,omitempty"`
	NeedsRender bool     `json:"needs_render"`
}

// Submission carries one annotator action: the chosen answers, and for ad hoc
// items an optional prompt entered at presentation time.
type Submission struct {
	Prompt    string
	Responses *domain.AnswerSet
}

type Option func(*Navigator)

// WithStrict rejects submissions that leave any question at its default
// value instead of merely reporting them.
func WithStrict() Option {
	return func(n *Navigator) {
		n.strict = true
	}
}

// WithPathIdentity makes persisted records carry the full image path instead
// of the display name (filesystem sessions).
func WithPathIdentity() Option {
	return func(n *Navigator) {
		n.pathIdentity = true
	}
}

// Navigator is the per-session state machine:
//
//	Idle -> Presenting(0) -> ... -> Presenting(n-1) -> Flushing -> Idle
//
// Records are buffered in memory and become durable only when the final
// submission flushes the whole buffer, or not at all: Cancel is the only
// other exit and discards the buffer explicitly. A crash mid-session loses
// the unflushed buffer; that is the documented trade-off of buffering.
//
// A Navigator is not safe for concurrent use; every session owns its own.
type Navigator struct {
	schema       *domain.QuestionSchema
	store        storage.Store
	strict       bool
	pathIdentity bool

	tasks []domain.TaskItem
	state State
	sess  SessionState
}

func New(schema *domain.QuestionSchema, store storage.Store, opts ...Option) *Navigator {
	n := &Navigator{
		schema: schema,
		store:  store,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Navigator) State() State {
	return n.state
}

func (n *Navigator) Schema() *domain.QuestionSchema {
	return n.schema
}

// Pending reports how many records are buffered but not yet durable.
func (n *Navigator) Pending() int {
	return len(n.sess.Pending)
}

// Load starts a session over the given task list. The list is copied so the
// presentation sequence cannot change underneath a running session.
func (n *Navigator) Load(items []domain.TaskItem) error {
	if n.state != StateIdle {
		return fmt.Errorf("cannot load tasks in state %s", n.state)
	}
	if len(items) == 0 {
		return &apperr.EmptyTaskListError{}
	}
	n.tasks = slices.Clone(items)
	n.sess = SessionState{}
	n.state = StatePresenting
	return nil
}

// Current returns the item under presentation together with its position and
// the total count.
func (n *Navigator) Current() (domain.TaskItem, int, int, error) {
	if n.state != StatePresenting {
		return domain.TaskItem{}, 0, 0, fmt.Errorf("no item under presentation in state %s", n.state)
	}
	return n.tasks[n.sess.Index], n.sess.Index, len(n.tasks), nil
}

// Submit finalizes the current item. Answers are validated against the
// schema; questions without an explicit answer fall back to their domain's
// first value and are reported in Transition.Defaulted (rejected instead
// under strict mode). On the final item the whole buffer is flushed to the
// store; a flush failure leaves the buffer intact and the navigator in
// StateFlushing so Flush can retry.
func (n *Navigator) Submit(ctx context.Context, sub Submission) (Transition, error) {
	if n.state != StatePresenting {
		return n.transition(false), fmt.Errorf("cannot submit in state %s", n.state)
	}

	item := n.tasks[n.sess.Index]
	record, defaulted, err := n.buildRecord(item, sub)
	if err != nil {
		return n.transition(false), err
	}
	if n.strict && len(defaulted) > 0 {
		return n.transition(false), &apperr.IncompleteSubmissionError{Missing: defaulted}
	}

	n.sess.Pending = append(n.sess.Pending, record)

	if n.sess.Index+1 < len(n.tasks) {
		n.sess.Index++
		t := n.transition(true)
		t.Defaulted = defaulted
		return t, nil
	}

	n.state = StateFlushing
	if err := n.flush(ctx); err != nil {
		t := n.transition(false)
		t.Defaulted = defaulted
		return t, err
	}
	t := n.transition(false)
	t.Defaulted = defaulted
	return t, nil
}

// Flush retries persisting the buffer after a failed final flush.
func (n *Navigator) Flush(ctx context.Context) (Transition, error) {
	if n.state != StateFlushing {
		return n.transition(false), fmt.Errorf("nothing to flush in state %s", n.state)
	}
	if err := n.flush(ctx); err != nil {
		return n.transition(false), err
	}
	return n.transition(false), nil
}

// Cancel abandons the session and discards the buffer without persisting
// anything. Discarding is always explicit, never a side effect.
func (n *Navigator) Cancel() Transition {
	n.tasks = nil
	n.sess = SessionState{}
	n.state = StateIdle
	return n.transition(false)
}

func (n *Navigator) flush(ctx context.Context) error {
	if err := n.store.Append(ctx, n.sess.Pending); err != nil {
		return fmt.Errorf("flush %d buffered record(s): %w", len(n.sess.Pending), err)
	}
	n.tasks = nil
	n.sess = SessionState{}
	n.state = StateIdle
	return nil
}

// buildRecord validates the submission and assembles the record with
// responses in schema order. Unknown questions and out-of-domain answers are
// rejected here, at submission time, so the store only ever grows with
// records valid against the schema they were collected under.
func (n *Navigator) buildRecord(item domain.TaskItem, sub Submission) (domain.AnnotationRecord, []string, error) {
	answers := sub.Responses
	if answers == nil {
		answers = &domain.AnswerSet{}
	}

	for _, key := range answers.Keys() {
		q, ok := n.schema.Lookup(key)
		if !ok {
			return domain.AnnotationRecord{}, nil, apperr.NewSchema(fmt.Sprintf("unknown question %q", key))
		}
		value, _ := answers.Get(key)
		if !q.Allows(value) {
			return domain.AnnotationRecord{}, nil, apperr.NewSchema(
				fmt.Sprintf("answer %q is outside the domain of question %q", value, key))
		}
	}

	var responses domain.AnswerSet
	var defaulted []string
	for _, q := range n.schema.Questions {
		if value, ok := answers.Get(q.Text); ok {
			responses.Set(q.Text, value)
			continue
		}
		responses.Set(q.Text, q.Default())
		defaulted = append(defaulted, q.Text)
	}

	prompt := item.Prompt
	if sub.Prompt != "" {
		prompt = sub.Prompt
	}

	record := domain.AnnotationRecord{
		Prompt:    prompt,
		Responses: responses,
	}
	if n.pathIdentity {
		record.ImagePath = item.Ref.Path
	} else {
		record.ImageName = item.Ref.DisplayName()
	}
	return record, defaulted, nil
}

func (n *Navigator) transition(needsRender bool) Transition {
	return Transition{
		State:       n.state,
		Index:       n.sess.Index,
		NeedsRender: needsRender,
	}
}
