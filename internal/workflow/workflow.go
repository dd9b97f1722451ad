package workflow

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/pkg/logger"
)

// State is the explicit submission state of one workflow instance.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
	StateSettling
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSettling:
		return "settling"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type submitter interface {
	Submit(ctx context.Context, intent domain.ValidIntent) (*domain.Outcome, error)
}

type accountState interface {
	Balance() decimal.Decimal
	Refresh(ctx context.Context) error
}

// Workflow drives validate → submit → settle for one transaction kind.
// Instances for different kinds are fully independent; within one instance
// at most one submission is outstanding at a time.
type Workflow struct {
	kind   domain.TransactionKind
	client submitter
	store  accountState

	mu        sync.Mutex
	state     State
	draft     domain.Intent
	failure   string
	abandoned bool
}

func New(kind domain.TransactionKind, client submitter, store accountState) *Workflow {
	return &Workflow{
		kind:   kind,
		client: client,
		store:  store,
	}
}

// Open starts composing an intent for the given card. Opening while a
// submission is outstanding is rejected; an already open editor is left
// as is.
func (w *Workflow) Open(cardNumber string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateSubmitting, StateSettling:
		return domain.ErrConcurrentSubmission
	case StateEditing, StateFailed:
		return nil
	}

	w.state = StateEditing
	w.draft = domain.Intent{Kind: w.kind, CardNumber: cardNumber}
	w.failure = ""
	w.abandoned = false

	return nil
}

// Submit validates the composed intent and, if it passes, performs exactly
// one backend call. On success the account state is refreshed before the
// workflow returns to idle, so the caller never observes a success with a
// stale balance. On decline or transport failure the workflow enters the
// failed state with the fields intact for correction and resubmission.
//
// A second Submit of the same kind while one is outstanding returns
// ErrConcurrentSubmission without touching the network.
func (w *Workflow) Submit(ctx context.Context, amount, pin string) error {
	w.mu.Lock()
	switch w.state {
	case StateSubmitting, StateSettling:
		w.mu.Unlock()
		return domain.ErrConcurrentSubmission
	case StateEditing, StateFailed:
	default:
		w.mu.Unlock()
		return domain.ErrNotEditing
	}

	w.draft.Amount = amount
	w.draft.Pin = pin

	valid, err := w.draft.Validate(w.store.Balance())
	if err != nil {
		// Local rejection: stay editable, never reach the network.
		w.state = StateEditing
		w.failure = err.Error()
		w.mu.Unlock()
		return err
	}

	w.state = StateSubmitting
	w.failure = ""
	w.mu.Unlock()

	outcome, err := w.client.Submit(ctx, valid)

	w.mu.Lock()
	if err != nil {
		w.fail(err.Error())
		w.mu.Unlock()
		return err
	}

	if !outcome.Success {
		message := outcome.Message
		if message == "" {
			message = fallbackMessage(w.kind)
		}
		w.fail(message)
		w.mu.Unlock()
		return &domain.DeclineError{Message: message}
	}

	// Settling: the backend transaction took effect, so the refresh applies
	// even if the editor was abandoned mid-flight.
	w.state = StateSettling
	w.mu.Unlock()

	if err := w.store.Refresh(ctx); err != nil {
		// The transaction already succeeded; a failed refresh only leaves
		// the store flagged stale.
		logger.Log.Warn("refresh after settle failed", logger.Error(err))
	}

	w.mu.Lock()
	w.state = StateIdle
	w.draft = domain.Intent{}
	w.abandoned = false
	w.mu.Unlock()

	return nil
}

// fail records a failed submission. If the editor was closed while the
// call was in flight, the result is discarded and the workflow goes idle.
func (w *Workflow) fail(message string) {
	if w.abandoned {
		w.state = StateIdle
		w.draft = domain.Intent{}
		w.failure = ""
		w.abandoned = false
		return
	}

	w.state = StateFailed
	w.failure = message
}

// Cancel closes the editor. Cancelling while a submission is in flight does
// not cancel the backend call; its result is discarded for display, but a
// successful call still refreshes the account state.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateEditing, StateFailed:
		w.state = StateIdle
		w.draft = domain.Intent{}
		w.failure = ""
	case StateSubmitting, StateSettling:
		w.abandoned = true
	}
}

func (w *Workflow) Kind() domain.TransactionKind {
	return w.kind
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// Failure returns the message to surface inline while in the failed state.
func (w *Workflow) Failure() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.failure
}

// Draft returns the intent as currently composed, fields preserved across
// failed attempts.
func (w *Workflow) Draft() domain.Intent {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.draft
}

func fallbackMessage(kind domain.TransactionKind) string {
	if kind == domain.KindWithdraw {
		return "Withdrawal failed"
	}
	return "Top-up failed"
}
