package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/vantrack-api/internal/models"
)

// ErrIllegalTransition is returned when an event does not apply to the
// draft's current state.
var ErrIllegalTransition = errors.New("illegal draft transition")

// Draft lifecycle events
const (
	EventConfirm = "confirm"
	EventDiscard = "discard"
)

// DraftFSM wraps a draft with its state machine. Confirmed and discarded
// are terminal.
type DraftFSM struct {
	draft *models.Draft
	fsm   *fsm.FSM
	now   func() time.Time
}

// NewDraftFSM creates a new draft state machine
func NewDraftFSM(draft *models.Draft) *DraftFSM {
	dfsm := &DraftFSM{
		draft: draft,
		now:   time.Now,
	}

	dfsm.fsm = fsm.NewFSM(
		draft.ActionStatus,
		fsm.Events{
			{Name: EventConfirm, Src: []string{models.DraftStatusPending}, Dst: models.DraftStatusConfirmed},
			{Name: EventDiscard, Src: []string{models.DraftStatusPending}, Dst: models.DraftStatusDiscarded},
		},
		fsm.Callbacks{
			"enter_" + models.DraftStatusConfirmed: func(_ context.Context, _ *fsm.Event) {
				t := dfsm.now()
				dfsm.draft.ConfirmedAt = &t
			},
			"enter_" + models.DraftStatusDiscarded: func(_ context.Context, _ *fsm.Event) {
				t := dfsm.now()
				dfsm.draft.DiscardedAt = &t
			},
		},
	)

	return dfsm
}

// Confirm transitions the draft to confirmed
func (d *DraftFSM) Confirm(ctx context.Context) error {
	if !d.draft.MayConfirm() {
		return fmt.Errorf("%w: cannot confirm draft in state %s", ErrIllegalTransition, d.draft.ActionStatus)
	}
	return d.fire(ctx, EventConfirm)
}

// Discard transitions the draft to discarded
func (d *DraftFSM) Discard(ctx context.Context) error {
	if !d.draft.MayDiscard() {
		return fmt.Errorf("%w: cannot discard draft in state %s", ErrIllegalTransition, d.draft.ActionStatus)
	}
	return d.fire(ctx, EventDiscard)
}

func (d *DraftFSM) fire(ctx context.Context, event string) error {
	if err := d.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIllegalTransition, event, err)
	}
	d.draft.ActionStatus = d.fsm.Current()
	return nil
}

// Current returns the current state
func (d *DraftFSM) Current() string {
	return d.fsm.Current()
}

// Can checks if a transition is possible
func (d *DraftFSM) Can(event string) bool {
	return d.fsm.Can(event)
}
