package registration

import (
	"context"

	"go.uber.org/zap"

	eventModel "github.com/technovus/client-go/internal/event/model"
)

// Watcher turns the pull-based reconciler into trigger-driven updates.
// It reconciles when something meaningful happens (the app regains focus,
// the page becomes visible, a mutation lands) instead of on a timer.
// Coalesced: triggers arriving while a reconcile is running fold into one
// follow-up run.
type Watcher struct {
	reconciler *Reconciler
	event      eventModel.Event
	logger     *zap.SugaredLogger

	trigger chan struct{}
	updates chan TeamStatus
}

// NewWatcher creates a watcher for one event.
func NewWatcher(reconciler *Reconciler, event eventModel.Event, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{
		reconciler: reconciler,
		event:      event,
		logger:     logger,
		trigger:    make(chan struct{}, 1),
		updates:    make(chan TeamStatus, 1),
	}
}

// OnFocus requests a reconcile because the app regained focus.
func (w *Watcher) OnFocus() { w.kick() }

// OnVisible requests a reconcile because the view became visible.
func (w *Watcher) OnVisible() { w.kick() }

// OnMutation requests a reconcile after a local mutation (team created,
// invite sent, invitation answered).
func (w *Watcher) OnMutation() { w.kick() }

func (w *Watcher) kick() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Updates delivers reconcile outcomes. StatusUnknown results are dropped
// so a transient auth hiccup never overwrites a rendered state.
func (w *Watcher) Updates() <-chan TeamStatus {
	return w.updates
}

// Run reconciles once immediately, then once per trigger, until the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.kick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
			status := w.reconciler.Reconcile(ctx, w.event)
			if status.Status == StatusUnknown {
				continue
			}
			select {
			case w.updates <- status:
			case <-ctx.Done():
				return
			default:
				// Receiver lagging; replace the stale update.
				select {
				case <-w.updates:
				default:
				}
				select {
				case w.updates <- status:
				default:
				}
			}
		}
	}
}
