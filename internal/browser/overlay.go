package browser

import (
	"context"
	"log/slog"
	"time"
)

// Selectors for the host framework's blocking modal and its dismissal
// controls. The dismiss selector matches either the data-dismiss button or
// the legacy close affordance, whichever the modal carries.
const (
	overlaySelector = ".modal.show"
	dismissSelector = ".modal button[data-dismiss='modal'], .modal .close"
)

// DismissOverlay ensures no blocking modal covers the interaction surface.
//
// This check-then-act is best-effort: absence of the modal is the common
// case and returns immediately without logging. When a modal is present,
// the dismissal control is clicked and the modal's disappearance awaited.
// A modal with no reachable dismissal control is logged and tolerated,
// since some overlays self-dismiss; the caller proceeds regardless.
//
// The only two outcomes are "already absent" and "became absent (or was
// left to self-dismiss)". DismissOverlay never fails a scenario.
func DismissOverlay(ctx context.Context, d Driver, log *slog.Logger, timeout time.Duration) {
	present, err := d.Present(ctx, overlaySelector)
	if err != nil || !present {
		return
	}

	log.Info("blocking modal detected, dismissing", "selector", overlaySelector)

	clickable, err := d.Clickable(ctx, dismissSelector)
	if err == nil && clickable {
		if err := d.Click(ctx, dismissSelector); err != nil {
			log.Warn("modal dismiss control rejected click", "error", err)
		}
	} else {
		log.Warn("modal has no reachable dismiss control, proceeding anyway")
	}

	// Whether or not the click landed, give the modal its window to go away.
	if err := WaitFor(ctx, Absent(d, overlaySelector), timeout, DefaultPoll); err != nil {
		log.Warn("modal still visible after dismissal attempt", "error", err)
	}
}
