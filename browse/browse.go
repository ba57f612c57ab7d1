// Package browse wraps the driving of a single browser tab behind a small
// capability interface so the search logic can be tested without Chromium.
package browse

import (
	"context"
	"time"
)

// Session drives one browser tab. All blocking calls honour ctx.
//
// Lookups distinguish three outcomes: a found element, an element that is
// legitimately absent (found=false, err=nil), and a fault (err != nil).
// Timeouts on waits count as legitimate absence, not as faults; whether an
// absent element ends a loop or fails the run is the caller's decision.
type Session interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitStable blocks until the DOM stops mutating, up to timeout.
	// Non-convergence is not an error; the page is used as-is.
	WaitStable(ctx context.Context, timeout time.Duration)

	// Fill replaces the value of the input matched by selector.
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the element matched by selector.
	Click(ctx context.Context, selector string) error

	// ClickText clicks the first descendant of selector whose text matches
	// the regex pattern. Returns found=false if no such element exists.
	ClickText(ctx context.Context, selector, pattern string) (bool, error)

	// FindText locates the first descendant of selector whose text matches
	// the regex pattern and returns its class attribute.
	FindText(ctx context.Context, selector, pattern string) (class string, found bool, err error)

	// WaitVisible waits up to timeout for selector to exist and be visible.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// WaitHidden waits up to timeout for selector to disappear or become
	// invisible. Returns found=false if it is still visible at the deadline.
	WaitHidden(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// Text returns the visible text of the element matched by selector,
	// waiting up to timeout for it to appear.
	Text(ctx context.Context, selector string, timeout time.Duration) (text string, found bool, err error)

	// FrameHTML returns the serialized document of the iframe matched by
	// frameSelector.
	FrameHTML(ctx context.Context, frameSelector string) (string, error)

	// Close releases the underlying tab.
	Close()
}
