package scraper

import (
	"context"
	"fmt"

	"github.com/agrodata/pestreg/browse"
	"github.com/agrodata/pestreg/models"
)

// scrapeItem opens the detail overlay for one result row, extracts the
// record, and closes the overlay again. The close is confirmed: a row
// whose overlay is still visible afterwards would poison every later row
// on the page, so a lingering overlay is an error, not a warning.
func (s *Scraper) scrapeItem(ctx context.Context, sess browse.Session, row int) (models.RegistrationRecord, error) {
	var zero models.RegistrationRecord

	if err := sess.Click(ctx, rowLinkSelector(row)); err != nil {
		return zero, fmt.Errorf("click row %d link: %w", row, err)
	}

	visible, err := sess.WaitVisible(ctx, overlayFrame, s.scraperCfg.OverlayTimeout)
	if err != nil {
		return zero, fmt.Errorf("wait for detail overlay: %w", err)
	}
	if !visible {
		return zero, fmt.Errorf("detail overlay did not appear for row %d", row)
	}

	overlayHTML, err := sess.FrameHTML(ctx, overlayFrame)
	if err != nil {
		s.closeOverlay(ctx, sess)
		return zero, fmt.Errorf("read overlay frame: %w", err)
	}

	rec, err := parseOverlay(overlayHTML)
	if err != nil {
		s.closeOverlay(ctx, sess)
		return zero, fmt.Errorf("parse overlay: %w", err)
	}

	if err := sess.Click(ctx, overlayClose); err != nil {
		return zero, fmt.Errorf("click overlay close: %w", err)
	}
	hidden, err := sess.WaitHidden(ctx, overlayFrame, s.scraperCfg.OverlayTimeout)
	if err != nil {
		return zero, fmt.Errorf("wait for overlay to close: %w", err)
	}
	if !hidden {
		return zero, fmt.Errorf("detail overlay still visible after close for row %d", row)
	}

	return rec, nil
}

// closeOverlay is the best-effort recovery path when extraction failed
// with the overlay open.
func (s *Scraper) closeOverlay(ctx context.Context, sess browse.Session) {
	_ = sess.Click(ctx, overlayClose)
	_, _ = sess.WaitHidden(ctx, overlayFrame, s.scraperCfg.OverlayTimeout)
}
