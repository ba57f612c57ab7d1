package scraper

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/agrodata/pestreg/browse"
	"github.com/agrodata/pestreg/config"
)

// paginator tracks the active page number and drives the pager control.
// The site re-renders the whole grid on a page change, so the only
// trustworthy "we moved" signal is the li.active indicator showing a
// number strictly greater than the one we left.
type paginator struct {
	sess    browse.Session
	cfg     config.ScraperConfig
	current int
}

func newPaginator(sess browse.Session, cfg config.ScraperConfig) *paginator {
	return &paginator{sess: sess, cfg: cfg, current: 1}
}

// advance clicks the next-page link and confirms the move. It returns
// false with a nil error when the run has reached the last page: no pager
// control, no next link, a disabled next link, or an indicator that never
// advanced within the pagination timeout.
func (p *paginator) advance(ctx context.Context) (bool, error) {
	visible, err := p.sess.WaitVisible(ctx, paginationRegion, p.cfg.PaginationTimeout)
	if err != nil {
		return false, err
	}
	if !visible {
		// Single-page result sets render no pager at all.
		return false, nil
	}

	class, found, err := p.sess.FindText(ctx, paginationLinks, nextPagePattern)
	if err != nil {
		return false, err
	}
	if !found || strings.Contains(class, "disabled") {
		return false, nil
	}

	prev := p.current
	clicked, err := p.sess.ClickText(ctx, paginationLinks, nextPagePattern)
	if err != nil {
		return false, err
	}
	if !clicked {
		return false, nil
	}

	return p.confirm(ctx, prev)
}

// confirm polls the active-page indicator until it reads a number greater
// than prev. A stale or missing indicator at the deadline means the click
// went nowhere and the run must not re-scrape the same grid.
func (p *paginator) confirm(ctx context.Context, prev int) (bool, error) {
	deadline := time.Now().Add(p.cfg.PaginationTimeout)
	for {
		text, found, err := p.sess.Text(ctx, activePageIndicator, time.Second)
		if err != nil {
			return false, err
		}
		if found {
			if n, convErr := strconv.Atoi(strings.TrimSpace(text)); convErr == nil && n > prev {
				p.current = n
				return true, nil
			}
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
