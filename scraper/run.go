package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agrodata/pestreg/browse"
	"github.com/agrodata/pestreg/models"
)

// Progress is invoked after each scraped page with the page number just
// finished and the running record total. Callers use it to stream
// per-page webhook events; nil is fine.
type Progress func(page, total int)

// run executes one full search: submit the form, then alternate between
// scraping the visible grid and advancing the pager until the last page.
//
// Ordering matters on the result page: the overlay of every row must be
// closed before the pager is touched, which scrapePage guarantees, and a
// page is only counted after its rows are in the result.
func (s *Scraper) run(ctx context.Context, sess browse.Session, term string, notify Progress) (*models.RunResult, error) {
	if err := sess.Navigate(ctx, s.scraperCfg.BaseURL); err != nil {
		return nil, categorizeError(err, "navigation to search page failed")
	}
	sess.WaitStable(ctx, s.scraperCfg.NavigationTimeout)

	if err := sess.Fill(ctx, searchInput, term); err != nil {
		return nil, categorizeError(err, "failed to fill search input")
	}
	if err := sess.Click(ctx, submitButton); err != nil {
		return nil, categorizeError(err, "failed to submit search form")
	}
	sess.WaitStable(ctx, s.scraperCfg.NavigationTimeout)

	result := &models.RunResult{}
	pager := newPaginator(sess, s.scraperCfg)

	for {
		records, err := s.scrapePage(ctx, sess)
		if err != nil {
			return nil, categorizeError(err, "failed to scrape result page")
		}
		result.Append(records)
		result.Pages = pager.current

		slog.Info("page scraped",
			"term", term,
			"page", pager.current,
			"total", result.TotalItems,
		)
		if notify != nil {
			notify(pager.current, result.TotalItems)
		}

		moved, err := pager.advance(ctx)
		if err != nil {
			return nil, categorizeError(err, "pagination failed")
		}
		if !moved {
			break
		}
		sess.WaitStable(ctx, s.scraperCfg.PaginationTimeout)
	}

	return result, nil
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API
// layer can map them to HTTP status codes. Already-typed errors pass
// through untouched.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
