package scraper

import (
	"context"
	"log/slog"

	"github.com/agrodata/pestreg/browse"
	"github.com/agrodata/pestreg/models"
)

// scrapePage walks the fixed row window of the result grid and scrapes
// every row's detail overlay. Data rows start at tr:nth-child(2); the
// first row whose detail link is absent ends the page, which is how the
// last, partially filled page terminates.
func (s *Scraper) scrapePage(ctx context.Context, sess browse.Session) ([]models.RegistrationRecord, error) {
	records := make([]models.RegistrationRecord, 0, s.scraperCfg.MaxRowsPerPage)

	for row := 2; row <= s.scraperCfg.MaxRowsPerPage+1; row++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		present, err := sess.WaitVisible(ctx, rowLinkSelector(row), s.scraperCfg.RowTimeout)
		if err != nil {
			return records, err
		}
		if !present {
			break
		}

		rec, err := s.scrapeItem(ctx, sess, row)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			// A single broken overlay does not abort the run.
			slog.Warn("row skipped", "row", row-1, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
