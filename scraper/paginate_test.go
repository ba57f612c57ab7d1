package scraper

import (
	"context"
	"testing"
)

func testPaginator(sess *fakeSession) *paginator {
	return newPaginator(sess, testScraper().scraperCfg)
}

func TestAdvanceConfirmsIndicator(t *testing.T) {
	sess := newFakeSession([][]string{fullPage(1, 20), fullPage(2, 20)})
	p := testPaginator(sess)

	moved, err := p.advance(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !moved {
		t.Fatal("advance = false, want true")
	}
	if p.current != 2 {
		t.Errorf("current = %d, want 2", p.current)
	}
}

func TestAdvanceNoPagerRegion(t *testing.T) {
	sess := newFakeSession([][]string{fullPage(1, 3)})
	p := testPaginator(sess)

	moved, err := p.advance(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if moved {
		t.Error("advance = true with no pager region")
	}
}

func TestAdvanceDisabledNextLink(t *testing.T) {
	sess := newFakeSession([][]string{fullPage(1, 20)})
	sess.disabledNext = true
	p := testPaginator(sess)

	moved, err := p.advance(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if moved {
		t.Error("advance = true on a disabled next link")
	}
	if p.current != 1 {
		t.Errorf("current moved to %d on a disabled link", p.current)
	}
}

func TestAdvanceStuckIndicator(t *testing.T) {
	sess := newFakeSession([][]string{fullPage(1, 20), fullPage(2, 20)})
	sess.stuckPager = true
	p := testPaginator(sess)

	moved, err := p.advance(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if moved {
		t.Error("advance = true although the indicator never increased")
	}
	if p.current != 1 {
		t.Errorf("current = %d, want 1 after unconfirmed click", p.current)
	}
}
