package browse

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// PageSession is the rod-backed Session over one pooled tab.
type PageSession struct {
	page    *rod.Page
	release func(*rod.Page)
}

// NewPageSession wraps a tab. release is invoked exactly once by Close,
// after the tab has been parked on about:blank.
func NewPageSession(page *rod.Page, release func(*rod.Page)) *PageSession {
	return &PageSession{page: page, release: release}
}

// SetExtraHeaders installs headers on every request the tab makes.
func (s *PageSession) SetExtraHeaders(headers map[string]string) error {
	if len(headers) == 0 {
		return nil
	}
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return proto.NetworkSetExtraHTTPHeaders{Headers: m}.Call(s.page)
}

func (s *PageSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (s *PageSession) WaitStable(ctx context.Context, timeout time.Duration) {
	p := s.page.Context(ctx).Timeout(timeout)
	_ = p.WaitDOMStable(300*time.Millisecond, 0.1)
}

func (s *PageSession) Fill(ctx context.Context, selector, value string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (s *PageSession) Click(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *PageSession) ClickText(ctx context.Context, selector, pattern string) (bool, error) {
	el, err := s.page.Context(ctx).Sleeper(rod.NotFoundSleeper).ElementR(selector, pattern)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PageSession) FindText(ctx context.Context, selector, pattern string) (string, bool, error) {
	el, err := s.page.Context(ctx).Sleeper(rod.NotFoundSleeper).ElementR(selector, pattern)
	if err != nil {
		if notFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	class, err := el.Attribute("class")
	if err != nil {
		return "", false, err
	}
	if class == nil {
		return "", true, nil
	}
	return *class, true, nil
}

func (s *PageSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	p := s.page.Context(ctx).Timeout(timeout)
	el, err := p.Element(selector)
	if err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := el.WaitVisible(); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *PageSession) WaitHidden(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	el, err := s.page.Context(ctx).Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		if notFound(err) {
			return true, nil
		}
		return false, err
	}
	if err := el.Timeout(timeout).WaitInvisible(); err != nil {
		if notFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *PageSession) Text(ctx context.Context, selector string, timeout time.Duration) (string, bool, error) {
	p := s.page.Context(ctx).Timeout(timeout)
	el, err := p.Element(selector)
	if err != nil {
		if notFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	text, err := el.Text()
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (s *PageSession) FrameHTML(ctx context.Context, frameSelector string) (string, error) {
	el, err := s.page.Context(ctx).Element(frameSelector)
	if err != nil {
		return "", err
	}
	frame, err := el.Frame()
	if err != nil {
		return "", err
	}
	return frame.Context(ctx).HTML()
}

// Close parks the tab on about:blank so the next borrower starts clean,
// then hands it back. Cleanup deliberately ignores the caller's context:
// the tab must be returned even after a deadline expired.
func (s *PageSession) Close() {
	_ = s.page.Navigate("about:blank")
	if s.release != nil {
		s.release(s.page)
	}
}

// notFound reports whether err means the element never appeared, as opposed
// to a browser or protocol fault.
func notFound(err error) bool {
	var enf *rod.ElementNotFoundError
	return errors.As(err, &enf) || errors.Is(err, context.DeadlineExceeded)
}
