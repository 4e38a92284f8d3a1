// Package identity checks member claims against an external profile site and
// runs the registration code handshake.
package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"moderation-bot/metrics"
)

// DefaultTimeout bounds each profile lookup.
const DefaultTimeout = 3 * time.Second

// OpsReporter receives operational failures.
type OpsReporter interface {
	Error(module, operation, extraInfo string)
}

// ProfileChecker answers yes/no questions about profiles on an external site.
// Any failure to fetch or parse a page is answered with false.
type ProfileChecker struct {
	fetcher        Fetcher
	baseURL        string
	notFoundMarker string
	tokenElement   string
	timeout        time.Duration

	logger  *zap.Logger
	ops     OpsReporter
	metrics *metrics.Metrics
}

// CheckerOption configures a ProfileChecker.
type CheckerOption func(*ProfileChecker)

func WithTimeout(d time.Duration) CheckerOption {
	return func(c *ProfileChecker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenElement restricts token matches to text inside the named element, e.g. "span".
func WithTokenElement(tag string) CheckerOption {
	return func(c *ProfileChecker) { c.tokenElement = strings.ToLower(tag) }
}

func WithCheckerLogger(logger *zap.Logger) CheckerOption {
	return func(c *ProfileChecker) { c.logger = logger }
}

func WithOpsReporter(ops OpsReporter) CheckerOption {
	return func(c *ProfileChecker) { c.ops = ops }
}

func WithCheckerMetrics(m *metrics.Metrics) CheckerOption {
	return func(c *ProfileChecker) { c.metrics = m }
}

// NewProfileChecker builds a checker for profiles under baseURL. A page containing
// notFoundMarker is treated as a missing profile.
func NewProfileChecker(fetcher Fetcher, baseURL, notFoundMarker string, opts ...CheckerOption) *ProfileChecker {
	c := &ProfileChecker{
		fetcher:        fetcher,
		baseURL:        strings.TrimRight(baseURL, "/"),
		notFoundMarker: normalize(notFoundMarker),
		timeout:        DefaultTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProfileURL is the page checked for username.
func (c *ProfileChecker) ProfileURL(username string) string {
	return c.baseURL + "/" + url.PathEscape(username)
}

// UsernameExists reports whether the site has a profile for username.
func (c *ProfileChecker) UsernameExists(ctx context.Context, username string) bool {
	if strings.TrimSpace(username) == "" {
		return false
	}
	texts, err := c.pageText(ctx, username, "")
	if err != nil {
		c.fail("username", username, err)
		return false
	}
	if c.notFoundMarker != "" {
		for _, t := range texts {
			if strings.Contains(t, c.notFoundMarker) {
				c.metrics.IdentityCheck("username", "missing")
				return false
			}
		}
	}
	c.metrics.IdentityCheck("username", "found")
	return true
}

// BioContainsToken reports whether the profile of username shows token.
func (c *ProfileChecker) BioContainsToken(ctx context.Context, username, token string) bool {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(token) == "" {
		return false
	}
	texts, err := c.pageText(ctx, username, c.tokenElement)
	if err != nil {
		c.fail("token", username, err)
		return false
	}
	want := normalize(token)
	for _, t := range texts {
		if strings.Contains(t, want) {
			c.metrics.IdentityCheck("token", "found")
			return true
		}
	}
	c.metrics.IdentityCheck("token", "missing")
	return false
}

func (c *ProfileChecker) fail(check, username string, err error) {
	if errors.Is(err, errProfileMissing) {
		c.metrics.IdentityCheck(check, "missing")
		return
	}
	c.metrics.IdentityCheck(check, "error")
	c.logger.Warn("profile check failed",
		zap.String("check", check),
		zap.String("username", username),
		zap.Error(err))
	if c.ops != nil {
		c.ops.Error("identity", check+" check", username+": "+err.Error())
	}
}

func (c *ProfileChecker) pageText(ctx context.Context, username, element string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	page, err := c.fetcher.Fetch(ctx, c.ProfileURL(username))
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	var texts []string
	collectText(doc, element, element == "", &texts)
	return texts, nil
}

// collectText gathers normalized text nodes, skipping script and style. When
// element is set only text below that element is kept.
func collectText(n *html.Node, element string, inside bool, out *[]string) {
	switch n.Type {
	case html.TextNode:
		if inside {
			if t := normalize(n.Data); t != "" {
				*out = append(*out, t)
			}
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
		if element != "" && n.Data == element {
			inside = true
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, element, inside, out)
	}
}

// normalize lowercases s and collapses whitespace, including non-breaking spaces.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
