// Package mediawiki provides the origin wiki adapter for the MediaWiki action API.
package mediawiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/wikiprox/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.OriginWiki = (*Client)(nil)

const (
	// listLimit is the page size for list queries.
	listLimit = "5000"

	categoryPrefix = "Category:"
)

// Config holds configuration for the MediaWiki client.
type Config struct {
	// APIURL is the api.php endpoint.
	APIURL string

	// Username and Password are HTTP basic auth credentials, if the wiki
	// sits behind one.
	Username string
	Password string

	Timeout           time.Duration
	RequestsPerSecond float64

	// PublishedCategory marks published pages (default: Published).
	PublishedCategory string
}

// Client reads pages and inventories from a MediaWiki installation.
type Client struct {
	api       *apiclient.Client
	endpoint  string
	published string
}

// NewClient creates a new MediaWiki client.
func NewClient(cfg Config) *Client {
	if cfg.PublishedCategory == "" {
		cfg.PublishedCategory = "Published"
	}
	return &Client{
		api: apiclient.New(apiclient.Config{
			Service:           "mediawiki",
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Username:          cfg.Username,
			Password:          cfg.Password,
		}),
		endpoint:  cfg.APIURL,
		published: cfg.PublishedCategory,
	}
}

// Page fetches the rendered page and the timestamp of its latest revision.
func (c *Client) Page(ctx context.Context, title string) (*domain.RawPage, error) {
	var parsed parseResponse
	if err := c.query(ctx, url.Values{
		"action": {"parse"},
		"page":   {title},
		"prop":   {"text|images|categories|displaytitle"},
	}, &parsed); err != nil {
		return nil, fmt.Errorf("parse %q: %w", title, err)
	}
	if err := parsed.Error.err(); err != nil {
		return nil, fmt.Errorf("parse %q: %w", title, err)
	}

	lastmod, err := c.lastModified(ctx, title)
	if err != nil {
		return nil, err
	}

	page := &domain.RawPage{
		Title:        parsed.Parse.Title,
		DisplayTitle: parsed.Parse.DisplayTitle,
		Body:         parsed.Parse.Text.Content,
		Images:       parsed.Parse.Images,
		LastModified: lastmod,
	}
	if page.Title == "" {
		page.Title = title
	}
	for _, cat := range parsed.Parse.Categories {
		page.Categories = append(page.Categories, categoryName(cat.Name))
	}
	page.Published = page.HasCategory(c.published)
	return page, nil
}

// lastModified returns the timestamp of the latest revision of a page.
func (c *Client) lastModified(ctx context.Context, title string) (time.Time, error) {
	var resp queryResponse
	if err := c.query(ctx, url.Values{
		"action": {"query"},
		"prop":   {"revisions"},
		"rvprop": {"ids|timestamp"},
		"titles": {title},
	}, &resp); err != nil {
		return time.Time{}, fmt.Errorf("revisions %q: %w", title, err)
	}
	if err := resp.Error.err(); err != nil {
		return time.Time{}, fmt.Errorf("revisions %q: %w", title, err)
	}

	for _, p := range resp.Query.Pages {
		if p.Missing != nil || len(p.Revisions) == 0 {
			return time.Time{}, fmt.Errorf("revisions %q: %w", title, domain.ErrNotFound)
		}
		return parseTimestamp(p.Revisions[0].Timestamp)
	}
	return time.Time{}, fmt.Errorf("revisions %q: %w", title, domain.ErrNotFound)
}

// AllPages lists every page with its latest revision timestamp.
func (c *Client) AllPages(ctx context.Context) ([]domain.InventoryEntry, error) {
	params := url.Values{
		"action":    {"query"},
		"generator": {"allpages"},
		"gaplimit":  {listLimit},
		"prop":      {"revisions"},
		"rvprop":    {"timestamp"},
	}

	var entries []domain.InventoryEntry
	err := c.paginate(ctx, params, func(resp *queryResponse) error {
		for _, p := range resp.Query.Pages {
			if len(p.Revisions) == 0 {
				continue
			}
			ts, err := parseTimestamp(p.Revisions[0].Timestamp)
			if err != nil {
				return err
			}
			entries = append(entries, domain.InventoryEntry{Title: p.Title, LastModified: ts})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("all pages: %w", err)
	}
	return entries, nil
}

// CategoryMembers lists titles of pages tagged with the category.
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	params := url.Values{
		"action":  {"query"},
		"list":    {"categorymembers"},
		"cmtitle": {categoryPrefix + category},
		"cmprop":  {"ids|title"},
		"cmlimit": {listLimit},
	}

	var titles []string
	err := c.paginate(ctx, params, func(resp *queryResponse) error {
		for _, m := range resp.Query.CategoryMembers {
			titles = append(titles, m.Title)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}
	return titles, nil
}

// paginate follows MediaWiki continuation until the result set is exhausted.
func (c *Client) paginate(ctx context.Context, params url.Values, page func(*queryResponse) error) error {
	for {
		var resp queryResponse
		if err := c.query(ctx, params, &resp); err != nil {
			return err
		}
		if err := resp.Error.err(); err != nil {
			return err
		}
		if err := page(&resp); err != nil {
			return err
		}
		if len(resp.Continue) == 0 {
			return nil
		}

		next := make(url.Values, len(params)+len(resp.Continue))
		for k, v := range params {
			next[k] = v
		}
		for k, v := range resp.Continue {
			next.Set(k, v)
		}
		params = next
	}
}

// query issues one API call with format=json.
func (c *Client) query(ctx context.Context, params url.Values, out any) error {
	q := make(url.Values, len(params)+1)
	for k, v := range params {
		q[k] = v
	}
	q.Set("format", "json")
	return c.api.GetJSON(ctx, c.endpoint+"?"+q.Encode(), out)
}

// categoryName strips the namespace prefix and converts underscores.
func categoryName(name string) string {
	name = strings.TrimPrefix(name, categoryPrefix)
	return strings.ReplaceAll(name, "_", " ")
}
