// Package catalog provides the primary-source catalog adapter.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wikiprox/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driven"
	"github.com/custodia-labs/wikiprox/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SourceCatalog = (*Client)(nil)

// Config holds configuration for the catalog client.
type Config struct {
	// APIURL is the catalog API root; sources live under /primarysource/.
	APIURL string

	Timeout           time.Duration
	RequestsPerSecond float64

	// RTMPStreamer is removed from streaming URLs.
	RTMPStreamer string
}

// Client looks up primary sources by encyclopedia identifier.
type Client struct {
	api      *apiclient.Client
	endpoint string
	streamer string
}

// NewClient creates a new catalog client.
func NewClient(cfg Config) *Client {
	return &Client{
		api: apiclient.New(apiclient.Config{
			Service:           "catalog",
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}),
		endpoint: strings.TrimRight(cfg.APIURL, "/") + "/primarysource/",
		streamer: cfg.RTMPStreamer,
	}
}

// Lookup fetches every record whose identifier is in ids with one request.
func (c *Client) Lookup(ctx context.Context, ids []string) ([]domain.SourceRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := url.Values{
		"encyclopedia_id__in": ids,
		"limit":               {strconv.Itoa(len(ids))},
	}
	var resp listResponse
	if err := c.api.GetJSON(ctx, c.endpoint+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("lookup %d sources: %w", len(ids), err)
	}

	records := make([]domain.SourceRecord, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		if obj.EncyclopediaID == "" {
			continue
		}
		records = append(records, c.record(obj))
	}
	logger.Debug("catalog: %d of %d sources found", len(records), len(ids))
	return records, nil
}

func (c *Client) record(obj sourceObject) domain.SourceRecord {
	kind := domain.MediaKind(strings.ToLower(obj.MediaFormat))
	if !kind.IsValid() {
		logger.Debug("catalog: %s has unknown media format %q", obj.EncyclopediaID, obj.MediaFormat)
	}

	streaming := obj.StreamingURL
	if c.streamer != "" {
		streaming = strings.TrimPrefix(streaming, c.streamer)
	}

	return domain.SourceRecord{
		ID:              obj.EncyclopediaID,
		Kind:            kind,
		DenshoID:        obj.DenshoID,
		Caption:         strings.TrimSpace(obj.Caption),
		CaptionExtended: strings.TrimSpace(obj.CaptionExtended),
		Courtesy:        strings.TrimSpace(obj.Courtesy),
		DisplayURL:      obj.Display,
		OriginalURL:     obj.Original,
		StreamingURL:    streaming,
		ExternalURL:     obj.ExternalURL,
		AspectRatio:     obj.AspectRatio,
		CreativeCommons: obj.CreativeCommons,
		Published:       obj.Published,
		Modified:        parseModified(obj.Modified),
	}
}

type listResponse struct {
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
	Objects []sourceObject `json:"objects"`
}

type sourceObject struct {
	EncyclopediaID  string `json:"encyclopedia_id"`
	DenshoID        string `json:"densho_id"`
	MediaFormat     string `json:"media_format"`
	Caption         string `json:"caption"`
	CaptionExtended string `json:"caption_extended"`
	Courtesy        string `json:"courtesy"`
	Display         string `json:"display"`
	Original        string `json:"original"`
	StreamingURL    string `json:"streaming_url"`
	ExternalURL     string `json:"external_url"`
	AspectRatio     string `json:"aspect_ratio"`
	CreativeCommons bool   `json:"creative_commons"`
	Published       bool   `json:"published"`
	Modified        string `json:"modified"`
}

var modifiedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseModified accepts the timestamp layouts the catalog has used.
// An unparseable value yields the zero time.
func parseModified(s string) time.Time {
	for _, layout := range modifiedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
