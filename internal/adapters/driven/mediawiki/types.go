package mediawiki

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

// timestampFormat is the revision timestamp layout.
const timestampFormat = "2006-01-02T15:04:05Z"

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// err maps an API error body onto the domain taxonomy.
func (e *apiError) err() error {
	if e == nil {
		return nil
	}
	switch e.Code {
	case "missingtitle", "invalidtitle", "pagecannotexist":
		return fmt.Errorf("%s: %w", e.Info, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s (%s): %w", e.Info, e.Code, domain.ErrUnavailable)
	}
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse struct {
		Title        string `json:"title"`
		DisplayTitle string `json:"displaytitle"`
		Text         struct {
			Content string `json:"*"`
		} `json:"text"`
		Images     []string `json:"images"`
		Categories []struct {
			Name string `json:"*"`
		} `json:"categories"`
	} `json:"parse"`
}

type revision struct {
	Timestamp string `json:"timestamp"`
}

type queryPage struct {
	Title     string     `json:"title"`
	Missing   *string    `json:"missing"`
	Revisions []revision `json:"revisions"`
}

type queryResponse struct {
	Error    *apiError         `json:"error"`
	Continue map[string]string `json:"-"`
	Query    struct {
		Pages           map[string]queryPage `json:"pages"`
		CategoryMembers []struct {
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// UnmarshalJSON keeps only the string values of the continue block.
func (r *queryResponse) UnmarshalJSON(data []byte) error {
	type plain queryResponse
	var aux struct {
		*plain
		Continue map[string]json.RawMessage `json:"continue"`
	}
	aux.plain = (*plain)(r)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Continue = nil
	for k, raw := range aux.Continue {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if r.Continue == nil {
			r.Continue = make(map[string]string, len(aux.Continue))
		}
		r.Continue[k] = s
	}
	return nil
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("revision timestamp %q: %w: %w", ts, domain.ErrUnavailable, err)
	}
	return t, nil
}
