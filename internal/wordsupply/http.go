package wordsupply

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultURL is the public random word endpoint.
const DefaultURL = "https://random-word-api.herokuapp.com/word"

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 5 * time.Second

const maxResponseBytes = 1 << 20

// HTTP fetches words from a remote endpoint that answers
// GET <url>?number=<count> with a JSON array of strings.
type HTTP struct {
	url    string
	lang   string
	client *http.Client
	log    zerolog.Logger
}

// NewHTTP returns a remote Supply. A non-positive timeout uses DefaultTimeout.
func NewHTTP(endpoint string, timeout time.Duration, log zerolog.Logger) *HTTP {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		url:    endpoint,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// WithLang requests words in lang. English is the endpoint default and is not sent.
func (h *HTTP) WithLang(lang string) *HTTP {
	h.lang = strings.ToLower(strings.TrimSpace(lang))
	return h
}

// Fetch implements Supply.
func (h *HTTP) Fetch(ctx context.Context, count int) []string {
	words, err := h.FetchWords(ctx, count)
	if err != nil {
		if ctx.Err() == nil {
			h.log.Warn().Err(err).Str("url", h.url).Int("count", count).Msg("word fetch failed")
		}
		return nil
	}
	h.log.Debug().Int("count", len(words)).Msg("fetched words")
	return words
}

// FetchWords is Fetch with the error exposed, for commands that report it.
func (h *HTTP) FetchWords(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be > 0")
	}
	u, err := url.Parse(h.url)
	if err != nil {
		return nil, fmt.Errorf("invalid word url: %w", err)
	}
	q := u.Query()
	q.Set("number", strconv.Itoa(count))
	if h.lang != "" && h.lang != "en" {
		q.Set("lang", h.lang)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fasttype")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var words []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&words); err != nil {
		return nil, fmt.Errorf("failed to decode words: %w", err)
	}
	if len(words) > count {
		words = words[:count]
	}
	return words, nil
}
