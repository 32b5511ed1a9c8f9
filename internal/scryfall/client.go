package scryfall

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/arcanaland/setcolors/internal/card"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "setcolors/0.2.0"
	DefaultTimeout   = 30 * time.Second
	// Scryfall asks clients to stay under ten requests per second
	DefaultRateLimit = 10.0
)

var (
	// ErrNetwork covers transport failures and non-2xx responses
	ErrNetwork = errors.New("network failure")
	// ErrMalformedResponse covers bodies that are not the expected JSON shape
	ErrMalformedResponse = errors.New("malformed response")
)

// Config holds the client settings
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	AllPages  bool    // follow next_page links instead of stopping at the first page
	Logger    logrus.FieldLogger
}

// Client queries the Scryfall card search endpoint
type Client struct {
	baseURL    string
	userAgent  string
	allPages   bool
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a client, filling unset fields with defaults
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		allPages:  cfg.AllPages,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
		log:     cfg.Logger,
	}
}

// SearchURL builds the booster search URL for a set and rarity
func (c *Client) SearchURL(set string, rarity card.Rarity) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("set:%s r:%s is:booster", set, rarity.Label()))
	return c.baseURL + "/cards/search?" + q.Encode()
}

// SearchCards fetches the booster cards of one rarity in a set, in upstream order.
// Any malformed entry fails the whole search.
func (c *Client) SearchCards(ctx context.Context, set string, rarity card.Rarity) ([]card.Card, error) {
	log := c.log.WithFields(logrus.Fields{"set": set, "rarity": rarity.Label()})

	var cards []card.Card
	next := c.SearchURL(set, rarity)
	for next != "" {
		log.WithField("url", next).Debug("requesting card search")

		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		page, err := parsePage(body, len(cards))
		if err != nil {
			return nil, err
		}
		cards = append(cards, page.cards...)

		next = ""
		if page.hasMore {
			if !c.allPages {
				log.WithField("cards", len(cards)).Warn("more result pages available, only the first page was read")
				break
			}
			next = page.nextPage
		}
	}

	return cards, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	reader, err := getReader(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, statusError(resp.StatusCode, body)
	}

	return body, nil
}

// getReader undoes the Content-Encoding negotiated by Accept-Encoding
func getReader(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	}
	return resp.Body, nil
}

func statusError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Object == "error" && apiErr.Details != "" {
		return fmt.Errorf("%w: scryfall %d %s: %s", ErrNetwork, status, apiErr.Code, apiErr.Details)
	}
	return fmt.Errorf("%w: scryfall %d: %s", ErrNetwork, status, http.StatusText(status))
}

type parsedPage struct {
	cards    []card.Card
	hasMore  bool
	nextPage string
}

// parsePage decodes one search page. offset is the number of entries read
// on previous pages and only serves error messages.
func parsePage(body []byte, offset int) (*parsedPage, error) {
	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	data := bytes.TrimSpace(page.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: missing data array", ErrMalformedResponse)
	}

	var entries []cardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrMalformedResponse, err)
	}

	cards := make([]card.Card, 0, len(entries))
	for i, e := range entries {
		if e.Name == nil || *e.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrMalformedResponse, offset+i)
		}
		c, err := card.New(*e.Name, e.colorSource())
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedResponse, offset+i, err)
		}
		cards = append(cards, c)
	}

	if page.HasMore && page.NextPage == "" {
		return nil, fmt.Errorf("%w: has_more without next_page", ErrMalformedResponse)
	}

	return &parsedPage{cards: cards, hasMore: page.HasMore, nextPage: page.NextPage}, nil
}
