package scryfall

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/arcanaland/setcolors/internal/card"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	return NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second, Logger: logger})
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestSearchCards(t *testing.T) {
	var gotQuery, gotUA, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		jsonHandler(http.StatusOK, `{
			"object": "list",
			"total_cards": 4,
			"has_more": false,
			"data": [
				{"name": "Foo", "colors": ["U"], "color_identity": ["U", "W"]},
				{"name": "Bar", "colors": []},
				{"name": "Fable of the Mirror-Breaker // Reflection of Kiki-Jiki", "colors": null, "color_identity": ["R"]},
				{"name": "Wedding Announcement", "color_identity": ["W", "B"]},
				{"name": "Ornithopter"}
			]
		}`)(w, r)
	})

	cards, err := c.SearchCards(context.Background(), "NEO", card.Rare)
	require.NoError(t, err)

	assert.Equal(t, "/cards/search", gotPath)
	assert.Equal(t, "set:NEO r:R is:booster", gotQuery)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, []card.Card{
		{Name: "Foo", Color: 'U'},
		{Name: "Bar", Color: 'C'},
		{Name: "Fable of the Mirror-Breaker // Reflection of Kiki-Jiki", Color: 'R'},
		{Name: "Wedding Announcement", Color: 'M'},
		{Name: "Ornithopter", Color: 'C'},
	}, cards)
}

func TestSearchCardsMalformed(t *testing.T) {
	bodies := map[string]string{
		"invalid json":     `{"data": [`,
		"missing data":     `{"object": "list"}`,
		"null data":        `{"object": "list", "data": null}`,
		"data not array":   `{"object": "list", "data": {"name": "Foo"}}`,
		"top level array":  `[{"name": "Foo"}]`,
		"missing name":     `{"data": [{"name": "Foo", "colors": []}, {"colors": ["U"]}]}`,
		"empty color":      `{"data": [{"name": "Foo", "colors": [""]}]}`,
		"colors not array": `{"data": [{"name": "Foo", "colors": "U"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, jsonHandler(http.StatusOK, body))
			cards, err := c.SearchCards(context.Background(), "NEO", card.Mythic)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, cards)
		})
	}
}

func TestSearchCardsMissingNameNamesEntry(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusOK, `{"data": [{"name": "Foo"}, {"colors": ["U"]}]}`))
	_, err := c.SearchCards(context.Background(), "NEO", card.Mythic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestSearchCardsNetworkErrors(t *testing.T) {
	t.Run("scryfall error object", func(t *testing.T) {
		c := newTestClient(t, jsonHandler(http.StatusNotFound, `{
			"object": "error", "code": "not_found", "status": 404,
			"details": "Your query didn't match any cards."
		}`))
		_, err := c.SearchCards(context.Background(), "NEO", card.Mythic)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "didn't match any cards")
	})

	t.Run("plain server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := c.SearchCards(context.Background(), "NEO", card.Mythic)
		assert.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		logger, _ := test.NewNullLogger()
		c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, Logger: logger})
		_, err := c.SearchCards(context.Background(), "NEO", card.Mythic)
		assert.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)

		logger, _ := test.NewNullLogger()
		c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Logger: logger})
		_, err := c.SearchCards(context.Background(), "NEO", card.Mythic)
		assert.ErrorIs(t, err, ErrNetwork)
	})
}

func TestSearchCardsCompressed(t *testing.T) {
	body := `{"data": [{"name": "Foo", "colors": ["G"]}]}`

	t.Run("brotli", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
			w.Header().Set("Content-Encoding", "br")
			bw := brotli.NewWriter(w)
			io.WriteString(bw, body)
			bw.Close()
		})
		cards, err := c.SearchCards(context.Background(), "NEO", card.Common)
		require.NoError(t, err)
		assert.Equal(t, []card.Card{{Name: "Foo", Color: 'G'}}, cards)
	})

	t.Run("gzip", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			gw := gzip.NewWriter(w)
			io.WriteString(gw, body)
			gw.Close()
		})
		cards, err := c.SearchCards(context.Background(), "NEO", card.Common)
		require.NoError(t, err)
		assert.Equal(t, []card.Card{{Name: "Foo", Color: 'G'}}, cards)
	})
}

func TestSearchCardsPagination(t *testing.T) {
	var hits atomic.Int32
	var srvURL string
	handler := func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("page") == "2" {
			io.WriteString(w, `{"has_more": false, "data": [{"name": "Second", "colors": ["B"]}]}`)
			return
		}
		fmt.Fprintf(w, `{"has_more": true, "next_page": "%s/cards/search?page=2", "data": [{"name": "First", "colors": ["W"]}]}`, srvURL)
	}

	t.Run("first page only by default", func(t *testing.T) {
		hits.Store(0)
		srv := httptest.NewServer(http.HandlerFunc(handler))
		defer srv.Close()
		srvURL = srv.URL

		logger, hook := test.NewNullLogger()
		c := NewClient(Config{BaseURL: srv.URL, Logger: logger})
		cards, err := c.SearchCards(context.Background(), "NEO", card.Common)
		require.NoError(t, err)

		assert.Equal(t, []card.Card{{Name: "First", Color: 'W'}}, cards)
		assert.Equal(t, int32(1), hits.Load())
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})

	t.Run("all pages", func(t *testing.T) {
		hits.Store(0)
		srv := httptest.NewServer(http.HandlerFunc(handler))
		defer srv.Close()
		srvURL = srv.URL

		logger, _ := test.NewNullLogger()
		c := NewClient(Config{BaseURL: srv.URL, AllPages: true, Logger: logger})
		cards, err := c.SearchCards(context.Background(), "NEO", card.Common)
		require.NoError(t, err)

		assert.Equal(t, []card.Card{{Name: "First", Color: 'W'}, {Name: "Second", Color: 'B'}}, cards)
		assert.Equal(t, int32(2), hits.Load())
	})
}

func TestSearchURL(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.test/"})
	assert.Equal(t, "https://example.test/cards/search?q=set%3Admu+r%3AM+is%3Abooster", c.SearchURL("dmu", card.Mythic))
}

func TestRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"data": []}`)
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	c := NewClient(Config{BaseURL: srv.URL, RateLimit: 20, Logger: logger})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.SearchCards(context.Background(), "NEO", card.Common)
		require.NoError(t, err)
	}

	// burst of one: the second and third requests wait 50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), hits.Load())
}
