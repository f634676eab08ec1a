package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestSearch_BoundsResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gaming laptop", req.Query)

		var resp searchResponse
		for i := 0; i < 12; i++ {
			resp.Results = append(resp.Results, Suggestion{Name: fmt.Sprintf("item-%d", i), Category: "laptops"})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	got := c.Search(context.Background(), "gaming laptop")
	require.Len(t, got, MaxResults)
	assert.Equal(t, "item-0", got[0].Name)
}

func TestSearch_FailureDegradesToEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	got := c.Search(context.Background(), "phone")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_MalformedBodyDegradesToEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	})

	assert.Empty(t, c.Search(context.Background(), "phone"))
}

func TestSearch_NilClient(t *testing.T) {
	c, err := NewClient("", time.Second, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, c)
	assert.Empty(t, c.Search(context.Background(), "anything"))
}
