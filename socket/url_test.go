package socket

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentwire/protocol"
)

func strPtr(s string) *string { return &s }

func TestDeriveURL_SchemeUpgrade(t *testing.T) {
	cases := map[string]string{
		"https://api.example.com/v1": "wss://api.example.com/v1/responses/ws",
		"http://localhost:8080":      "ws://localhost:8080/responses/ws",
		"wss://api.example.com/v1":   "wss://api.example.com/v1/responses/ws",
		"ws://localhost:8080/v1":     "ws://localhost:8080/v1/responses/ws",
	}
	for base, want := range cases {
		got, err := DeriveURL(base, nil, nil)
		require.NoError(t, err, base)
		assert.Equal(t, want, got, base)
	}
}

func TestDeriveURL_SuffixIdempotent(t *testing.T) {
	for _, base := range []string{
		"https://api.example.com/v1/responses/ws",
		"https://api.example.com/v1/responses/ws/",
		"https://api.example.com/v1/",
	} {
		got, err := DeriveURL(base, nil, nil)
		require.NoError(t, err, base)
		assert.Equal(t, "wss://api.example.com/v1/responses/ws", got, base)
	}
}

func TestDeriveURL_UnsupportedScheme(t *testing.T) {
	_, err := DeriveURL("ftp://api.example.com", nil, nil)
	require.Error(t, err)

	var uerr *protocol.UserError
	assert.ErrorAs(t, err, &uerr)
}

func TestDeriveURL_QueryLayers(t *testing.T) {
	got, err := DeriveURL(
		"https://api.example.com/v1?beta=true&tier=base",
		map[string]any{"api-version": "2025-04", "tier": "default"},
		map[string]any{"tier": "priority"},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"wss://api.example.com/v1/responses/ws?api-version=2025-04&beta=true&tier=priority",
		got)
}

func TestDeriveURL_BracketEncoding(t *testing.T) {
	got, err := DeriveURL("https://api.example.com", nil, map[string]any{
		"filter": map[string]any{"kind": "stream"},
		"tags":   []any{"a", "b"},
		"gone":   nil,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"wss://api.example.com/responses/ws?filter%5Bkind%5D=stream&tags%5B%5D=a&tags%5B%5D=b",
		got)
}

func TestQueryPairs(t *testing.T) {
	pairs := QueryPairs(map[string]any{
		"filter": map[string]any{"kind": "stream"},
		"tags":   []any{"b", "a"},
		"plain":  1,
		"gone":   nil,
	})
	assert.Equal(t, [][2]string{
		{"filter[kind]", "stream"},
		{"plain", "1"},
		{"tags[]", "a"},
		{"tags[]", "b"},
	}, pairs)
}

func TestMergeHeaders(t *testing.T) {
	defaults := HeaderLayer{
		"Authorization": strPtr("Bearer default"),
		"X-Trace":       strPtr("on"),
	}
	perRequest := HeaderLayer{
		"authorization": strPtr("Bearer override"),
		"X-Trace":       nil, // unset
	}
	headers := MergeHeaders(defaults, perRequest)

	assert.Equal(t, "Bearer override", headers.Get("Authorization"))
	assert.Empty(t, headers.Get("X-Trace"))
}

func TestMergeHeaders_LaterLayerResets(t *testing.T) {
	headers := MergeHeaders(
		HeaderLayer{"X-Feature": strPtr("a")},
		HeaderLayer{"X-Feature": nil},
		HeaderLayer{"X-Feature": strPtr("b")},
	)
	assert.Equal(t, "b", headers.Get("X-Feature"))
}

func TestIdentity(t *testing.T) {
	h1 := http.Header{}
	h1.Set("Authorization", "Bearer a")
	h2 := http.Header{}
	h2.Set("Authorization", "Bearer b")

	url := "wss://api.example.com/responses/ws"
	assert.Equal(t, Identity(url, h1), Identity(url, h1))
	assert.NotEqual(t, Identity(url, h1), Identity(url, h2))
	assert.NotEqual(t, Identity(url, h1), Identity(url+"?x=1", h1))
}
