package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"gamezone"}, args...))
	return out.String(), err
}

func TestCacheSetGet(t *testing.T) {
	srv := miniredis.RunT(t)
	url := "redis://" + srv.Addr() + "/0"

	out, err := run(t, "--redis-url", url, "cache", "set", "--ttl", "30s", "team:42", `{"id":42,"name":"Arsenal"}`)
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
	assert.True(t, srv.Exists("gamezone:team:42"))
	assert.Positive(t, srv.TTL("gamezone:team:42"))

	out, err = run(t, "--redis-url", url, "cache", "get", "team:42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"name":"Arsenal"}`, out)
}

func TestCacheGetMiss(t *testing.T) {
	srv := miniredis.RunT(t)
	_, err := run(t, "--redis-url", "redis://"+srv.Addr()+"/0", "cache", "get", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "miss")
}

func TestCacheSetInvalidJSON(t *testing.T) {
	_, err := run(t, "cache", "set", "k", "{not json")
	require.Error(t, err)
}

func TestCachePing(t *testing.T) {
	srv := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+srv.Addr()+"/0")

	out, err := run(t, "cache", "ping")
	require.NoError(t, err)
	assert.Equal(t, "PONG\n", out)
}

func TestListMatches(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/matches", r.URL.Path)
		assert.Equal(t, "2024-05-19", r.URL.Query().Get("date"))
		assert.Equal(t, "39", r.URL.Query().Get("league"))
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer api.Close()

	out, err := run(t, "matches", "--addr", api.URL, "--date", "2024-05-19", "--league", "39")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, out)
}

func TestListMatchesError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"football data provider unavailable"}`, http.StatusBadGateway)
	}))
	defer api.Close()

	_, err := run(t, "matches", "--addr", api.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
