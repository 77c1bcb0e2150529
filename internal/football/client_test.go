package football

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/dnscache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.Football{BaseURL: srv.URL, APIKey: "test-key", Timeout: time.Second}, &dnscache.Resolver{})
}

func serveFile(t *testing.T, name string) http.HandlerFunc {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}

func TestClient_Fixtures(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	data := serveFile(t, "fixtures.json")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotKey = r.URL.Path, r.URL.RawQuery, r.Header.Get(headerAPIKey)
		data(w, r)
	})

	matches, err := c.Fixtures(context.Background(), FixtureQuery{Filter: MatchFilter{Date: "2024-05-19", LeagueID: 39}})
	require.NoError(t, err)

	assert.Equal(t, "/fixtures", gotPath)
	assert.Equal(t, "date=2024-05-19&league=39", gotQuery)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, matches, 2)
	first := matches[0]
	assert.Equal(t, 1035551, first.ID)
	assert.Equal(t, "Anthony Taylor", first.Referee)
	assert.Equal(t, time.Date(2024, 5, 19, 15, 0, 0, 0, time.UTC), first.Kickoff)
	assert.Equal(t, MatchStatus{Short: "FT", Long: "Match Finished", Elapsed: 90}, first.Status)
	assert.Equal(t, "Premier League", first.League.Name)
	assert.Equal(t, 2023, first.League.Season)
	assert.Equal(t, "Arsenal", first.Home.Name)
	require.NotNil(t, first.Home.Winner)
	assert.True(t, *first.Home.Winner)
	require.NotNil(t, first.Score.Home)
	assert.Equal(t, 2, *first.Score.Home)
	assert.Equal(t, 1, *first.Score.Away)
	assert.Equal(t, "Emirates Stadium", first.Venue.Name)
	assert.False(t, first.IsLive())

	second := matches[1]
	// no timestamp, falls back to the RFC 3339 date
	assert.Equal(t, time.Date(2024, 5, 19, 19, 0, 0, 0, time.UTC), second.Kickoff)
	assert.Nil(t, second.Score.Home)
	assert.Nil(t, second.Home.Winner)
	assert.Empty(t, second.Referee)
}

func TestClient_LiveQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"errors":[],"response":[]}`))
	})

	matches, err := c.Fixtures(context.Background(), FixtureQuery{Live: true})
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, "live=all", gotQuery)
}

func TestClient_Teams(t *testing.T) {
	c := newTestClient(t, serveFile(t, "teams.json"))

	teams, err := c.Teams(context.Background(), TeamQuery{ID: 42})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, Team{
		ID: 42, Name: "Arsenal", Code: "ARS", Country: "England", Founded: 1886,
		Logo:  "https://media.example/teams/42.png",
		Venue: Venue{ID: 494, Name: "Emirates Stadium", City: "London", Capacity: 60383},
	}, teams[0])
}

func TestClient_Leagues(t *testing.T) {
	var gotQuery string
	data := serveFile(t, "leagues.json")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		data(w, r)
	})

	leagues, err := c.Leagues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current=true", gotQuery)
	require.Len(t, leagues, 1)
	assert.Equal(t, "England", leagues[0].Country)
	assert.Equal(t, "GB", leagues[0].CountryCode)
	assert.Equal(t, 2023, leagues[0].CurrentSeason)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusBadGateway, `{}`, "status 502"},
		{"api errors object", http.StatusOK, `{"errors":{"token":"Missing application key"},"response":[]}`, "Missing application key"},
		{"invalid json", http.StatusOK, `<html>`, "invalid json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Fixtures(context.Background(), FixtureQuery{ID: 1})
			assert.ErrorIs(t, err, ErrUpstream)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient(config.Football{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, nil)
	_, err := c.Leagues(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
