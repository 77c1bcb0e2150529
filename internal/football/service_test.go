package football

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache/providers"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
)

type fakeUpstream struct {
	mu       sync.Mutex
	fixtures map[string][]Match
	teams    []Team
	leagues  []League
	err      error
	delay    time.Duration
	calls    atomic.Int32
	queries  []FixtureQuery
}

func (f *fakeUpstream) Fixtures(ctx context.Context, q FixtureQuery) ([]Match, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	switch {
	case q.ID > 0:
		for _, ms := range f.fixtures {
			for _, m := range ms {
				if m.ID == q.ID {
					return []Match{m}, nil
				}
			}
		}
		return nil, nil
	case q.Live:
		return f.fixtures["live"], nil
	default:
		return f.fixtures[q.Filter.Date], nil
	}
}

func (f *fakeUpstream) Teams(ctx context.Context, q TeamQuery) ([]Team, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []Team
	for _, t := range f.teams {
		if q.ID == t.ID || (q.Search != "" && q.Search == "arsenal" && t.Name == "Arsenal") {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeUpstream) Leagues(ctx context.Context) ([]League, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.leagues, nil
}

var testTTL = config.TTL{
	Live:     30 * time.Second,
	Fixtures: 5 * time.Minute,
	Match:    time.Minute,
	Teams:    24 * time.Hour,
	Leagues:  24 * time.Hour,
}

func setupService(t *testing.T, up *fakeUpstream) (*Service, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	store, err := providers.NewRedis(context.Background(), config.Store{
		URL:     fmt.Sprintf("redis://%s/0", srv.Addr()),
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store, up, testTTL, cache.WithPrefix("gz:"))
	svc.now = func() time.Time { return time.Date(2024, 5, 19, 12, 0, 0, 0, time.UTC) }
	return svc, srv
}

func sampleUpstream() *fakeUpstream {
	return &fakeUpstream{
		fixtures: map[string][]Match{
			"2024-05-19": {
				{ID: 1, Home: TeamRef{ID: 42, Name: "Arsenal"}, Away: TeamRef{ID: 45, Name: "Everton"}, Status: MatchStatus{Short: "FT"}},
				{ID: 2, Home: TeamRef{ID: 33, Name: "Manchester United"}, Status: MatchStatus{Short: "NS"}},
			},
			"live": {
				{ID: 3, Status: MatchStatus{Short: "2H", Elapsed: 67}},
			},
		},
		teams:   []Team{{ID: 42, Name: "Arsenal", Country: "England"}},
		leagues: []League{{ID: 39, Name: "Premier League", CurrentSeason: 2023}},
	}
}

func TestService_MatchesReadThrough(t *testing.T) {
	up := sampleUpstream()
	svc, srv := setupService(t, up)
	ctx := context.Background()

	first, err := svc.Matches(ctx, MatchFilter{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "2024-05-19", up.queries[0].Filter.Date)

	second, err := svc.Matches(ctx, MatchFilter{Date: "2024-05-19"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, up.calls.Load())

	key := "gz:matches:date=2024-05-19:league=0:season=0:team=0"
	assert.True(t, srv.Exists(key))
	assert.Equal(t, testTTL.Fixtures, srv.TTL(key))
}

func TestService_LiveMatchesExpire(t *testing.T) {
	up := sampleUpstream()
	svc, srv := setupService(t, up)
	ctx := context.Background()

	live, err := svc.LiveMatches(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.True(t, live[0].IsLive())

	_, err = svc.LiveMatches(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, up.calls.Load())

	srv.FastForward(testTTL.Live + time.Second)
	_, err = svc.LiveMatches(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, up.calls.Load())
}

func TestService_MatchNotFoundIsNotCached(t *testing.T) {
	up := sampleUpstream()
	svc, srv := setupService(t, up)

	_, err := svc.Match(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, srv.Exists("gz:match:999"))

	m, err := svc.Match(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", m.Home.Name)
	assert.Equal(t, testTTL.Match, srv.TTL("gz:match:1"))
}

func TestService_TeamAndSearch(t *testing.T) {
	up := sampleUpstream()
	svc, _ := setupService(t, up)
	ctx := context.Background()

	team, err := svc.Team(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", team.Name)

	_, err = svc.Team(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := svc.SearchTeams(ctx, "  ARSENAL ")
	require.NoError(t, err)
	require.Len(t, found, 1)

	again, err := svc.SearchTeams(ctx, "arsenal")
	require.NoError(t, err)
	assert.Equal(t, found, again)
	assert.EqualValues(t, 3, up.calls.Load())
}

func TestService_Leagues(t *testing.T) {
	up := sampleUpstream()
	svc, srv := setupService(t, up)

	leagues, err := svc.Leagues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, up.leagues, leagues)
	assert.Equal(t, testTTL.Leagues, srv.TTL("gz:leagues:current"))
}

func TestService_CorruptEntryRefetched(t *testing.T) {
	up := sampleUpstream()
	svc, srv := setupService(t, up)
	require.NoError(t, srv.Set("gz:leagues:current", "{oops"))

	leagues, err := svc.Leagues(context.Background())
	require.NoError(t, err)
	assert.Len(t, leagues, 1)
	assert.EqualValues(t, 1, up.calls.Load())

	raw, err := srv.Get("gz:leagues:current")
	require.NoError(t, err)
	assert.Contains(t, raw, "Premier League")
}

func TestService_StoreDownFallsBackToUpstream(t *testing.T) {
	up := sampleUpstream()
	svc, srv := setupService(t, up)
	srv.Close()

	leagues, err := svc.Leagues(context.Background())
	require.NoError(t, err)
	assert.Len(t, leagues, 1)

	_, err = svc.Leagues(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, up.calls.Load())
}

func TestService_UpstreamErrorPropagates(t *testing.T) {
	up := sampleUpstream()
	up.err = fmt.Errorf("%w: status 500", ErrUpstream)
	svc, srv := setupService(t, up)

	_, err := svc.LiveMatches(context.Background())
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, srv.Exists("gz:matches:live"))
}

func TestService_ConcurrentMissesShareOneLoad(t *testing.T) {
	up := sampleUpstream()
	up.delay = 100 * time.Millisecond
	svc, _ := setupService(t, up)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			live, err := svc.LiveMatches(context.Background())
			assert.NoError(t, err)
			assert.Len(t, live, 1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, up.calls.Load())
}
