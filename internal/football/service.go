package football

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"telegram-alerts-go/alert"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
)

const dateLayout = "2006-01-02"

// Upstream is the slow source behind the cache. *Client implements it.
type Upstream interface {
	Fixtures(ctx context.Context, q FixtureQuery) ([]Match, error)
	Teams(ctx context.Context, q TeamQuery) ([]Team, error)
	Leagues(ctx context.Context) ([]League, error)
}

// Service serves match discovery reads, consulting the cache before the upstream.
// Cache failures never fail a request: the service logs them and uses the upstream.
type Service struct {
	upstream Upstream
	ttl      config.TTL
	now      func() time.Time

	matches *cache.Accessor[[]Match]
	match   *cache.Accessor[Match]
	teams   *cache.Accessor[[]Team]
	team    *cache.Accessor[Team]
	leagues *cache.Accessor[[]League]

	group singleflight.Group
}

// NewService wires one accessor per value shape over the shared store.
// opts (prefix, timeout) apply to every accessor.
func NewService(store cache.Store, upstream Upstream, ttl config.TTL, opts ...cache.Option) *Service {
	with := func(name string) []cache.Option {
		return append(append([]cache.Option{}, opts...), cache.WithName(name))
	}
	return &Service{
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
		matches:  cache.NewAccessor[[]Match](store, with("matches")...),
		match:    cache.NewAccessor[Match](store, with("match")...),
		teams:    cache.NewAccessor[[]Team](store, with("teams")...),
		team:     cache.NewAccessor[Team](store, with("team")...),
		leagues:  cache.NewAccessor[[]League](store, with("leagues")...),
	}
}

// Matches lists fixtures for the filter. Without a date, league or team the
// current UTC day is used.
func (s *Service) Matches(ctx context.Context, f MatchFilter) ([]Match, error) {
	if f.Date == "" && f.LeagueID == 0 && f.TeamID == 0 {
		f.Date = s.now().UTC().Format(dateLayout)
	}
	key := fmt.Sprintf("matches:date=%s:league=%d:season=%d:team=%d", f.Date, f.LeagueID, f.Season, f.TeamID)
	return readThrough(ctx, s, s.matches, key, s.ttl.Fixtures, func(ctx context.Context) ([]Match, error) {
		return s.upstream.Fixtures(ctx, FixtureQuery{Filter: f})
	})
}

func (s *Service) LiveMatches(ctx context.Context) ([]Match, error) {
	return readThrough(ctx, s, s.matches, "matches:live", s.ttl.Live, func(ctx context.Context) ([]Match, error) {
		return s.upstream.Fixtures(ctx, FixtureQuery{Live: true})
	})
}

func (s *Service) Match(ctx context.Context, id int) (Match, error) {
	key := "match:" + strconv.Itoa(id)
	return readThrough(ctx, s, s.match, key, s.ttl.Match, func(ctx context.Context) (Match, error) {
		found, err := s.upstream.Fixtures(ctx, FixtureQuery{ID: id})
		if err != nil {
			return Match{}, err
		}
		if len(found) == 0 {
			return Match{}, ErrNotFound
		}
		return found[0], nil
	})
}

func (s *Service) Team(ctx context.Context, id int) (Team, error) {
	key := "team:" + strconv.Itoa(id)
	return readThrough(ctx, s, s.team, key, s.ttl.Teams, func(ctx context.Context) (Team, error) {
		found, err := s.upstream.Teams(ctx, TeamQuery{ID: id})
		if err != nil {
			return Team{}, err
		}
		if len(found) == 0 {
			return Team{}, ErrNotFound
		}
		return found[0], nil
	})
}

// SearchTeams matches teams by name, case-insensitively.
func (s *Service) SearchTeams(ctx context.Context, name string) ([]Team, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	key := "teams:search=" + name
	return readThrough(ctx, s, s.teams, key, s.ttl.Teams, func(ctx context.Context) ([]Team, error) {
		return s.upstream.Teams(ctx, TeamQuery{Search: name})
	})
}

func (s *Service) Leagues(ctx context.Context) ([]League, error) {
	return readThrough(ctx, s, s.leagues, "leagues:current", s.ttl.Leagues, s.upstream.Leagues)
}

// readThrough returns the cached value for key or loads, caches and returns it.
// Concurrent misses on the same key share a single load.
func readThrough[T any](ctx context.Context, s *Service, a *cache.Accessor[T], key string, ttl time.Duration,
	load func(ctx context.Context) (T, error)) (T, error) {

	cached, ok, err := a.Get(ctx, key)
	switch {
	case err != nil:
		zap.S().Warnw("cache read failed, serving uncached", "key", key, "error", err)
	case ok:
		return cached, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		// the load outlives the first caller so waiters are not cancelled with it
		loadCtx := context.WithoutCancel(ctx)
		value, err := load(loadCtx)
		if err != nil {
			return value, err
		}
		if err := a.Set(loadCtx, key, value, ttl); err != nil {
			zap.S().Warnw("cache write failed", "key", key, "error", err)
		}
		return value, nil
	})
	if err != nil {
		var zero T
		if !errors.Is(err, ErrNotFound) {
			zap.S().Errorw(alert.Prefix("football upstream failed"), "key", key, "shared", shared, "error", err)
		}
		return zero, err
	}
	return v.(T), nil
}
