package football

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/dnscache"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/metrics"
)

const (
	headerAPIKey    = "x-apisports-key"
	maxResponseSize = 10 << 20

	endpointFixtures = "/fixtures"
	endpointTeams    = "/teams"
	endpointLeagues  = "/leagues"
)

// Client talks to an API-Football compatible data API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.Football, resolver *dnscache.Resolver) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: NewTransport(resolver),
		},
	}
}

// FixtureQuery selects fixtures. Exactly the non-zero fields are sent.
type FixtureQuery struct {
	ID     int
	Live   bool
	Filter MatchFilter
}

func (q FixtureQuery) values() url.Values {
	v := url.Values{}
	if q.ID > 0 {
		v.Set("id", strconv.Itoa(q.ID))
	}
	if q.Live {
		v.Set("live", "all")
	}
	if q.Filter.Date != "" {
		v.Set("date", q.Filter.Date)
	}
	if q.Filter.LeagueID > 0 {
		v.Set("league", strconv.Itoa(q.Filter.LeagueID))
	}
	if q.Filter.Season > 0 {
		v.Set("season", strconv.Itoa(q.Filter.Season))
	}
	if q.Filter.TeamID > 0 {
		v.Set("team", strconv.Itoa(q.Filter.TeamID))
	}
	return v
}

// TeamQuery looks a team up by id or searches by name.
type TeamQuery struct {
	ID     int
	Search string
}

func (c *Client) Fixtures(ctx context.Context, q FixtureQuery) ([]Match, error) {
	resp, err := c.get(ctx, endpointFixtures, q.values())
	if err != nil {
		return nil, err
	}
	items := resp.Array()
	out := make([]Match, 0, len(items))
	for _, item := range items {
		out = append(out, parseMatch(item))
	}
	return out, nil
}

func (c *Client) Teams(ctx context.Context, q TeamQuery) ([]Team, error) {
	params := url.Values{}
	if q.ID > 0 {
		params.Set("id", strconv.Itoa(q.ID))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	resp, err := c.get(ctx, endpointTeams, params)
	if err != nil {
		return nil, err
	}
	items := resp.Array()
	out := make([]Team, 0, len(items))
	for _, item := range items {
		out = append(out, parseTeam(item))
	}
	return out, nil
}

// Leagues returns leagues with a season in progress.
func (c *Client) Leagues(ctx context.Context) ([]League, error) {
	resp, err := c.get(ctx, endpointLeagues, url.Values{"current": {"true"}})
	if err != nil {
		return nil, err
	}
	items := resp.Array()
	out := make([]League, 0, len(items))
	for _, item := range items {
		out = append(out, parseLeague(item))
	}
	return out, nil
}

// get performs the request and returns the "response" array of the envelope.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (result gjson.Result, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamRequest(endpoint, err, time.Since(start).Seconds())
	}()

	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return result, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return result, fmt.Errorf("%w: read %s: %w", ErrUpstream, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zap.S().Warnw("football api returned non-2xx", "endpoint", endpoint, "status", resp.StatusCode)
		return result, fmt.Errorf("%w: %s: status %d", ErrUpstream, endpoint, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return result, fmt.Errorf("%w: %s: invalid json", ErrUpstream, endpoint)
	}

	// errors is [] on success and an object keyed by problem otherwise
	if apiErrs := gjson.GetBytes(body, "errors"); apiErrs.IsObject() && len(apiErrs.Map()) > 0 {
		return result, fmt.Errorf("%w: %s: %s", ErrUpstream, endpoint, apiErrs.Raw)
	}

	return gjson.GetBytes(body, "response"), nil
}

func parseMatch(item gjson.Result) Match {
	m := Match{
		ID:      int(item.Get("fixture.id").Int()),
		Referee: item.Get("fixture.referee").String(),
		Status: MatchStatus{
			Short:   item.Get("fixture.status.short").String(),
			Long:    item.Get("fixture.status.long").String(),
			Elapsed: int(item.Get("fixture.status.elapsed").Int()),
		},
		League: LeagueRef{
			ID:      int(item.Get("league.id").Int()),
			Name:    item.Get("league.name").String(),
			Country: item.Get("league.country").String(),
			Logo:    item.Get("league.logo").String(),
			Season:  int(item.Get("league.season").Int()),
			Round:   item.Get("league.round").String(),
		},
		Home:  parseTeamRef(item.Get("teams.home")),
		Away:  parseTeamRef(item.Get("teams.away")),
		Score: Score{Home: optInt(item.Get("goals.home")), Away: optInt(item.Get("goals.away"))},
		Venue: Venue{
			ID:   int(item.Get("fixture.venue.id").Int()),
			Name: item.Get("fixture.venue.name").String(),
			City: item.Get("fixture.venue.city").String(),
		},
	}
	if ts := item.Get("fixture.timestamp"); ts.Exists() {
		m.Kickoff = time.Unix(ts.Int(), 0).UTC()
	} else if t, err := time.Parse(time.RFC3339, item.Get("fixture.date").String()); err == nil {
		m.Kickoff = t.UTC()
	}
	return m
}

func parseTeamRef(item gjson.Result) TeamRef {
	ref := TeamRef{
		ID:   int(item.Get("id").Int()),
		Name: item.Get("name").String(),
		Logo: item.Get("logo").String(),
	}
	if w := item.Get("winner"); w.IsBool() {
		b := w.Bool()
		ref.Winner = &b
	}
	return ref
}

func parseTeam(item gjson.Result) Team {
	return Team{
		ID:       int(item.Get("team.id").Int()),
		Name:     item.Get("team.name").String(),
		Code:     item.Get("team.code").String(),
		Country:  item.Get("team.country").String(),
		Founded:  int(item.Get("team.founded").Int()),
		National: item.Get("team.national").Bool(),
		Logo:     item.Get("team.logo").String(),
		Venue: Venue{
			ID:       int(item.Get("venue.id").Int()),
			Name:     item.Get("venue.name").String(),
			City:     item.Get("venue.city").String(),
			Capacity: int(item.Get("venue.capacity").Int()),
		},
	}
}

func parseLeague(item gjson.Result) League {
	l := League{
		ID:          int(item.Get("league.id").Int()),
		Name:        item.Get("league.name").String(),
		Type:        item.Get("league.type").String(),
		Logo:        item.Get("league.logo").String(),
		Country:     item.Get("country.name").String(),
		CountryCode: item.Get("country.code").String(),
		Flag:        item.Get("country.flag").String(),
	}
	if season := item.Get(`seasons.#(current==true).year`); season.Exists() {
		l.CurrentSeason = int(season.Int())
	}
	return l
}

func optInt(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	v := int(r.Int())
	return &v
}
