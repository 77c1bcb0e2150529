package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/football"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/validate"
)

const (
	defaultMaxBodySize   = 1 << 20
	defaultGzipThreshold = 500
	healthTimeout        = time.Second
	dateLayout           = "2006-01-02"

	baseAPIPath     = "/api"
	healthPath      = baseAPIPath + "/health"
	matchesPath     = baseAPIPath + "/matches"
	liveMatchesPath = matchesPath + "/live"
	matchSearchPath = matchesPath + "/search"
	matchPath       = matchesPath + "/{id}"
	teamSearchPath  = baseAPIPath + "/teams/search"
	teamPath        = baseAPIPath + "/teams/{id}"
	leaguesPath     = baseAPIPath + "/leagues"
	contentTypeJSON = "application/json"
	statusOK        = "ok"
	statusDegraded  = "degraded"
)

// MatchService is the read side the API exposes. *football.Service implements it.
type MatchService interface {
	Matches(ctx context.Context, f football.MatchFilter) ([]football.Match, error)
	LiveMatches(ctx context.Context) ([]football.Match, error)
	Match(ctx context.Context, id int) (football.Match, error)
	Team(ctx context.Context, id int) (football.Team, error)
	SearchTeams(ctx context.Context, name string) ([]football.Team, error)
	Leagues(ctx context.Context) ([]football.League, error)
}

// Pinger reports store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	MaxBodySize   int64
	GzipThreshold int
}

type matchSearchRequest struct {
	Date     string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LeagueID int    `json:"leagueId,omitempty" validate:"omitempty,gt=0"`
	TeamID   int    `json:"teamId,omitempty" validate:"omitempty,gt=0"`
	Season   int    `json:"season,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Live     bool   `json:"live,omitempty"`
}

type teamSearchRequest struct {
	Name string `json:"name" validate:"required,min=3,max=50"`
}

var (
	matchSearchSchema = validate.NewSchema[matchSearchRequest]("match_search")
	teamSearchSchema  = validate.NewSchema[teamSearchRequest]("team_search")
)

// NewRouter returns the API handler with every endpoint registered.
func NewRouter(svc MatchService, store Pinger, opts Options) http.Handler {
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaultMaxBodySize
	}
	if opts.GzipThreshold <= 0 {
		opts.GzipThreshold = defaultGzipThreshold
	}

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(observe)
	r.Use(recovery)
	r.Use(limitBody(opts.MaxBodySize))
	r.Use(compressGzip(opts.GzipThreshold))

	r.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		handleHealth(w, r, store)
	})

	r.Get(matchesPath, func(w http.ResponseWriter, r *http.Request) {
		handleMatches(w, r, svc)
	})
	r.Get(liveMatchesPath, func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, "live matches", func(ctx context.Context) (any, error) {
			return svc.LiveMatches(ctx)
		})
	})
	r.Post(matchSearchPath, validate.Handler(matchSearchSchema,
		func(w http.ResponseWriter, r *http.Request, body matchSearchRequest) {
			handleMatchSearch(w, r, svc, body)
		}))
	r.Get(matchPath, func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respond(w, r, "match", func(ctx context.Context) (any, error) {
			return svc.Match(ctx, id)
		})
	})

	r.Post(teamSearchPath, validate.Handler(teamSearchSchema,
		func(w http.ResponseWriter, r *http.Request, body teamSearchRequest) {
			respond(w, r, "team search", func(ctx context.Context) (any, error) {
				return svc.SearchTeams(ctx, body.Name)
			})
		}))
	r.Get(teamPath, func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respond(w, r, "team", func(ctx context.Context) (any, error) {
			return svc.Team(ctx, id)
		})
	})

	r.Get(leaguesPath, func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, "leagues", func(ctx context.Context) (any, error) {
			return svc.Leagues(ctx)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// NewMetricRouter serves Prometheus metrics on a separate listener.
func NewMetricRouter() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request, store Pinger) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := statusOK
	if err := store.Ping(ctx); err != nil {
		zap.S().Warnw("store ping failed", "error", err)
		status = statusDegraded
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func handleMatches(w http.ResponseWriter, r *http.Request, svc MatchService) {
	q := r.URL.Query()
	var f football.MatchFilter

	if date := q.Get("date"); date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		f.Date = date
	}
	// checked in a fixed order so the reported parameter is stable
	params := []struct {
		name string
		dst  *int
	}{
		{"league", &f.LeagueID},
		{"season", &f.Season},
		{"team", &f.TeamID},
	}
	for _, p := range params {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, p.name+" must be a positive integer")
			return
		}
		*p.dst = n
	}

	respond(w, r, "matches", func(ctx context.Context) (any, error) {
		return svc.Matches(ctx, f)
	})
}

func handleMatchSearch(w http.ResponseWriter, r *http.Request, svc MatchService, body matchSearchRequest) {
	if body.Live {
		respond(w, r, "live matches", func(ctx context.Context) (any, error) {
			return svc.LiveMatches(ctx)
		})
		return
	}
	f := football.MatchFilter{
		Date:     body.Date,
		LeagueID: body.LeagueID,
		Season:   body.Season,
		TeamID:   body.TeamID,
	}
	respond(w, r, "matches", func(ctx context.Context) (any, error) {
		return svc.Matches(ctx, f)
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// respond runs fetch and writes its result, mapping domain errors to statuses.
func respond(w http.ResponseWriter, r *http.Request, what string, fetch func(ctx context.Context) (any, error)) {
	v, err := fetch(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, football.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, football.ErrUpstream):
		writeError(w, http.StatusBadGateway, "football data provider unavailable")
	case errors.Is(err, context.Canceled):
		// client went away, nothing to write
	default:
		zap.S().Errorw(alert.Prefix("request failed"), "what", what, "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw(alert.Prefix("encode error"), "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
