package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache/providers"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
)

const (
	flagRedisURL = "redis-url"
	flagPrefix   = "prefix"
	flagTimeout  = "timeout"
	flagTTL      = "ttl"
	flagAddr     = "addr"
	flagDate     = "date"
	flagLeague   = "league"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	defaults := config.Default()

	return &cli.Command{
		Name:  "gamezone",
		Usage: "operate the GameZone cache and API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagRedisURL,
				Usage:   "Redis connection URL",
				Value:   config.DefaultRedisURL,
				Sources: cli.EnvVars(config.EnvRedisURL),
			},
			&cli.StringFlag{
				Name:  flagPrefix,
				Usage: "key prefix shared with the server",
				Value: defaults.Store.Prefix,
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "per-operation store timeout",
				Value: defaults.Store.Timeout,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "cache",
				Usage: "read and write cache entries",
				Commands: []*cli.Command{
					{
						Name:      "get",
						Usage:     "print the JSON stored under a key",
						ArgsUsage: "<key>",
						Action:    cacheGet,
					},
					{
						Name:      "set",
						Usage:     "store a JSON value under a key",
						ArgsUsage: "<key> <json>",
						Flags: []cli.Flag{
							&cli.DurationFlag{Name: flagTTL, Usage: "expiration", Value: time.Minute},
						},
						Action: cacheSet,
					},
					{
						Name:   "ping",
						Usage:  "check the store is reachable",
						Action: cachePing,
					},
				},
			},
			{
				Name:  "matches",
				Usage: "list matches through a running API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagAddr, Usage: "API base URL", Value: "http://localhost:8080"},
					&cli.StringFlag{Name: flagDate, Usage: "match date, YYYY-MM-DD"},
					&cli.IntFlag{Name: flagLeague, Usage: "league id"},
				},
				Action: listMatches,
			},
		},
	}
}

func openAccessor(ctx context.Context, cmd *cli.Command) (*cache.Accessor[json.RawMessage], func(), error) {
	store, err := providers.NewRedis(ctx, config.Store{
		Type:    config.StoreTypeRedis,
		URL:     cmd.String(flagRedisURL),
		Timeout: cmd.Duration(flagTimeout),
	})
	if err != nil {
		return nil, nil, err
	}
	acc := cache.NewAccessor[json.RawMessage](store,
		cache.WithName("cli"),
		cache.WithPrefix(cmd.String(flagPrefix)),
		cache.WithTimeout(cmd.Duration(flagTimeout)))
	return acc, func() { _ = store.Close() }, nil
}

func cacheGet(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: cache get <key>")
	}
	acc, closeFn, err := openAccessor(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	v, ok, err := acc.Get(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %q: miss", cmd.Args().First())
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, string(v))
	return err
}

func cacheSet(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("usage: cache set <key> <json>")
	}
	raw := cmd.Args().Get(1)
	if !json.Valid([]byte(raw)) {
		return fmt.Errorf("value is not valid JSON")
	}
	acc, closeFn, err := openAccessor(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := acc.Set(ctx, cmd.Args().First(), json.RawMessage(raw), cmd.Duration(flagTTL)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, "OK")
	return err
}

func cachePing(ctx context.Context, cmd *cli.Command) error {
	_, closeFn, err := openAccessor(ctx, cmd)
	if err != nil {
		return err
	}
	closeFn()
	_, err = fmt.Fprintln(cmd.Root().Writer, "PONG")
	return err
}

func listMatches(ctx context.Context, cmd *cli.Command) error {
	q := url.Values{}
	if d := cmd.String(flagDate); d != "" {
		q.Set("date", d)
	}
	if l := cmd.Int(flagLeague); l > 0 {
		q.Set("league", fmt.Sprint(l))
	}
	endpoint := strings.TrimRight(cmd.String(flagAddr), "/") + "/api/matches"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	_, err = cmd.Root().Writer.Write(body)
	return err
}
