package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/gaccwx/psafire/internal/api"
	"github.com/gaccwx/psafire/internal/fems"
	"github.com/gaccwx/psafire/internal/fetch"
	"github.com/gaccwx/psafire/internal/registry"
	"github.com/gaccwx/psafire/internal/store"
)

type Globals struct {
	APIKey   string `env:"FEMS_API_KEY" help:"FEMS API key."`
	Username string `env:"FEMS_USERNAME" help:"FEMS user email."`
	BaseURL  string `env:"FEMS_BASE_URL" help:"FEMS endpoint override."`
	Registry string `env:"PSAFIRE_REGISTRY" default:"gacc_config.json" help:"Zone registry file."`
	Baseline string `env:"PSAFIRE_BASELINE" default:"gacc_climo_baseline.json" help:"Climatology baseline file."`
	Snapshot string `env:"PSAFIRE_SNAPSHOT" default:"gacc_data.json" help:"Snapshot artifact path."`
}

// fetcher wires the shared components for both commands. Credentials are
// passed by value into the client; nothing holds mutable process-wide state.
func (g *Globals) fetcher() (*fetch.Fetcher, *store.Store, error) {
	reg, err := registry.Load(g.Registry)
	if err != nil {
		return nil, nil, err
	}
	client := fems.NewClient(g.BaseURL, fems.Credentials{APIKey: g.APIKey, Username: g.Username})
	st := store.New(g.Snapshot)
	return fetch.New(client, reg, g.Baseline, st), st, nil
}

type FetchCmd struct {
	Region string   `default:"Great Basin" help:"Region (GACC) to fetch."`
	Zones  []string `help:"Restrict to specific zone ids."`
}

func (c *FetchCmd) Run(g *Globals) error {
	fetcher, _, err := g.fetcher()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	snap, err := fetcher.FetchRegion(ctx, c.Region, c.Zones)
	if err != nil {
		return err
	}
	log.Printf("snapshot written: %d zones", snap.Meta.ZoneCount)
	return nil
}

type ServeCmd struct {
	Port     string        `default:"8080" help:"HTTP server port."`
	Region   string        `default:"Great Basin" help:"Region (GACC) to refresh."`
	Zones    []string      `help:"Restrict refreshes to specific zone ids."`
	Interval time.Duration `default:"6h" help:"Snapshot refresh interval."`
	NoPoll   bool          `help:"Serve the existing snapshot without refreshing."`
}

func (c *ServeCmd) Run(g *Globals) error {
	fetcher, st, err := g.fetcher()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if c.NoPoll {
		log.Println("polling disabled (--no-poll)")
	} else {
		scheduler := fetch.NewScheduler(fetcher, c.Region, c.Zones, c.Interval)
		go scheduler.Run(ctx)
	}

	log.Printf("starting server on :%s", c.Port)
	return api.NewServer(st, c.Port).Run(ctx)
}

var cli struct {
	Globals

	Fetch FetchCmd `cmd:"" help:"Run one fetch cycle and write the snapshot."`
	Serve ServeCmd `cmd:"" help:"Serve the snapshot API with periodic refresh."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("psafire"),
		kong.Description("PSA fire-weather forecast aggregation and climatological alerting."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
