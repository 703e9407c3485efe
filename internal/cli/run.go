package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/profitx/profitx/config"
	"github.com/profitx/profitx/exchange"
	"github.com/profitx/profitx/funding"
	"github.com/profitx/profitx/journal"
	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/market"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the venue: restore durable state and start the price simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if opts.configPath != "" {
				loaded, err := config.LoadFromFile(opts.configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			return run(cmd.Context(), cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logrus.WithField("component", "venue")

	interval, err := cfg.Market.Interval()
	if err != nil {
		return err
	}

	v, err := buildVenue(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = v.journal.Close() }()

	simulator := market.NewSimulator(
		v.store,
		interval,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logrus.WithField("component", "simulator"),
		v.journal,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"assets":   len(cfg.Market.Assets),
		"interval": interval,
		"db":       cfg.Journal.DBPath,
	}).Info("venue started")

	simulator.Run(ctx)

	log.Info("venue stopped")

	return nil
}

// builtVenue bundles the components run assembles. The exchange engine
// is what an embedding transport layer serves requests through.
type builtVenue struct {
	store   *market.Store
	ledger  *ledger.Ledger
	funding *funding.Workflow
	engine  *exchange.Engine
	journal journal.Journal
}

func buildVenue(cfg *config.Config, log logrus.FieldLogger) (*builtVenue, error) {
	seeds := cfg.Market.Seeds()

	var (
		j      journal.Journal = journal.Noop{}
		sqlite *journal.SQLite
	)

	if cfg.Journal.DBPath != "" {
		var err error
		sqlite, err = journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}

		if err := sqlite.SeedAssets(seeds); err != nil {
			return nil, fmt.Errorf("seed assets: %w", err)
		}

		// A previous run's market state takes precedence over the
		// configured seeds.
		restored, err := sqlite.LoadAssets()
		if err != nil {
			return nil, fmt.Errorf("load assets: %w", err)
		}
		if restored != nil {
			seeds = restored
		}

		j = sqlite
	}

	store := market.NewStore(seeds)
	l := ledger.New(log, j)
	workflow := funding.NewWorkflow(l, log, j, funding.Config{
		RevalidateOnApprove: cfg.Funding.RevalidateOnApprove,
	})

	if sqlite != nil {
		accounts, err := sqlite.LoadAccounts()
		if err != nil {
			return nil, fmt.Errorf("load accounts: %w", err)
		}
		l.Restore(accounts)

		requests, err := sqlite.LoadRequests()
		if err != nil {
			return nil, fmt.Errorf("load requests: %w", err)
		}
		workflow.Restore(requests)

		log.WithFields(logrus.Fields{
			"accounts": len(accounts),
			"requests": len(requests),
		}).Info("durable state restored")
	}

	engine := exchange.NewEngine(l, store, workflow, log, j)

	return &builtVenue{
		store:   store,
		ledger:  l,
		funding: workflow,
		engine:  engine,
		journal: j,
	}, nil
}
