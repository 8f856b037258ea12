// Package main runs the pagekit server: the password strength endpoint,
// the admin log listing and export, and the theme preference endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/pagekit/pkg/captcha"
	"github.com/entrhq/pagekit/pkg/config"
	"github.com/entrhq/pagekit/pkg/flash"
	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/server"
	"github.com/entrhq/pagekit/pkg/strength"
)

const version = "0.1.0"

// Flags holds the command line options.
type Flags struct {
	ConfigDir   string
	Addr        string
	Seed        int
	ShowVersion bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("pagekit v%s\n", version)
		return
	}

	cfg, err := config.LoadApp(flags.ConfigDir)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if flags.Addr != "" {
		cfg.Addr = flags.Addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, cfg, flags); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

func parseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigDir, "config", ".", "Directory holding config.yaml and .env")
	flag.StringVar(&f.Addr, "addr", "", "Listen address (overrides config)")
	flag.IntVar(&f.Seed, "seed", 0, "Insert this many demo entries per log type into the in-memory store")
	flag.BoolVar(&f.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagekit - page behaviour server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagekit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SESSION_SECRET     Flash cookie signing key (32+ bytes)\n")
		fmt.Fprintf(os.Stderr, "  MONGO_URI          Log storage; in-memory when unset\n")
		fmt.Fprintf(os.Stderr, "  REDIS_URL          Rate limit counters; unlimited when unset\n")
		fmt.Fprintf(os.Stderr, "  HCAPTCHA_ENABLED   Verify hCaptcha tokens\n")
	}

	flag.Parse()
	return f
}

func run(ctx context.Context, cfg config.AppConfig, flags *Flags) error {
	logging.SetLevel(cfg.Logging.Level)
	logger := logging.New("server", os.Stdout)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if flags.Seed > 0 {
		if err := seed(ctx, store, flags.Seed); err != nil {
			return fmt.Errorf("failed to seed logs: %w", err)
		}
	}

	var limiter server.Limiter
	if cfg.RateLimit.Requests > 0 {
		client, err := server.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		if client != nil {
			defer client.Close()
			limiter = server.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}

	srv, err := server.New(cfg, server.Deps{
		Logs: logs.NewService(store, pagination.OptionsFromConfig(config.PaginationSettings{
			DefaultPerPage:      cfg.Pagination.DefaultPerPage,
			PerPageOptions:      cfg.Pagination.PerPageOptions,
			ShowJumpToPage:      true,
			MaxPagesVisible:     pagination.DefaultOptions().MaxPagesVisible,
			JumpToPageThreshold: pagination.DefaultOptions().JumpToPageThreshold,
		})),
		Flash:     flash.NewCookieStore([]byte(cfg.Session.Secret), cfg.Session.Name, cfg.Session.Secure),
		Estimator: strength.NewEstimator(),
		Verifier:  captcha.NewVerifier(cfg.HCaptcha),
		Limiter:   limiter,
		Log:       logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("pagekit v%s\n", version)
	fmt.Printf("Listening on %s\n", cfg.Addr)
	return srv.Run(ctx)
}

func openStore(ctx context.Context, cfg config.AppConfig, logger *logging.Logger) (logs.Store, func(), error) {
	if cfg.Mongo.URI == "" {
		logger.Infof("no mongo uri configured, keeping logs in memory")
		return logs.NewMemoryStore(), func() {}, nil
	}

	store, disconnect, err := logs.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := disconnect(context.Background()); err != nil {
			logger.Warnf("failed to disconnect from mongo: %v", err)
		}
	}, nil
}
