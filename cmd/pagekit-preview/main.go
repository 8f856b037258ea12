// Package main runs the terminal preview of the admin log listings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/pagekit/pkg/config"
	"github.com/entrhq/pagekit/pkg/logs"
	"github.com/entrhq/pagekit/pkg/pagination"
	"github.com/entrhq/pagekit/pkg/preview"
	"github.com/entrhq/pagekit/pkg/theme"
	"github.com/entrhq/pagekit/pkg/toast"
)

// Flags holds the command line options.
type Flags struct {
	ConfigPath string
	MongoURI   string
	Database   string
	BaseURL    string
	Seed       int
	Dark       bool
}

func main() {
	flags := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
	cancel()
}

func parseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "", "UI preferences file (default: ~/.pagekit/config.json)")
	flag.StringVar(&f.MongoURI, "mongo-uri", os.Getenv("MONGO_URI"), "Read logs from MongoDB instead of seeded demo data")
	flag.StringVar(&f.Database, "database", "pagekit", "MongoDB database name")
	flag.StringVar(&f.BaseURL, "base-url", "http://localhost:8080/admin/logs", "Listing URL used for copied links")
	flag.IntVar(&f.Seed, "seed", 137, "Demo entries per log type when no MongoDB is used")
	flag.BoolVar(&f.Dark, "dark", false, "Treat the system colour scheme as dark")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagekit-preview - browse admin logs in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagekit-preview [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return f
}

func run(ctx context.Context, flags *Flags) error {
	if err := config.Initialize(flags.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	store, closeStore, err := openStore(ctx, flags)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := pagination.OptionsFromConfig(config.GetPagination().Snapshot())
	m, err := preview.New(logs.NewService(store, opts), preview.Options{
		BaseURL:      flags.BaseURL,
		ThemeStorage: config.GetTheme(),
		Scheme:       theme.StaticScheme(flags.Dark),
		Policy:       toast.PolicyFromConfig(config.GetUI()),
	})
	if err != nil {
		return err
	}
	return preview.Run(ctx, m)
}

func openStore(ctx context.Context, flags *Flags) (logs.Store, func(), error) {
	if flags.MongoURI != "" {
		store, disconnect, err := logs.Connect(ctx, flags.MongoURI, flags.Database)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = disconnect(context.Background()) }, nil
	}

	store := logs.NewMemoryStore()
	now := time.Now().UTC()
	for i := 0; i < flags.Seed; i++ {
		at := now.Add(-time.Duration(i) * 7 * time.Minute)
		user := fmt.Sprintf("demo%03d", i)
		for _, e := range []logs.Entry{
			{Type: logs.LoginAttempts, CreatedAt: at, Username: user, IPAddress: "192.0.2.10", Success: i%5 != 0},
			{Type: logs.UserRegistrations, CreatedAt: at, Username: user, Email: user + "@example.com", Active: true},
			{Type: logs.EmailVerifications, CreatedAt: at, Email: user + "@example.com", Verified: i%3 == 0, ExpiresAt: at.Add(time.Hour)},
			{Type: logs.ContactSubmissions, CreatedAt: at, Name: user, Email: user + "@example.com", Subject: "Question", Message: "Demo message"},
		} {
			if err := store.Insert(ctx, e); err != nil {
				return nil, nil, err
			}
		}
	}
	return store, func() {}, nil
}
