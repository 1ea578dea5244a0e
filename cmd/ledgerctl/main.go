// Command ledgerctl inspects a ledger snapshot without going through the
// server. It never writes to the snapshot.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/mmynk/gpbank/internal/config"
	"github.com/mmynk/gpbank/internal/ledger"
	"github.com/mmynk/gpbank/internal/storage/backend"
	"github.com/mmynk/gpbank/pkg/logging"
)

var (
	configPath  = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to the YAML config file")
	backendName = flag.String("backend", "", "Storage backend (json, sqlite). Overrides the config file.")
	storePath   = flag.String("path", "", "Snapshot path. Overrides the config file.")

	stdout io.Writer = os.Stdout
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&balanceCmd{}, "accounts")
	commander.Register(&historyCmd{}, "accounts")
	commander.Register(&topCmd{}, "accounts")

	commander.Register(&debtorsCmd{}, "loans")
	commander.Register(&debtsCmd{}, "loans")
	commander.Register(&loansCmd{}, "loans")

	flag.Parse()
	logging.Setup("")
	os.Exit(int(commander.Execute(context.Background())))
}

// storageConfig resolves the snapshot location from the config file and the
// command line flags.
func storageConfig() (config.StorageConfig, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.StorageConfig{}, err
	}
	if *backendName != "" {
		cfg.Storage.Backend = *backendName
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}
	return cfg.Storage, nil
}

// openEngine loads the snapshot into an engine. The store is opened read-only
// and load failures are reported instead of falling back to an empty ledger.
func openEngine(ctx context.Context) (*ledger.Engine, error) {
	cfg, err := storageConfig()
	if err != nil {
		return nil, err
	}
	store, err := backend.OpenReadOnly(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	state, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.NewEngine(state), nil
}
