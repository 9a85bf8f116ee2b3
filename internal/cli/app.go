package cli

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/amterp/qrcard/internal/config"
	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/prompt"
	"github.com/amterp/qrcard/internal/qr"
	"github.com/amterp/qrcard/internal/service"
	"github.com/amterp/qrcard/internal/share"
	"github.com/amterp/qrcard/internal/store"
)

// AppOptions are the global flags that shape the App.
type AppOptions struct {
	ConfigPath  string // Empty = ~/.config/qrcard/config.toml
	SeedPath    string // Overrides seed_file from config
	Interactive bool
	Out         io.Writer // Defaults to stdout
}

// App holds all the dependencies for the CLI.
type App struct {
	Config      *config.Config
	Logger      *log.Logger
	CardStore   *store.MemoryCardStore
	CardService *service.CardService
	Encoder     *qr.Encoder
	Prompter    prompt.Prompter
	SeedPath    string // Empty when the built-in sample cards are used
	Out         io.Writer
}

// NewApp loads configuration and seed cards and wires up every dependency.
// If opts.Interactive is false, uses NoopPrompter that fails on prompts.
func NewApp(opts AppOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := log.New()
	logger.Out = os.Stderr
	if err := config.ConfigureLogger(logger, cfg.Log); err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	seedPath := cfg.SeedFile
	if opts.SeedPath != "" {
		seedPath = opts.SeedPath
	}
	initial, err := loadInitial(seedPath)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"cards": initial.Len(), "seed_file": seedPath}).Debug("cards loaded")

	encoder, err := qr.NewEncoder(cfg.QR.Recovery, cfg.QR.Size, cfg.QR.CacheSize)
	if err != nil {
		return nil, err
	}

	var prompter prompt.Prompter
	if opts.Interactive {
		prompter = prompt.NewHuhPrompter()
	} else {
		prompter = &prompt.NoopPrompter{}
	}

	cardStore := store.NewCardStore(initial)
	cardService := service.NewCardService(cardStore, encoder, share.Default(out), logger)
	cardService.SetStrictURLs(cfg.Validation.StrictURLs)

	return &App{
		Config:      cfg,
		Logger:      logger,
		CardStore:   cardStore,
		CardService: cardService,
		Encoder:     encoder,
		Prompter:    prompter,
		SeedPath:    seedPath,
		Out:         out,
	}, nil
}

// loadInitial returns the seed fixture at path, or the built-in sample
// cards when path is empty.
func loadInitial(path string) (model.Collection, error) {
	if path == "" {
		return model.Seed(), nil
	}
	collection, err := store.LoadSeed(path)
	if err != nil {
		return model.Collection{}, fmt.Errorf("failed to load seed: %w", err)
	}
	return collection, nil
}

// Fatal prints an error and exits.
func Fatal(err error) {
	PrintError("Error: %v", err)
	os.Exit(1)
}
