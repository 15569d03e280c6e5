package main

import (
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/trackshelf/internal/api"
	"github.com/olivier-w/trackshelf/internal/cache"
	"github.com/olivier-w/trackshelf/internal/config"
	"github.com/olivier-w/trackshelf/internal/library"
	"github.com/olivier-w/trackshelf/internal/logging"
	"github.com/olivier-w/trackshelf/internal/route"
	"github.com/olivier-w/trackshelf/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trackshelf [location]",
		Short: "Browse, edit and play a remote music track library",
		Long: `trackshelf is a terminal client for a Tracks API.

The optional location opens the app at a list or detail route, for example
  trackshelf "/tracks?genre=Rock&sort=title"
  trackshelf /tracks/my-song`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			final, err := run(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), final)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.String("api-url", config.DefaultAPIURL, "Tracks API base URL (TRACKSHELF_API_URL)")
	fl.Duration("search-debounce", config.DefaultSearchDebounce, "delay before a typed search is applied (TRACKSHELF_SEARCH_DEBOUNCE)")
	fl.String("log-file", "", "log file path (TRACKSHELF_LOG_FILE)")
	fl.String("log-level", config.DefaultLogLevel, "debug, info, warn or error (TRACKSHELF_LOG_LEVEL)")
	fl.String("upload-dir", "", "directory the upload picker starts in (TRACKSHELF_UPLOAD_DIR)")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the trackshelf version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trackshelf %s\n", version)
		},
	}
}

// loadConfig reads the environment and .env file, then applies the flags the
// user actually set on top.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	fl := cmd.Flags()
	for name, dst := range map[string]*string{
		"api-url":    &cfg.APIURL,
		"log-file":   &cfg.LogFile,
		"log-level":  &cfg.LogLevel,
		"upload-dir": &cfg.UploadDir,
	} {
		if fl.Changed(name) {
			*dst, _ = fl.GetString(name)
		}
	}
	if fl.Changed("search-debounce") {
		cfg.SearchDebounce, _ = fl.GetDuration("search-debounce")
	}
	if len(args) == 1 {
		cfg.Location = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp wires the API client, cache and library into the root model.
func newApp(cfg config.Config, log *zap.Logger) (ui.App, error) {
	loc, err := route.Parse(cfg.Location)
	if err != nil {
		return ui.App{}, err
	}
	client, err := api.New(api.Options{
		BaseURL:    cfg.APIURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Logger:     log.Named("api"),
	})
	if err != nil {
		return ui.App{}, err
	}
	c := cache.New(cache.Options{
		TTL:          cfg.CacheTTL,
		FetchTimeout: cfg.RequestTimeout,
		Logger:       log.Named("cache"),
	})
	lib := library.New(client, library.Options{Cache: c, Logger: log.Named("library")})

	return ui.New(ui.Options{
		Library:        lib,
		OpenAudio:      ui.OpenPlayer,
		Logger:         log.Named("ui"),
		SearchDebounce: cfg.SearchDebounce,
		UploadDir:      cfg.UploadDir,
		Location:       loc,
	}), nil
}

// run starts the TUI and returns the location shown when it exited.
func run(cfg config.Config) (string, error) {
	log, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, OutputPath: cfg.LogFile})
	if err != nil {
		return "", err
	}
	defer closeLog()

	app, err := newApp(cfg, log)
	if err != nil {
		return "", err
	}
	log.Info("starting", zap.String("api", cfg.APIURL), zap.String("location", cfg.Location))

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := program.Run()
	if err != nil {
		log.Error("program exited", zap.Error(err))
		return "", err
	}
	m, ok := final.(ui.App)
	if !ok {
		return "", fmt.Errorf("unexpected model type %T", final)
	}
	return m.FinalLocation(), nil
}
