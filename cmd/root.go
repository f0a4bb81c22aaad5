package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/lepinkainen/bookscout/internal/debounce"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/library"
	"github.com/lepinkainen/bookscout/internal/openlibrary"
	"github.com/lepinkainen/bookscout/internal/ratelimit"
	"github.com/lepinkainen/bookscout/internal/render"
	"github.com/lepinkainen/bookscout/internal/tui"
)

var (
	openStore = library.Open
	findBook  = tui.Find
)

// CLI represents the complete command structure for the bookscout application
type CLI struct {
	// Global flags
	Format     string `short:"F" help:"Output format" enum:"text,json,yaml" default:"text"`
	LogLevel   string `help:"Log level (debug, info, warn, error); overrides log.level"`
	ConfigDir  string `help:"Directory containing config.yaml" type:"path"`
	EnvFile    string `help:"Dotenv file to load before reading config" default:".env"`
	LibraryDSN string `name:"library-dsn" help:"Reading library location; overrides library.dsn"`

	Search  SearchCmd  `cmd:"" help:"Search Open Library by free text"`
	ISBN    ISBNCmd    `cmd:"" name:"isbn" help:"Look up a single book by ISBN"`
	Work    WorkCmd    `cmd:"" help:"Show details for an Open Library work"`
	Author  AuthorCmd  `cmd:"" help:"Show an Open Library author"`
	Cover   CoverCmd   `cmd:"" help:"Print a cover image URL"`
	Find    FindCmd    `cmd:"" help:"Interactive search-as-you-type"`
	Library LibraryCmd `cmd:"" help:"Manage the reading library"`
}

// App carries everything a command needs at run time.
type App struct {
	ctx    context.Context
	Config config.Config
	Client *openlibrary.Client
	Format render.Format
	Out    io.Writer
}

func newApp(ctx context.Context, cfg config.Config, format render.Format, out io.Writer) *App {
	return &App{
		ctx:    ctx,
		Config: cfg,
		Client: newClient(cfg),
		Format: format,
		Out:    out,
	}
}

// newClient builds the catalog client from configuration.
func newClient(cfg config.Config) *openlibrary.Client {
	return openlibrary.NewClient(
		openlibrary.WithBaseURL(cfg.OpenLibrary.BaseURL),
		openlibrary.WithCoversURL(cfg.OpenLibrary.CoversURL),
		openlibrary.WithUserAgent(cfg.OpenLibrary.UserAgent),
		openlibrary.WithHTTPClient(&http.Client{Timeout: cfg.OpenLibrary.Timeout}),
		openlibrary.WithRateLimiter(ratelimit.New("OpenLibrary", cfg.OpenLibrary.RateLimit)),
		openlibrary.WithLogger(slog.Default()),
	)
}

// newCoordinator builds the debounce coordinator the interactive finder uses.
func (a *App) newCoordinator() *debounce.Coordinator {
	return debounce.New(a.Client,
		debounce.WithQuietPeriod(a.Config.Search.QuietPeriod),
		debounce.WithLimit(a.Config.Search.Limit),
		debounce.WithMinQueryLength(a.Config.Search.MinQueryLength),
		debounce.WithContext(a.ctx),
		debounce.WithLogger(slog.Default()),
	)
}

func (a *App) openLibrary() (library.Store, error) {
	return openStore(a.ctx, a.Config.Library.Driver, a.Config.Library.DSN)
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bookscout"),
		kong.Description("Look up books on Open Library and keep a reading list."),
		kong.UsageOnError(),
	)

	cfg, err := initConfig(&cli)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	initLogging(cfg.LogLevel)

	format, err := render.ParseFormat(cli.Format)
	if err != nil {
		slog.Error("Invalid output format", "error", err)
		os.Exit(1)
	}

	app := newApp(context.Background(), cfg, format, os.Stdout)
	if err := run(kctx, app); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// run executes the selected command. A user-initiated stop is not a failure.
func run(kctx *kong.Context, app *App) error {
	err := kctx.Run(app)
	if errors.IsStopProcessingError(err) {
		slog.Info("Stopped", "reason", err.Error())
		return nil
	}
	return err
}

// initConfig loads dotenv, defaults, config.yaml and environment overrides,
// then applies global flags on top.
func initConfig(cli *CLI) (config.Config, error) {
	if cli.EnvFile != "" {
		if err := config.LoadDotEnv(cli.EnvFile); err != nil {
			slog.Warn("Failed to load env file", "file", cli.EnvFile, "error", err)
		}
	}

	config.SetDefaults()

	var dirs []string
	if cli.ConfigDir != "" {
		dirs = append(dirs, cli.ConfigDir)
	}
	if err := config.ReadConfigFile(dirs...); err != nil {
		return config.Config{}, err
	}

	applyGlobalFlags(cli)
	return config.Load(), nil
}

func applyGlobalFlags(cli *CLI) {
	if cli.LogLevel != "" {
		viper.Set("log.level", strings.ToLower(cli.LogLevel))
	}
	if cli.LibraryDSN != "" {
		viper.Set("library.dsn", cli.LibraryDSN)
	}
}

func initLogging(level slog.Level) {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
