package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	blogimport "github.com/goliatone/go-blogimport"
	"github.com/goliatone/go-blogimport/internal/commands/importercmd"
)

var moduleBuilder = func(cfg blogimport.Config) (*blogimport.Module, error) {
	return blogimport.New(cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatalf("blogimport: %v", err)
	}
}

func newCommand() *cli.Command {
	defaults := blogimport.DefaultConfig()

	return &cli.Command{
		Name:   "blogimport",
		Usage:  "Import Markdown blog posts into the hosted content API as block documents",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Directory holding the Markdown posts",
				Value:   "posts",
				Sources: cli.EnvVars("BLOGIMPORT_DIR"),
			},
			&cli.BoolFlag{
				Name:    "write",
				Usage:   "Persist documents to the content API (default is a dry run)",
				Sources: cli.EnvVars("BLOGIMPORT_WRITE"),
			},
			&cli.BoolFlag{
				Name:    "drafts",
				Usage:   "Include posts marked as drafts",
				Sources: cli.EnvVars("BLOGIMPORT_DRAFTS"),
			},
			&cli.BoolFlag{
				Name:    "validate-only",
				Usage:   "Check every post and report problems without writing",
				Sources: cli.EnvVars("BLOGIMPORT_VALIDATE_ONLY"),
			},
			&cli.StringFlag{
				Name:    "slug",
				Usage:   "Import only the post with this slug",
				Sources: cli.EnvVars("BLOGIMPORT_SLUG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Content API base URL",
				Sources: cli.EnvVars("BLOGIMPORT_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "dataset",
				Usage:   "Content API dataset name",
				Sources: cli.EnvVars("BLOGIMPORT_DATASET"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Content API bearer token",
				Sources: cli.EnvVars("BLOGIMPORT_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "type",
				Usage:   "Document type recorded on imported posts",
				Value:   defaults.Importer.DocumentType,
				Sources: cli.EnvVars("BLOGIMPORT_TYPE"),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Parallel image uploads per post (defaults to 4)",
				Sources: cli.EnvVars("BLOGIMPORT_CONCURRENCY"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Usage:   "Keep running and re-import posts as they change",
				Sources: cli.EnvVars("BLOGIMPORT_WATCH"),
			},
			&cli.DurationFlag{
				Name:    "debounce",
				Usage:   "Quiet window before a changed post is re-imported",
				Value:   defaults.Watch.Debounce,
				Sources: cli.EnvVars("BLOGIMPORT_DEBOUNCE"),
			},
			&cli.StringFlag{
				Name:    "log-provider",
				Usage:   "Logging provider (console, gologger)",
				Value:   defaults.Logging.Provider,
				Sources: cli.EnvVars("BLOGIMPORT_LOG_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error, fatal)",
				Value:   defaults.Logging.Level,
				Sources: cli.EnvVars("BLOGIMPORT_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "go-logger output format (console, json, pretty)",
				Sources: cli.EnvVars("BLOGIMPORT_LOG_FORMAT"),
			},
		},
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromFlags(cmd)

	// Validate-only runs never touch the network, so the API section is only
	// enforced when the run would actually write.
	if cmd.Bool("write") && (cmd.Bool("watch") || !cmd.Bool("validate-only")) {
		if err := cfg.RequireAPI(); err != nil {
			return err
		}
	}

	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}

	if cmd.Bool("watch") {
		return runWatch(ctx, cmd, module.Handlers())
	}
	return runImport(ctx, cmd, module.Handlers())
}

func configFromFlags(cmd *cli.Command) blogimport.Config {
	cfg := blogimport.DefaultConfig()
	cfg.API.BaseURL = cmd.String("base-url")
	cfg.API.Dataset = cmd.String("dataset")
	cfg.API.Token = cmd.String("token")
	cfg.Importer.DocumentType = cmd.String("type")
	cfg.Importer.Concurrency = int(cmd.Int("concurrency"))
	cfg.Watch.Debounce = cmd.Duration("debounce")
	cfg.Logging.Provider = cmd.String("log-provider")
	cfg.Logging.Level = cmd.String("log-level")
	cfg.Logging.Format = cmd.String("log-format")
	return cfg
}

func runImport(ctx context.Context, cmd *cli.Command, handlers *blogimport.HandlerSet) error {
	msg := importercmd.ImportDirectoryCommand{
		Directory:    cmd.String("dir"),
		DocumentType: cmd.String("type"),
		Write:        cmd.Bool("write"),
		Drafts:       cmd.Bool("drafts"),
		ValidateOnly: cmd.Bool("validate-only"),
		Slug:         cmd.String("slug"),
		Concurrency:  int(cmd.Int("concurrency")),
	}

	if err := handlers.ImportDirectory.Execute(ctx, msg); err != nil {
		return fmt.Errorf("import %s: %w", msg.Directory, err)
	}
	fmt.Fprintln(os.Stdout, "import completed")
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command, handlers *blogimport.HandlerSet) error {
	msg := importercmd.WatchDirectoryCommand{
		Directory:    cmd.String("dir"),
		Debounce:     cmd.Duration("debounce"),
		DocumentType: cmd.String("type"),
		Write:        cmd.Bool("write"),
		Drafts:       cmd.Bool("drafts"),
		Concurrency:  int(cmd.Int("concurrency")),
	}

	err := handlers.Watch.Execute(ctx, msg)
	if err != nil && ctx.Err() != nil {
		// An interrupt cancels the watch context; that is a normal exit.
		err = nil
	}
	if err != nil {
		return fmt.Errorf("watch %s: %w", msg.Directory, err)
	}
	fmt.Fprintln(os.Stdout, "watch stopped")
	return nil
}
