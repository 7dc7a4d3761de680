package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avelichko/receipty/internal/aggregator"
	"github.com/avelichko/receipty/internal/common"
	"github.com/avelichko/receipty/internal/conversation"
	"github.com/avelichko/receipty/internal/export"
	"github.com/avelichko/receipty/internal/extract"
	"github.com/avelichko/receipty/internal/extract/gemini"
	"github.com/avelichko/receipty/internal/extract/openai"
	"github.com/avelichko/receipty/internal/prefs"
	repo "github.com/avelichko/receipty/internal/repository"
	"github.com/avelichko/receipty/internal/taxonomy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receiptyd",
		Short: "Receipt extraction and conversational correction engine",
		Long: `Receiptyd turns receipt photos into structured product rows.

Photos arrive through a chat transport, go through a vision model with
escalating prompt strategies, and land in a spreadsheet and PostgreSQL
after the submitter reviews and corrects the extracted items.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			slog.SetDefault(newLogger())
		},
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newInitDBCmd())

	return cmd
}

// newLogger outputs messages with variables but no time/level.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the extraction engine and block until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				logger.Error("invalid configuration", "error", err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			catalog, err := taxonomy.Load(cfg.Paths.CategoriesPath, logger)
			if err != nil {
				return fmt.Errorf("load category taxonomy: %w", err)
			}

			pool, err := repo.Open(ctx, repo.Config{
				DSN:             cfg.Database.DSN,
				MaxConns:        cfg.Database.MaxConns,
				MinConns:        cfg.Database.MinConns,
				MaxConnLifetime: cfg.Database.MaxConnLifetime,
				MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
				DialTimeout:     cfg.Database.DialTimeout,
			}, logger)
			if err != nil {
				return fmt.Errorf("open database pool: %w", err)
			}
			defer pool.Close()
			if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
				return fmt.Errorf("database health check: %w", err)
			}

			history, err := prefs.Open(cfg.Paths.PrefsPath, logger)
			if err != nil {
				return fmt.Errorf("open preferences store: %w", err)
			}
			defer func() {
				if err := history.Close(); err != nil {
					logger.Error("prefs.close.failed", "error", err)
				}
			}()

			extractor, closeExtractor, err := newExtractor(ctx, cfg.Extractor, logger)
			if err != nil {
				return fmt.Errorf("init extractor backend: %w", err)
			}
			defer closeExtractor()

			audit := extract.NewAuditWriter(cfg.Paths.AuditDir, logger)
			pipeline := extract.NewPipeline(extractor, catalog.PromptBlock(), audit, logger)

			sinks := []conversation.Sink{repo.NewStore(pool, logger)}
			if cfg.Sheet.WorkbookPath != "" {
				sinks = append([]conversation.Sink{
					export.NewSheetSink(cfg.Sheet.WorkbookPath, cfg.Sheet.TabName, logger),
				}, sinks...)
			}

			agg := aggregator.New(aggregator.Config{
				MaxWait:       cfg.Media.MaxWait,
				PollInterval:  cfg.Media.PollInterval,
				IdleThreshold: cfg.Media.IdleThreshold,
			}, aggregator.SystemClock, logger)

			engine := conversation.NewEngine(
				conversation.Config{MaxMessageLength: cfg.Chat.MaxMessageLength},
				agg, pipeline, newOutboundLog(logger), history, catalog, sinks, logger,
			)

			logger.Info("engine.ready",
				"backend", cfg.Extractor.Backend,
				"sinks", len(sinks),
				"categories", len(catalog.Names()))

			// A chat connector would attach here instead; the console driver
			// keeps the engine usable for local runs and smoke checks.
			go runConsole(ctx, engine, logger)

			<-ctx.Done()
			logger.Info("engine.shutdown")
			return nil
		},
	}
}

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create database tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			cfg := common.LoadConfig()
			if cfg.Database.DSN == "" {
				logger.Error("missing DB_URL environment variable")
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := repo.Open(ctx, repo.Config{DSN: cfg.Database.DSN}, logger)
			if err != nil {
				return fmt.Errorf("open database pool: %w", err)
			}
			defer pool.Close()

			if err := repo.InitSchema(ctx, pool, logger); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			logger.Info("schema.ready")
			return nil
		},
	}
}

// newExtractor selects the vision backend. The returned closer releases
// backend resources and is safe to call even when there are none.
func newExtractor(ctx context.Context, cfg common.ExtractorConfig, logger *slog.Logger) (extract.Extractor, func(), error) {
	switch cfg.Backend {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxTokens, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {
			if err := client.Close(); err != nil {
				logger.Error("gemini.close.failed", "error", err)
			}
		}, nil
	default:
		client := openai.NewClient(openai.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, logger)
		return client, func() {}, nil
	}
}

// outboundLog is the fallback transport: it logs what would be sent to the
// submitter. A real chat connector replaces it when attaching the engine's
// handler methods to incoming updates.
type outboundLog struct {
	logger *slog.Logger
}

func newOutboundLog(logger *slog.Logger) *outboundLog {
	return &outboundLog{logger: logger}
}

func (t *outboundLog) SendMessage(ctx context.Context, submitterID int64, text string) error {
	t.logger.Info("outbound.message", "submitter_id", submitterID, "text", text)
	return nil
}

func (t *outboundLog) SendKeyboard(ctx context.Context, submitterID int64, text string, rows [][]conversation.Button) error {
	t.logger.Info("outbound.keyboard", "submitter_id", submitterID, "text", text, "rows", len(rows))
	return nil
}
