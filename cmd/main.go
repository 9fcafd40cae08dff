// cmd/main.go is the application entry point.
// It wires together all layers and runs the bot, the admin API and the
// maintenance commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/lucybot/internal/bot"
	"github.com/Shivanand-hulikatti/lucybot/internal/config"
	"github.com/Shivanand-hulikatti/lucybot/internal/console"
	"github.com/Shivanand-hulikatti/lucybot/internal/handler"
	"github.com/Shivanand-hulikatti/lucybot/internal/logging"
	"github.com/Shivanand-hulikatti/lucybot/internal/monitor"
	"github.com/Shivanand-hulikatti/lucybot/internal/service"
)

var (
	cfg    config.Config
	logger *zap.Logger

	historyFile string
)

var rootCmd = &cobra.Command{
	Use:           "lucybot",
	Short:         "Lucy, the FF14 party-finder and chat bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.LogLevel, cfg.LogFormat); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and serve the admin API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeStore, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		closeStore()
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync-commands",
	Short: "Register the slash commands with Discord and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DiscordToken == "" {
			return errors.New("DISCORD_TOKEN is required")
		}
		session, err := bot.NewSession(cfg.DiscordToken)
		if err != nil {
			return err
		}
		cmds, err := bot.SyncCommands(cmd.Context(), session, cfg.AppID, cfg.GuildID)
		if err != nil {
			return err
		}
		logger.Info("commands synced", zap.Int("count", len(cmds)), zap.String("guild", cfg.GuildID))
		return nil
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Chat with Lucy in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		kb, err := openKnowledge(cfg, logger)
		if err != nil {
			return err
		}
		assistant, err := newAssistant(ctx, cfg, kb, logger)
		if err != nil {
			return err
		}
		rl, err := console.NewReadline(historyFile)
		if err != nil {
			return err
		}
		return console.New(assistant, rl, rl.Stdout(), logger).Run(ctx)
	},
}

func init() {
	consoleCmd.Flags().StringVar(&historyFile, "history", "", "readline history file")
	rootCmd.AddCommand(serveCmd, migrateCmd, syncCmd, consoleCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cfg.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}
	for _, m := range cfg.Missing() {
		logger.Warn("feature disabled: setting missing", zap.String("setting", m))
	}

	// ── 1. Open storage ───────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	kb, err := openKnowledge(cfg, logger)
	if err != nil {
		return err
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	announceID := ""
	if cfg.AnnounceEnabled() {
		announceID = cfg.ChatChannelID
	}
	transport := bot.NewTransport(session, cfg.GuildID, cfg.RecruitForumID, announceID, cfg.RoleID)
	recruitments := service.NewRecruitmentService(store, transport, logger)

	wizards, err := newWizards(cfg)
	if err != nil {
		return err
	}
	assistant, err := newAssistant(ctx, cfg, kb, logger)
	if err != nil {
		return err
	}
	watched := ""
	if cfg.MonitorEnabled() {
		watched = cfg.TargetUserID
	}
	mon := monitor.New(monitor.Config{
		UserID:    watched,
		Games:     cfg.MonitorGames,
		StartHour: cfg.MonitorStartHour,
		EndHour:   cfg.MonitorEndHour,
		Location:  cfg.Location(),
	})

	b := bot.New(session, cfg, bot.Deps{
		Recruitments:  recruitments,
		Wizards:       wizards,
		Assistant:     assistant,
		Knowledge:     kb,
		Confirmations: newConfirmations(),
		Monitor:       mon,
	}, logger)

	// ── 3. Run everything until a signal arrives ─────────────────────────
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(ctx) })
	g.Go(func() error { return kb.Watch(ctx) })
	if cfg.Port != "" {
		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler.NewRouter(handler.NewRecruitmentHandler(recruitments), logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		g.Go(func() error {
			logger.Info("admin API listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin API: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("stopped")
	return err
}
