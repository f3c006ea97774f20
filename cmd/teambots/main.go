package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pbaille/teambots/internal/api"
	"github.com/pbaille/teambots/internal/bots"
	"github.com/pbaille/teambots/internal/config"
	"github.com/pbaille/teambots/internal/history"
	"github.com/pbaille/teambots/internal/monday"
	"github.com/pbaille/teambots/internal/slack"
)

var version = "dev"

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "teambots",
		Short:         "Board-to-Slack bots for the team",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zc := zap.NewProductionConfig()
			if verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			cfg, err = config.Load(configPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/teambots/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(columnsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [bot]",
		Short: "Run one bot once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			log := logger.With(zap.String("run_id", uuid.New().String()), zap.Bool("dry_run", dryRun))

			var rec *slack.Recorder
			var out slack.Publisher
			if dryRun {
				rec = &slack.Recorder{}
				out = rec
			}

			bot, release, err := newBot(cmd.Context(), name, out, log)
			if err != nil {
				return err
			}
			defer release()

			log.Info("Starting bot", zap.String("bot", name))
			rep, err := bot.Run(cmd.Context())
			if err != nil {
				log.Error("Bot failed", zap.String("bot", name), zap.Error(err))
				return err
			}
			log.Info("Bot finished",
				zap.String("bot", name),
				zap.Int("items", rep.Items),
				zap.Int("matched", rep.Matched),
				zap.Int("posted", rep.Posted),
				zap.Int("failed", len(rep.Failed)),
				zap.String("skipped", rep.Skipped))

			if rec != nil {
				for _, m := range rec.Messages() {
					fmt.Printf("--- to %s ---\n%s\n\n", orDefault(m.Target, "(webhook)"), m.Text)
				}
			}
			if rep.Skipped != "" {
				fmt.Printf("Nothing posted: %s\n", rep.Skipped)
			}
			for _, f := range rep.Failed {
				fmt.Printf("  failed: %s (%s)\n", f.Name, f.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print messages instead of posting them")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available bots",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range bots.NewRegistry().Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func columnsCmd() *cobra.Command {
	var boardID string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Show the columns of a board, for writing field rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := monday.New(cfg.Monday.URL, cfg.Monday.Token, cfg.Monday.Timeout, logger)
			if err != nil {
				return err
			}

			cols, err := client.Columns(cmd.Context(), boardID)
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				fmt.Println("No columns.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tTITLE")
			for _, c := range cols {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Type, c.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "board id")
	cmd.MarkFlagRequired("board")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		bot   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what a bot has posted recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !bots.UsesHistory(bot) {
				return fmt.Errorf("bot keeps no history: %s", bot)
			}
			store, err := openHistory(bot)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No history yet.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			for _, e := range entries {
				fmt.Printf("- %s\n", truncate(e, 100))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bot, "bot", "quote", "bot whose history to show")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bot previews over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			build := func(name string, out slack.Publisher) (bots.Bot, func(), error) {
				log := logger.With(zap.String("run_id", uuid.New().String()), zap.Bool("preview", true))
				return newBot(ctx, name, out, log)
			}
			open := func(bot string) (history.Store, error) {
				s, err := openHistory(bot)
				if err != nil {
					return nil, err
				}
				return history.ReadOnly(s), nil
			}

			server := api.New(bots.NewRegistry().Names(), build, open, addr, logger)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("teambots", version)
		},
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
