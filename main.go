// main.go
//
// Entry point for the solitaire server and its small CLI.
//   - solitaire serve (default): JSON API + websocket push over SQLite.
//   - solitaire deal --seed N [--hint] [--daily YYYY-MM-DD]: print a deal,
//     check it and optionally show the first hint.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/solitaire/assets"
	"github.com/robalobadob/solitaire/internal/cards"
	"github.com/robalobadob/solitaire/internal/config"
	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/database"
	"github.com/robalobadob/solitaire/internal/hint"
	"github.com/robalobadob/solitaire/internal/httpserver"
	"github.com/robalobadob/solitaire/internal/klondike"
	"github.com/robalobadob/solitaire/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "solitaire",
		Short:         "Klondike solitaire server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	root.AddCommand(newServeCmd(cfg), newDealCmd(cfg))
	return root
}

func newServeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port (PORT)")
	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite file (DB_PATH)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenAndMigrate(ctx, cfg.DBPath, assets.Migrations())
	if err != nil {
		log.Error().Err(err).Str("db", cfg.DBPath).Msg("open database")
		return err
	}
	defer db.Close()

	mem := store.NewMemoryStore(cfg.SessionTTL)
	go mem.RunSweeper(ctx, time.Minute, func(n int) {
		log.Info().Int("evicted", n).Int("live", mem.Len()).Msg("idle games dropped")
	})

	srv := httpserver.New(cfg, mem, db)
	log.Info().Str("port", cfg.Port).Str("db", cfg.DBPath).Msg("starting solitaire server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return err
	}
	return nil
}

func newDealCmd(cfg config.Config) *cobra.Command {
	var (
		seed     uint64
		showHint bool
		day      string
	)
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Print a deal and check it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if day != "" {
				t, err := time.Parse("2006-01-02", day)
				if err != nil {
					return fmt.Errorf("--daily: %w", err)
				}
				seed = daily.Seed(t, cfg.DailySalt)
			}
			return printDeal(cmd.OutOrStdout(), seed, showHint)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "deal seed (0 = random)")
	cmd.Flags().BoolVar(&showHint, "hint", false, "also print the first hint")
	cmd.Flags().StringVar(&day, "daily", "", "deal of the day for this date (YYYY-MM-DD)")
	return cmd
}

func printDeal(w io.Writer, seed uint64, showHint bool) error {
	rng, used := cards.NewRand(seed)
	st := klondike.Deal(rng)

	fmt.Fprintf(w, "seed %d\n\n", used)
	if err := st.Render(w); err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("deal %d: %w", used, err)
	}
	if !showHint {
		return nil
	}
	h, ok := hint.Find(st)
	if !ok {
		fmt.Fprintf(w, "\nhint: %s\n", hint.NoHintMessage)
		return nil
	}
	fmt.Fprintf(w, "\nhint: %s\n", h.Message)
	return nil
}
