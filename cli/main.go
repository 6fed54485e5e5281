// Package main provides the ytcurate CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"ytcurate/config"
	"ytcurate/curation"
	"ytcurate/internal/retry"
	"ytcurate/reconcile"
	"ytcurate/scan"
	"ytcurate/storage"
	"ytcurate/youtube"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the ytcurate CLI.
func newRootCmd() *cobra.Command {
	var cfgPath string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "ytcurate",
		Short:   "Scan channels and reconcile curated playlists",
		Long:    "ytcurate maintains a local ledger of channel videos and converges remote playlists to curated season definitions.",
		Version: version,
	}
	rootCmd.SetVersionTemplate("ytcurate version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path (default: ytcurate.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newScanCmd(&cfgPath, &verbose))
	rootCmd.AddCommand(newRebuildCmd(&cfgPath, &verbose))
	rootCmd.AddCommand(newPublishCmd(&cfgPath, &verbose))
	rootCmd.AddCommand(newRunCmd(&cfgPath, &verbose))

	return rootCmd
}

// app bundles the services every command needs. Each command builds one,
// uses it for the duration of the run and closes it; nothing is ambient.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *storage.Store
}

func newApp(cfgPath string, verbose bool) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("closing store")
	}
}

// client builds the platform API client. Playlist mutations need an
// OAuth access token on top of the API key.
func (a *app) client(ctx context.Context, needsAuth bool) (*youtube.Client, error) {
	var opts []option.ClientOption
	if needsAuth {
		if a.cfg.AccessToken == "" {
			return nil, fmt.Errorf("publishing requires an OAuth access token (set YOUTUBE_ACCESS_TOKEN)")
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.cfg.AccessToken})
		opts = append(opts, option.WithTokenSource(ts))
	}

	return youtube.NewClient(ctx, youtube.ClientConfig{
		APIKey:            a.cfg.APIKey,
		RequestsPerSecond: a.cfg.RequestsPerSecond,
		Options:           opts,
		Retry: retry.Config{
			MaxRetries:     a.cfg.Retry.MaxRetries,
			InitialBackoff: a.cfg.Retry.InitialBackoff.Std(),
			MaxBackoff:     a.cfg.Retry.MaxBackoff.Std(),
			Multiplier:     a.cfg.Retry.Multiplier,
			JitterFraction: 0.2,
		},
	}, a.log)
}

func (a *app) scanPolicy() scan.Policy {
	return scan.Policy{
		MinInterval: a.cfg.Scan.MinInterval.Std(),
		StaleAfter:  a.cfg.Scan.StaleAfter.Std(),
		LookBack:    a.cfg.Scan.LookBack.Std(),
	}
}

// runScan scans every configured channel into the ledger.
func (a *app) runScan(ctx context.Context) error {
	if len(a.cfg.Channels) == 0 {
		a.log.Warn().Msg("no channels configured")
		return nil
	}

	client, err := a.client(ctx, false)
	if err != nil {
		return err
	}

	directory := youtube.NewDirectory(client, a.store, a.log)
	runner := scan.NewRunner(a.store, directory, client, a.scanPolicy(), a.log)
	return runner.Run(ctx, a.cfg.Channels)
}

// runRebuild recomputes the desired playlists from the curation corpus.
func (a *app) runRebuild() error {
	seasons, err := curation.LoadSeasons(a.cfg.SeasonsFile)
	if err != nil {
		return err
	}
	specs, err := curation.LoadPlaylistSpecs(a.cfg.PlaylistsFile)
	if err != nil {
		return err
	}

	projector := curation.NewProjector(a.store, a.log)
	a.store.SetPlaylists(projector.Rebuild(seasons, specs))
	return a.store.Flush()
}

// runPublish reconciles every stored playlist with a remote ID.
func (a *app) runPublish(ctx context.Context) error {
	client, err := a.client(ctx, true)
	if err != nil {
		return err
	}

	reconciler := reconcile.NewReconciler(client, a.log)
	return reconciler.Run(ctx, a.store.Playlists())
}

func newScanCmd(cfgPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan configured channels into the video ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *verbose)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.runScan(cmd.Context())
		},
	}
}

func newRebuildCmd(cfgPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild desired playlists from the curation corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *verbose)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.runRebuild()
		},
	}
}

func newPublishCmd(cfgPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Reconcile remote playlists to the stored desired state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *verbose)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.runPublish(cmd.Context())
		},
	}
}

func newRunCmd(cfgPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scan, rebuild and publish in one pass",
		Long:  "Runs the full pipeline. Stage failures are reported together; a later stage still runs on whatever state the earlier stages left behind.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var errs []error
			if err := a.runScan(ctx); err != nil {
				a.log.Error().Err(err).Msg("scan stage failed")
				errs = append(errs, err)
			}
			if err := a.runRebuild(); err != nil {
				a.log.Error().Err(err).Msg("rebuild stage failed")
				errs = append(errs, err)
			}
			if err := a.runPublish(ctx); err != nil {
				a.log.Error().Err(err).Msg("publish stage failed")
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		},
	}
}
