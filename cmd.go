package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"lie-hard-be/internal/api/http"
	"lie-hard-be/internal/config"
	"lie-hard-be/internal/logger"
	"lie-hard-be/internal/service"
	"lie-hard-be/internal/service/csvimport"
	"lie-hard-be/internal/service/game"
	"lie-hard-be/internal/state"
	"lie-hard-be/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const releaseVersion = "1.0.0"

// Flags whose viper key is not simply the flag name with dashes turned
// into underscores.
var flagKeys = map[string]string{
	"store-driver":    "store.driver",
	"store-dsn":       "store.dsn",
	"document-id":     "store.document_id",
	"backup-schedule": "backup.schedule",
	"backup-path":     "backup.path",
	"strict":          "game.strict",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}

		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}

		_ = v.BindPFlag(key, f)
	})
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	var configFile string

	cmd := &cobra.Command{
		Use:     "lie-hard",
		Short:   "Backend for a live truth-or-lie game show: operator actions, audience display, one shared game document.",
		Args:    cobra.NoArgs,
		Version: releaseVersion,
	}

	pfs := cmd.PersistentFlags()

	pfs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	pfs.StringVarP(&configFile, "config", "c", "", "path to a JSON config file (default ./app_config.json when present)")
	pfs.String("log-level", "info", "debug, info, warn or error (env: LIEHARD_LOG_LEVEL)")
	pfs.Bool("log-development", false, "human readable log output (env: LIEHARD_LOG_DEVELOPMENT)")
	pfs.String("store-driver", "memory", "memory or postgres (env: LIEHARD_STORE_DRIVER)")
	pfs.String("store-dsn", "", "postgres connection string (env: LIEHARD_STORE_DSN)")
	pfs.String("document-id", "live", "id of the live game document (env: LIEHARD_STORE_DOCUMENT_ID)")
	pfs.String("backup-path", "liehard_backup.json", "where the memory store is snapshotted (env: LIEHARD_BACKUP_PATH)")
	pfs.Bool("strict", false, "reject out-of-sequence operator actions (env: LIEHARD_GAME_STRICT)")

	bindFlags(v, pfs)

	loadConfig := func() (*config.AppConfig, error) {
		cfg, err := config.InitConfig(v, configFile)
		if err != nil {
			return nil, err
		}

		logger.InitLogger(cfg.LogLevel, cfg.LogDevelopment)

		return cfg, nil
	}

	serveCmd := newServeCmd(v, loadConfig)

	cmd.AddCommand(
		serveCmd,
		newImportCmd(loadConfig),
		newResetCmd(loadConfig),
		newVersionCmd(),
	)

	// a bare invocation serves, like `lie-hard serve`
	cmd.Flags().AddFlagSet(serveCmd.Flags())
	cmd.RunE = serveCmd.RunE

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("lie-hard v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newServeCmd(v *viper.Viper, loadConfig func() (*config.AppConfig, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator API, the display stream and the static web app.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer zap.L().Sync()

			return runServe(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringP("host", "b", "0.0.0.0", "address to bind to (env: LIEHARD_HOST)")
	fs.IntP("port", "p", 8080, "port to listen on (env: LIEHARD_PORT)")
	fs.String("public-url", "", "base URL the display QR code points at (env: LIEHARD_PUBLIC_URL)")
	fs.String("web-dir", "", "directory holding the console and display web app (env: LIEHARD_WEB_DIR)")
	fs.String("backup-schedule", "", "cron spec for document backups, empty disables (env: LIEHARD_BACKUP_SCHEDULE)")

	bindFlags(v, fs)

	return cmd
}

func newImportCmd(loadConfig func() (*config.AppConfig, error)) *cobra.Command {
	var round1, round2, round3 string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the live document with a fresh lobby carrying content from CSV files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer zap.L().Sync()

			var files csvimport.Files

			for _, part := range []struct {
				path string
				dst  *io.Reader
			}{
				{round1, &files.Round1},
				{round2, &files.Round2},
				{round3, &files.Round3},
			} {
				if part.path == "" {
					continue
				}

				f, err := os.Open(part.path)
				if err != nil {
					return err
				}
				defer f.Close()

				*part.dst = f
			}

			content, err := csvimport.Parse(files)
			if err != nil {
				return err
			}

			return withGameService(cmd.Context(), cfg, func(svc *service.GameService) error {
				res, err := svc.Import(cmd.Context(), content)
				if err != nil {
					return err
				}

				cmd.Println(res.Notice)
				return nil
			})
		},
	}

	fs := cmd.Flags()

	fs.StringVar(&round1, "round1", "", "round 1 CSV: playerId, statement, isTruth (required)")
	fs.StringVar(&round2, "round2", "", "round 2 CSV: statement, exactly five rows")
	fs.StringVar(&round3, "round3", "", "round 3 CSV: playerId, statement_1..3, true_index (required)")

	_ = cmd.MarkFlagRequired("round1")
	_ = cmd.MarkFlagRequired("round3")

	return cmd
}

func newResetCmd(loadConfig func() (*config.AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Put the live document back into the lobby, keeping the loaded content.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer zap.L().Sync()

			return withGameService(cmd.Context(), cfg, func(svc *service.GameService) error {
				res, err := svc.ResetToLobby(cmd.Context())
				if err != nil {
					return err
				}

				cmd.Println(res.Notice)
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("lie-hard v%s\n", releaseVersion)
		},
	}
}

func newGameService(cfg *config.AppConfig, st store.DocumentStore) *service.GameService {
	return service.NewGameService(st, cfg.Store.DocumentID, game.NewMachine(game.MachineOptions{
		Strict:   cfg.Game.Strict,
		Roster:   cfg.Roster(),
		Defaults: cfg.DefaultContent(),
	}))
}

// openStore restores the memory store from its backup file so that every
// command sees the document the last run left behind.
func openStore(ctx context.Context, cfg *config.AppConfig) (store.DocumentStore, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	if cfg.Store.Driver == "memory" && cfg.Backup.Path != "" {
		if _, err := store.RestoreBackup(ctx, st, cfg.Store.DocumentID, cfg.Backup.Path); err != nil {
			st.Close()
			return nil, err
		}
	}

	return st, nil
}

// withGameService runs one offline command against the configured store.
// The memory store is written back to its backup file afterwards.
func withGameService(ctx context.Context, cfg *config.AppConfig, fn func(svc *service.GameService) error) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newGameService(cfg, st)
	defer svc.Close()

	if err := fn(svc); err != nil {
		return err
	}

	if cfg.Store.Driver != "memory" || cfg.Backup.Path == "" {
		return nil
	}

	backup, err := store.NewBackup(st, cfg.Store.DocumentID, cfg.Backup.Path, "")
	if err != nil {
		return err
	}

	return backup.SnapshotNow(ctx)
}

func runServe(ctx context.Context, cfg *config.AppConfig) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newGameService(cfg, st)
	defer svc.Close()

	if cfg.Backup.Schedule != "" {
		backup, err := store.NewBackup(st, cfg.Store.DocumentID, cfg.Backup.Path, cfg.Backup.Schedule)
		if err != nil {
			return err
		}

		backup.Start()

		defer func() {
			backup.Stop()

			// one last copy so a restart resumes where the show stopped
			if err := backup.SnapshotNow(context.Background()); err != nil {
				zap.L().Error("Final backup failed", zap.Error(err))
			}
		}()
	}

	appState := state.NewAppState(cfg, st, svc)

	if _, err := appState.GameSvc.State(ctx); err != nil {
		zap.L().Error("Failed to load live document", zap.Error(err))
	}

	return http.RunServer(ctx, appState)
}
