package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskBurst/internal/app"
	"taskBurst/internal/config"
	"taskBurst/internal/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "taskburst",
		Short:   "TaskBurst - персональный менеджер задач",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "путь к config.yml")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и фоновую проверку дедлайнов",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Применить или откатить миграции PostgreSQL",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Development); err != nil {
				return err
			}
			defer logger.Sync()

			down := len(args) == 1 && args[0] == "down"
			if err := app.Migrate(cmd.Context(), cfg, down); err != nil {
				return fmt.Errorf("миграции: %w", err)
			}
			logger.Info("Миграции выполнены")
			return nil
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		a.Close()
		return err
	}
	return a.Run(ctx)
}
