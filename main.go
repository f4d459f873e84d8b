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

	"hrpulse/apperrors"
	"hrpulse/config"
	"hrpulse/dashboard"
	"hrpulse/database"
	"hrpulse/fixtures"
	"hrpulse/handlers"
	"hrpulse/logger"
	"hrpulse/notify"
	"hrpulse/reports"
	repository "hrpulse/repositories"
	"hrpulse/routes"
	"hrpulse/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hrpulse",
		Short:         "HR analytics dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newReportCmd(),
		newSeedCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every command starts from.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openRepository returns the configured data source and a function releasing it.
func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.DashboardRepository, func(), error) {
	if cfg.Source.Backend != config.SourceMongo {
		log.Info("serving fixture data",
			zap.Duration("latency", cfg.Source.Latency),
			zap.Strings("failing", cfg.Source.FailCollections))
		return repository.NewFixtureRepository(cfg.Source.Latency, cfg.Source.FailCollections, log), func() {}, nil
	}

	client, err := database.Connect(ctx, cfg.Mongo.URI, log)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.Mongo.Database)

	if err := database.CreateIndexes(ctx, db, log); err != nil {
		log.Warn("failed to create dashboard indexes", zap.Error(err))
	}

	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect from MongoDB", zap.Error(err))
		}
	}
	return repository.NewMongoRepository(db), closeFn, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	bus := notify.NewBus(log)
	registry := dashboard.NewRegistry(dashboard.Deps{
		Repo:      repo,
		Publisher: bus,
		Now:       cfg.Now,
		Logger:    log,
		Debounce:  cfg.Loader.Debounce,
		Timeouts:  cfg.Loader.SectionTimeouts,
	}, cfg.Views.IdleTTL, bus.CloseTopic)

	dashboardService := services.NewDashboardService(repo, registry, log)
	reportService := services.NewReportService(reports.NewGenerator(repo, cfg.Now, log), bus, log)

	handler := routes.SetupRoutes(
		handlers.NewDashboardHandler(dashboardService, bus),
		handlers.NewReportHandler(reportService),
		log,
	)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("source", cfg.Source.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.Wrap(err, "server failed")
		}
		return nil
	})
	g.Go(func() error {
		return services.RunSweeper(gctx, dashboardService, cfg.Views.SweepInterval, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Closing the views first ends the websocket streams, which Shutdown does not track.
		dashboardService.Shutdown()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newReportCmd() *cobra.Command {
	var employeeID, out string
	cmd := &cobra.Command{
		Use:   "report [engagement|turnover|journey|retention]",
		Short: "Generate an xlsx report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			kind, err := reports.ParseType(args[0])
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeRepo()

			res, err := reports.NewGenerator(repo, cfg.Now, log).Build(cmd.Context(), kind, employeeID)
			if err != nil {
				return err
			}
			if out == "" {
				out = res.Filename
			}
			if err := os.WriteFile(out, res.Content, 0o644); err != nil {
				return apperrors.Wrapf(err, "failed to write %s", out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", out, res.Summary.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id for the journey report")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the generated name)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the fixture data into MongoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Mongo.URI == "" {
				return apperrors.ConfigInvalid("MONGO_URI is required to seed")
			}
			set, err := fixtures.Load()
			if err != nil {
				return err
			}

			client, err := database.Connect(cmd.Context(), cfg.Mongo.URI, log)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			db := client.Database(cfg.Mongo.Database)
			if err := database.Seed(cmd.Context(), db, set, log); err != nil {
				return err
			}
			return database.CreateIndexes(cmd.Context(), db, log)
		},
	}
}
