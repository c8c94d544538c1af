package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/bootstrap"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/persistence"
	"github.com/spec-kit/assignment-service/internal/worker"
)

var Version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "assignctl",
		Short:         "Operator tooling for the assignment service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(redrawCmd())
	rootCmd.AddCommand(capacityCmd())
	rootCmd.AddCommand(tokenCmd())
	return rootCmd
}

type environment struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// stdout carries command output.
	cfg.Logger.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &environment{cfg: cfg, logger: logger}, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to POSTGRES_DSN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			if env.cfg.Postgres.DSN == "" {
				return errors.New("POSTGRES_DSN is required")
			}
			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, env.cfg.Postgres, env.logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), env.cfg.Postgres.MigrationsDir, env.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func redrawCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "redraw",
		Short: "Run one queue redraw pass and print the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			stores, err := bootstrap.OpenStores(ctx, env.cfg, env.logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			redis := persistence.NewRedis(env.cfg.Redis, env.logger)
			defer redis.Close()

			var lease worker.Lease
			if redis.Enabled() {
				lease = worker.NewRedisLease(redis.Client, env.cfg.App.Name+":redraw-lease", env.cfg.Scheduler.RedrawLockTTL())
			}
			scheduler, err := bootstrap.NewScheduler(env.cfg, stores, events.NewInMemoryDispatcher(env.logger), nil, env.logger)
			if err != nil {
				return err
			}
			if batch <= 0 {
				batch = env.cfg.Scheduler.RedrawBatch
			}
			w := worker.NewRedrawWorker(worker.RedrawWorkerDependencies{
				Queue:  scheduler.Queue,
				Lease:  lease,
				Batch:  batch,
				Logger: env.logger,
			})
			summary, ran, err := w.RunOnce(ctx)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(cmd.OutOrStdout(), "another instance holds the redraw lease; skipped")
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().IntVarP(&batch, "batch", "b", 0, "maximum entries to examine (defaults to SCHEDULER_REDRAW_BATCH)")
	return cmd
}

func capacityCmd() *cobra.Command {
	var staffID, unitID string
	var members bool
	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Print the capacity status of a staff member or unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (staffID == "") == (unitID == "") {
				return errors.New("exactly one of --staff or --unit is required")
			}
			if members && unitID == "" {
				return errors.New("--members requires --unit")
			}
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			stores, err := bootstrap.OpenStores(ctx, env.cfg, env.logger)
			if err != nil {
				return err
			}
			defer stores.Close()
			scheduler, err := bootstrap.NewScheduler(env.cfg, stores, nil, nil, env.logger)
			if err != nil {
				return err
			}

			var status domain.CapacityStatus
			if staffID != "" {
				status, err = scheduler.Ledger.QueryStaffCapacity(ctx, staffID)
			} else {
				status, err = scheduler.Ledger.QueryUnitCapacity(ctx, unitID)
			}
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%s%s not found", staffID, unitID)
			}
			if err != nil {
				return err
			}
			if !members {
				return writeJSON(cmd.OutOrStdout(), dto.NewCapacityResponse(status))
			}

			statuses, err := scheduler.Ledger.QueryUnitMembers(ctx, unitID)
			if err != nil {
				return err
			}
			out := unitMembersOutput{Unit: dto.NewCapacityResponse(status), Members: make([]dto.CapacityResponse, 0, len(statuses))}
			for _, s := range statuses {
				out.Members = append(out.Members, dto.NewCapacityResponse(s))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&staffID, "staff", "", "staff id")
	cmd.Flags().StringVar(&unitID, "unit", "", "unit id")
	cmd.Flags().BoolVar(&members, "members", false, "also list each member's capacity (with --unit)")
	return cmd
}

type unitMembersOutput struct {
	Unit    dto.CapacityResponse   `json:"unit"`
	Members []dto.CapacityResponse `json:"members"`
}

func tokenCmd() *cobra.Command {
	var staffID, role, unitID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with AUTH_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			principal := domain.Principal{StaffID: staffID, Role: domain.Role(role), UnitID: unitID}
			if principal.StaffID == "" || !principal.Role.Valid() {
				return fmt.Errorf("--staff and a valid --role (staff, supervisor, admin) are required")
			}
			tm := auth.NewTokenManager(cfg.Auth)
			token, exp, err := tm.GenerateToken(principal)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"token":      token,
				"expires_at": exp.UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&staffID, "staff", "", "staff id")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "role")
	cmd.Flags().StringVar(&unitID, "unit", "", "unit id")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

