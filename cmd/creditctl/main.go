package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/enesxunal/markaworld-g-sub000/internal/app"
	"github.com/enesxunal/markaworld-g-sub000/internal/config"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/logger"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	"github.com/enesxunal/markaworld-g-sub000/pkg/utils"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "creditctl",
		Short:         "Operator tool for the installment credit ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(checksCmd())
	rootCmd.AddCommand(ratesCmd())
	rootCmd.AddCommand(customersCmd())

	return rootCmd
}

// withApp loads configuration, builds the ledger and closes it after fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, log, err := load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Logging)
	// Keep stdout for command output.
	log.SetOutput(os.Stderr)
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL, 1)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(ctx, db); err != nil {
				return err
			}

			log.WithField("driver", cfg.Database.Driver).Info("schema applied")
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func checksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Scheduled ledger checks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the overdue scan, late fee accrual and reminders once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Checks.RunAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	})

	return cmd
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Late payment interest rate history",
	}

	var (
		annual string
		from   string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Append a late payment interest rate",
		Long: `Append a late payment interest rate to the history.

The annual rate is a fraction: 0.48 means 48% a year. The daily rate used
for late fees is derived as annual / 365.

Examples:
  creditctl rates add --annual 0.48 --from 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := utils.DecimalFromString(annual)
			if err != nil {
				return fmt.Errorf("invalid --annual %q: %w", annual, err)
			}
			effective, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from %q: %w", from, err)
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				added, err := a.Rates.AddRate(ctx, rate, effective)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), added)
			})
		},
	}
	add.Flags().StringVar(&annual, "annual", "", "annual rate as a fraction")
	add.Flags().StringVar(&from, "from", time.Now().Format("2006-01-02"), "effective date (YYYY-MM-DD)")
	_ = add.MarkFlagRequired("annual")

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the rate in effect today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rate, err := a.Rates.CurrentRate(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rate)
			})
		},
	}

	cmd.AddCommand(add, current)
	return cmd
}

func customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Credit accounts",
	}

	var req domain.CreateCustomerRequest
	var limit string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a credit account",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := utils.DecimalFromString(limit)
			if err != nil {
				return fmt.Errorf("invalid --limit %q: %w", limit, err)
			}
			req.CreditLimit = parsed

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				customer, err := a.Customers.CreateCustomer(ctx, &req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), customer)
			})
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "customer name")
	create.Flags().StringVar(&req.Email, "email", "", "customer email")
	create.Flags().StringVar(&req.Phone, "phone", "", "customer phone")
	create.Flags().StringVar(&limit, "limit", "0", "credit limit")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
