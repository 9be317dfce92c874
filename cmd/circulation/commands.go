package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/circulation/engine"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/circulation/sweep"
	"github.com/AntonStoeckl/library-circulation/eventstore/migrations"
)

var ErrUnknownMigrationAction = errors.New("unknown migration action, want up, down or version")

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "circulation",
		Short:         "Loans, renewals, reservation queues and overdue fines of a library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file; CIRCULATION_* environment variables override it")

	root.AddCommand(
		newTitleCommand(a),
		newCopyCommand(a),
		newMemberCommand(a),
		newBorrowCommand(a),
		&cobra.Command{
			Use:   "return LOAN_ID",
			Short: "Return a loan, charging the overdue fine",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				receipt, err := a.circulation.Return(ctx, args[0])
				return printResult(cmd.OutOrStdout(), receipt, err)
			}),
		},
		&cobra.Command{
			Use:   "renew LOAN_ID",
			Short: "Extend a loan by one loan period",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				receipt, err := a.circulation.Renew(ctx, args[0])
				return printResult(cmd.OutOrStdout(), receipt, err)
			}),
		},
		&cobra.Command{
			Use:   "reserve MEMBER_ID TITLE_ID",
			Short: "Queue a member for a title",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				receipt, err := a.circulation.Enqueue(ctx, args[0], args[1])
				return printResult(cmd.OutOrStdout(), receipt, err)
			}),
		},
		&cobra.Command{
			Use:   "cancel RESERVATION_ID",
			Short: "Cancel a reservation",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				receipt, err := a.circulation.Cancel(ctx, args[0])
				return printResult(cmd.OutOrStdout(), receipt, err)
			}),
		},
		&cobra.Command{
			Use:   "expire RESERVATION_ID",
			Short: "Expire a reservation whose pickup window has elapsed",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				receipt, err := a.circulation.Expire(ctx, args[0])
				return printResult(cmd.OutOrStdout(), receipt, err)
			}),
		},
		&cobra.Command{
			Use:   "availability TITLE_ID",
			Short: "Show copy states and the reservation queue of a title",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				result, err := a.queries.TitleAvailability(ctx, args[0])
				return printResult(cmd.OutOrStdout(), result, err)
			}),
		},
		&cobra.Command{
			Use:   "expired",
			Short: "List reservations whose pickup window has elapsed",
			Args:  cobra.NoArgs,
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
				result, err := a.queries.ExpiredPickups(ctx)
				return printResult(cmd.OutOrStdout(), result, err)
			}),
		},
		newSweepCommand(a),
		newMigrateCommand(a),
	)

	return root
}

func newTitleCommand(a *app) *cobra.Command {
	var details engine.TitleDetails

	add := &cobra.Command{
		Use:   "add",
		Short: "Catalogue a title",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			titleID, err := a.catalog.CatalogueTitle(ctx, details)
			return printResult(cmd.OutOrStdout(), map[string]string{"TitleID": titleID}, err)
		}),
	}

	add.Flags().StringVar(&details.TitleID, "id", "", "title ID, generated when empty")
	add.Flags().StringVar(&details.ISBN, "isbn", "", "ISBN")
	add.Flags().StringVar(&details.Name, "name", "", "title")
	add.Flags().StringVar(&details.Author, "author", "", "author")

	title := &cobra.Command{Use: "title", Short: "Catalogue titles"}
	title.AddCommand(add)

	return title
}

func newCopyCommand(a *app) *cobra.Command {
	var copyID string

	add := &cobra.Command{
		Use:   "add TITLE_ID",
		Short: "Add a physical copy to a title",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			added, err := a.catalog.AddCopy(ctx, args[0], copyID)
			return printResult(cmd.OutOrStdout(), map[string]string{"CopyID": added}, err)
		}),
	}
	add.Flags().StringVar(&copyID, "id", "", "copy ID, generated when empty")

	copyCmd := &cobra.Command{Use: "copy", Short: "Manage physical copies"}
	copyCmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "lost COPY_ID",
			Short: "Mark a copy lost, closing its loan and charging the borrower",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, _ *cobra.Command, args []string) error {
				return a.catalog.MarkCopyLost(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "found COPY_ID",
			Short: "Put a lost copy back into circulation",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, _ *cobra.Command, args []string) error {
				return a.catalog.MarkCopyFound(ctx, args[0])
			}),
		},
	)

	return copyCmd
}

//nolint:funlen
func newMemberCommand(a *app) *cobra.Command {
	var memberID, reason string

	register := &cobra.Command{
		Use:   "register NAME",
		Short: "Register a member",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			registered, err := a.members.RegisterMember(ctx, memberID, args[0])
			return printResult(cmd.OutOrStdout(), map[string]string{"MemberID": registered}, err)
		}),
	}
	register.Flags().StringVar(&memberID, "id", "", "member ID, generated when empty")

	suspend := &cobra.Command{
		Use:   "suspend MEMBER_ID",
		Short: "Suspend a member",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, _ *cobra.Command, args []string) error {
			return a.members.SuspendMember(ctx, args[0], reason)
		}),
	}
	suspend.Flags().StringVar(&reason, "reason", "", "why the member is suspended")

	member := &cobra.Command{Use: "member", Short: "Manage members and their balances"}
	member.AddCommand(
		register,
		suspend,
		&cobra.Command{
			Use:   "reinstate MEMBER_ID",
			Short: "Lift a suspension",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, _ *cobra.Command, args []string) error {
				return a.members.ReinstateMember(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "fine MEMBER_ID AMOUNT",
			Short: "Charge a fine",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(ctx context.Context, _ *cobra.Command, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}

				return a.members.ApplyFine(ctx, args[0], amount)
			}),
		},
		&cobra.Command{
			Use:   "settle MEMBER_ID AMOUNT",
			Short: "Record a payment against the balance",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(ctx context.Context, _ *cobra.Command, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}

				return a.members.SettleFine(ctx, args[0], amount)
			}),
		},
		&cobra.Command{
			Use:   "account MEMBER_ID",
			Short: "Show status, balance, open loans and reservations",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				account, err := a.queries.MemberAccount(ctx, args[0])
				return printResult(cmd.OutOrStdout(), account, err)
			}),
		},
	)

	return member
}

func newBorrowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow MEMBER_ID TITLE_ID",
		Short: "Lend a copy, or queue the member when none is free",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			receipt, err := a.circulation.Borrow(ctx, args[0], args[1])
			if errors.Is(err, core.ErrUnavailable) {
				// the reservation was created, show it along with the refusal
				if printErr := printJSON(cmd.OutOrStdout(), receipt); printErr != nil {
					return errors.Join(err, printErr)
				}

				return err
			}

			return printResult(cmd.OutOrStdout(), receipt, err)
		}),
	}
}

func newSweepCommand(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire elapsed pickups, periodically or once",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			sweeper, err := sweep.NewExpirySweeper(a.engine,
				sweep.WithInterval(a.cfg.Sweep.Interval),
				sweep.WithConcurrency(a.cfg.Sweep.Concurrency),
				sweep.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}

			if once {
				report, sweepErr := sweeper.SweepOnce(ctx)
				return printResult(cmd.OutOrStdout(), report, sweepErr)
			}

			return sweeper.Run(ctx)
		}),
	}

	cmd.Flags().BoolVar(&once, "once", false, "sweep once and exit")

	return cmd
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Manage the events table schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, args []string) error {
			if a.store.sqlDB == nil {
				return nil
			}

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			switch action {
			case "up":
				// applied when the store was opened
			case "down":
				if err := migrations.Down(a.store.sqlDB, a.store.dialect, a.logger); err != nil {
					return err
				}
			case "version":
			default:
				return fmt.Errorf("%w: %q", ErrUnknownMigrationAction, action)
			}

			version, err := migrations.Version(a.store.sqlDB, a.store.dialect)

			return printResult(cmd.OutOrStdout(), map[string]int64{"Version": version}, err)
		}),
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, core.InvalidInput(err)
	}

	return amount, nil
}

func printResult(w io.Writer, v any, err error) error {
	if err != nil {
		return err
	}

	return printJSON(w, v)
}

func printJSON(w io.Writer, v any) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
