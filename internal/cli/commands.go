package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// withSession opens the engine for the duration of fn.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := opts.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				return writeCart(cmd.OutOrStdout(), opts.Format, s.engine.Snapshot())
			})
		},
	}
}

func newProductsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog with the quantity already in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				products, err := s.inv.ListProducts(ctx)
				if err != nil {
					return err
				}
				return writeProducts(cmd.OutOrStdout(), opts.Format, products, s.engine.Snapshot().Quantities())
			})
		},
	}
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				s.engine.Add(ctx, id)
				return writeCart(cmd.OutOrStdout(), opts.Format, s.engine.Snapshot())
			})
		},
	}
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a product from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				s.engine.Remove(ctx, id)
				return writeCart(cmd.OutOrStdout(), opts.Format, s.engine.Snapshot())
			})
		},
	}
}

func newSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <amount>",
		Short: "Set the quantity of a product already in the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				s.engine.SetQuantity(ctx, id, amount)
				return writeCart(cmd.OutOrStdout(), opts.Format, s.engine.Snapshot())
			})
		},
	}
}
