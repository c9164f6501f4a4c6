// Package cli implements cartctl, a terminal surface over the cart engine.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/internal/inventory"
	"MiniCart/internal/kvstore"
	"MiniCart/pkg/kit"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Driver       string
	DSN          string
	InventoryURL string
	Key          string
	Format       string
	Verbose      bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cartctl",
		Short:         "Inspect and change the shopping cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Driver, "driver", "sqlite", "durable store driver (sqlite|postgres|redis|memory)")
	pf.StringVar(&opts.DSN, "db", "minicart.db", "durable store DSN")
	pf.StringVar(&opts.InventoryURL, "inventory-url", "http://localhost:8082", "inventory service base URL")
	pf.StringVar(&opts.Key, "key", cart.DefaultKey, "store key holding the cart")
	pf.StringVar(&opts.Format, "format", "text", "output format (text|json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newProductsCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newSetCommand(opts))

	return cmd
}

// session is one engine wired to the configured store and inventory service.
type session struct {
	engine *cart.Engine
	inv    *inventory.Client
	store  kvstore.Store
}

func (o *RootOptions) open(ctx context.Context, stderr io.Writer) (*session, error) {
	log := zap.NewNop()
	if o.Verbose {
		log = kit.NewLogger("cartctl", "debug")
	}

	store, err := kvstore.Open(ctx, o.Driver, o.DSN)
	if err != nil {
		return nil, err
	}

	inv := inventory.NewClient(o.InventoryURL)
	engine, err := cart.New(ctx, cart.Config{
		Stock:   inv,
		Catalog: inv,
		Store:   store,
		Notify:  stderrNotifier(stderr),
		Key:     o.Key,
		Log:     log,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{engine: engine, inv: inv, store: store}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func stderrNotifier(w io.Writer) cart.Notifier {
	return cart.NotifyFunc(func(_ context.Context, msg string) {
		fmt.Fprintf(w, "! %s\n", msg)
	})
}

func parseID(s string) (cart.ProductID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return cart.ProductID(n), nil
}
