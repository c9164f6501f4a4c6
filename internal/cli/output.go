package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"MiniCart/internal/cart"
)

type cartJSON struct {
	Items      []cart.LineItem `json:"items"`
	TotalCents int64           `json:"total_cents"`
}

type productJSON struct {
	cart.Product
	InCart int `json:"in_cart"`
}

func writeCart(w io.Writer, format string, c *cart.Cart) error {
	if format == "json" {
		return writeJSON(w, cartJSON{Items: c.Items(), TotalCents: c.TotalCents()})
	}

	if c.Len() == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQTY\tTITLE\tSUBTOTAL")
	for _, it := range c.Items() {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", it.ID, it.Quantity, it.Title, cents(it.SubtotalCents()))
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%s\n", cents(c.TotalCents()))
	return tw.Flush()
}

func writeProducts(w io.Writer, format string, ps []cart.Product, inCart map[cart.ProductID]int) error {
	if format == "json" {
		out := make([]productJSON, 0, len(ps))
		for _, p := range ps {
			out = append(out, productJSON{Product: p, InCart: inCart[p.ID]})
		}
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tIN CART")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Title, cents(p.PriceCents), inCart[p.ID])
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cents renders an amount without currency symbol; formatting for display
// belongs to the UI.
func cents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
