package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/zecko/internal/cart"
	"github.com/magabrotheeeer/zecko/internal/validation"
)

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "add <product-id> <quantity> <price>",
			Short:   "Add a product to the cart",
			Example: `  zecko cart add sku-42 2 "$12.99"`,
			Args:    cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q is not a number", args[1])
				}
				c, err := cart.Load(cmd.Context(), a.store)
				if err != nil {
					return err
				}
				if err := c.Add(cmd.Context(), args[0], qty, args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cart: %d item(s), total %s\n", c.Count(), validation.FormatCents(c.Total()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Change the quantity of a product, 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q is not a number", args[1])
				}
				c, err := cart.Load(cmd.Context(), a.store)
				if err != nil {
					return err
				}
				return c.SetQuantity(cmd.Context(), args[0], qty)
			},
		},
		&cobra.Command{
			Use:   "rm <product-id>",
			Short: "Remove a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := cart.Load(cmd.Context(), a.store)
				if err != nil {
					return err
				}
				return c.Remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "ls",
			Short: "List the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := cart.Load(cmd.Context(), a.store)
				if err != nil {
					return err
				}
				items := c.Items()
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", it.ProductID, it.Quantity,
						validation.FormatCents(it.PriceCents), validation.FormatCents(it.Subtotal()))
				}
				fmt.Fprintf(w, "TOTAL\t%d\t\t%s\n", c.Count(), validation.FormatCents(c.Total()))
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := cart.Load(cmd.Context(), a.store)
				if err != nil {
					return err
				}
				return c.Clear(cmd.Context())
			},
		},
	)
	return cmd
}
