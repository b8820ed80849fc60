package commands

import (
	"github.com/spf13/cobra"
)

var phone string

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders placed with a phone number",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newContainer()
		defer c.Close()

		res, err := c.AssistantService.OrdersByPhone(cmd.Context(), phone)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(res.Orders) == 0 {
			dimColor.Fprintf(w, "no orders for %s\n", res.Phone)
			return nil
		}
		for i := range res.Orders {
			printOrder(w, &res.Orders[i])
		}
		return nil
	},
}

func init() {
	ordersCmd.Flags().StringVarP(&phone, "phone", "p", "", "phone number (required)")
	ordersCmd.MarkFlagRequired("phone")
	rootCmd.AddCommand(ordersCmd)
}
