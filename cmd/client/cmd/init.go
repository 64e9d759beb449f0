// cmd/client/cmd/init.go
package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/auth"
	"contafeira/cmd/client/cmd/expense"
	"contafeira/cmd/client/cmd/product"
	"contafeira/cmd/client/cmd/sale"
	"contafeira/cmd/client/cmd/sync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Resumo do aparelho e da conta",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Println("=== ContaFeira ===")
		fmt.Println()

		if app.IsGuest() {
			fmt.Println("Conta: modo convidado (dados apenas neste aparelho)")
		} else {
			fmt.Printf("Conta: %s\n", app.TenantID())
			if app.Online() {
				color.Green("Conexão: online")
			} else {
				color.Yellow("Conexão: offline")
			}
		}

		stats, err := app.Ledger().TodayStats()
		if err != nil {
			return fmt.Errorf("erro ao ler as vendas de hoje: %w", err)
		}
		fmt.Printf("Hoje: %d vendas, %d itens\n", stats.SaleCount, stats.Quantity)

		if p := app.Profile(); p != nil {
			if p.SyncEnabled(time.Now()) {
				fmt.Println("Plano: sincronização na nuvem ativa")
			} else {
				fmt.Println("Plano: dados apenas neste aparelho")
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(sale.SaleCmd)
	sale.SaleCmd.AddCommand(sale.RegisterCmd)
	sale.SaleCmd.AddCommand(sale.CancelCmd)
	sale.SaleCmd.AddCommand(sale.ListCmd)
	sale.SaleCmd.AddCommand(sale.CloseCmd)
	sale.SaleCmd.AddCommand(sale.HistoryCmd)

	rootCmd.AddCommand(product.ProductCmd)
	product.ProductCmd.AddCommand(product.ListCmd)
	product.ProductCmd.AddCommand(product.AddCmd)
	product.ProductCmd.AddCommand(product.StockCmd)
	product.ProductCmd.AddCommand(product.RemoveCmd)

	rootCmd.AddCommand(expense.ExpenseCmd)
	expense.ExpenseCmd.AddCommand(expense.AddCmd)
	expense.ExpenseCmd.AddCommand(expense.ListCmd)
	expense.ExpenseCmd.AddCommand(expense.RemoveCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(statusCmd)
}
