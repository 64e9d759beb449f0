package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd groups the account commands: login, register and logout.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Gerenciar a conta",
	Long:  `Entrar, criar conta e sair do ContaFeira.`,
}
