// cmd/client/cmd/auth/login.go
package auth

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Entrar na sua conta",
	Long: `Autentica no servidor ContaFeira.

Depois do login o token fica salvo no aparelho e os dados locais passam a
sincronizar com a nuvem automaticamente.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		fmt.Println("=== Entrar no ContaFeira ===")
		fmt.Println()

		fmt.Print("Usuário: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Senha: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("erro ao ler a senha: %w", err)
		}
		fmt.Println()

		if err := app.Login(cmd.Context(), login, string(password)); err != nil {
			return fmt.Errorf("falha na autenticação: %w", err)
		}

		fmt.Println()
		color.Green("✓ Login realizado com sucesso!")
		fmt.Println("Seus dados locais serão sincronizados em segundo plano.")

		return nil
	},
}
