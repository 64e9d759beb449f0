// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
	"contafeira/internal/app/client/config"
	"contafeira/internal/utils/logger"
)

var (
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	serverURL string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "contafeira",
	Short: "ContaFeira - caixa de barraca que funciona sem internet",
	Long: `ContaFeira registra vendas, controla estoque e fecha o caixa da sua
barraca direto no aparelho. Tudo funciona offline; quando a internet volta,
os dados sincronizam sozinhos com o servidor.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Erro:"), err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()

	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if debug {
		cfg.Env = "local"
	}

	log = logger.New(cfg.Env)
	app = client.NewApp(cfg, log)

	if err := app.Start(cmd.Context()); err != nil {
		return fmt.Errorf("erro ao iniciar o aplicativo: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), types.ClientAppKey, app))
	return nil
}

func teardownApp(_ *cobra.Command, _ []string) error {
	if app != nil {
		return app.Close()
	}
	return nil
}

func init() {
	cobra.OnInitialize(func() { viper.AutomaticEnv() })

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "endereço do servidor ContaFeira")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "ativar logs de depuração")
}
