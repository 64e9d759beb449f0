// cmd/client/cmd/sync/sync.go
package sync

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contafeira/cmd/client/cmd/types"
	"contafeira/internal/app/client"
	"contafeira/internal/domain/tenant"
)

var showStatus bool

var SyncCmd = &cobra.Command{
	Use:   "sincronizar",
	Short: "Sincronizar com a nuvem",
	Long: `Sobe as alterações locais e baixa o que mudou em outros aparelhos.

A sincronização também roda sozinha em segundo plano quando há internet;
use este comando para forçar um ciclo agora ou ver o status com --status.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("aplicativo não inicializado")
		}

		if showStatus {
			return printStatus(app)
		}
		return runSync(cmd, app)
	},
}

func runSync(cmd *cobra.Command, app *client.App) error {
	if app.IsGuest() {
		return fmt.Errorf("sincronização exige uma conta. Use: contafeira auth login")
	}

	if p := app.Profile(); p != nil && !p.SyncEnabled(time.Now()) {
		color.Yellow("⚠ Seu plano atual não inclui sincronização na nuvem.")
		fmt.Println("Os dados continuam seguros neste aparelho.")
		return nil
	}

	fmt.Println("Sincronizando...")
	start := time.Now()

	if err := app.SyncNow(cmd.Context()); err != nil {
		return fmt.Errorf("falha na sincronização: %w", err)
	}

	stats, err := app.LastSyncStats()
	if err != nil {
		return fmt.Errorf("falha na sincronização: %w", err)
	}

	color.Green("✓ Sincronização concluída em %v", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Enviados:   %d registros\n", stats.Uploaded)
	fmt.Printf("  Recebidos:  %d registros\n", stats.Downloaded)
	if stats.Discarded > 0 {
		fmt.Printf("  Ignorados:  %d registros mais antigos que os locais\n", stats.Discarded)
	}

	return nil
}

func printStatus(app *client.App) error {
	fmt.Println("=== Status da sincronização ===")
	fmt.Println()

	if app.IsGuest() {
		fmt.Println("Modo convidado: os dados ficam apenas neste aparelho.")
		fmt.Println("Crie uma conta para sincronizar: contafeira auth register")
		return nil
	}

	if app.Online() {
		color.Green("● Online")
	} else {
		color.Red("● Offline — as vendas continuam sendo registradas normalmente")
	}

	switch app.SyncState() {
	case client.StateSyncing:
		fmt.Println("Estado: sincronizando agora")
	case client.StateSynced:
		fmt.Println("Estado: tudo sincronizado")
	default:
		fmt.Println("Estado: aguardando conexão")
	}

	if p := app.Profile(); p != nil {
		fmt.Printf("Plano: %s (%s)\n", planLabel(p.Plan), statusLabel(p.SubscriptionStatus))
		if !p.SyncEnabled(time.Now()) {
			color.Yellow("⚠ Sincronização desativada para este plano.")
		}
	}

	stats, err := app.LastSyncStats()
	if err != nil {
		fmt.Printf("Última sincronização falhou: %v\n", err)
		return nil
	}
	if !stats.FinishedAt.IsZero() {
		fmt.Printf("Última sincronização: %s (%d enviados, %d recebidos)\n",
			stats.FinishedAt.Local().Format("02/01/2006 15:04"), stats.Uploaded, stats.Downloaded)
	}

	return nil
}

func planLabel(p tenant.Plan) string {
	switch p {
	case tenant.PlanPro:
		return "Pro"
	case tenant.PlanProTrial:
		return "Pro (teste)"
	default:
		return "Essencial"
	}
}

func statusLabel(s tenant.SubscriptionStatus) string {
	switch s {
	case tenant.StatusActive:
		return "ativa"
	case tenant.StatusTrial:
		return "em teste"
	default:
		return "expirada"
	}
}

func init() {
	SyncCmd.Flags().BoolVar(&showStatus, "status", false, "mostrar o status em vez de sincronizar")
}
