package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"github.com/salmacher/Rag-project/internal/api"
	"github.com/salmacher/Rag-project/internal/config"
	"github.com/salmacher/Rag-project/internal/logger"
	"github.com/salmacher/Rag-project/internal/session"
	"github.com/salmacher/Rag-project/internal/tui"
)

func main() {
	check := flag.Bool("check", false, "probe backend connectivity and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()
	log := logger.New(cfg.LogFile)
	defer log.Sync()

	store, err := session.NewStore(cfg.TokenFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, store, log)

	if *check {
		os.Exit(runCheck(ctx, cfg, client))
	}

	log.Info("ragcli starting")
	p := tea.NewProgram(tui.New(ctx, cfg, client, store, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ragcli: %v\n", err)
		os.Exit(1)
	}
}

// runCheck reports whether the backend is reachable. An auth rejection still
// means the server answered, so it counts as reachable.
func runCheck(ctx context.Context, cfg *config.Config, client *api.Client) int {
	fmt.Printf("backend: %s\n", cfg.APIBaseURL)

	resp, err := client.Probe(ctx)
	switch {
	case err == nil:
		color.Green("reachable (llm: %s)", resp.OpenAIStatus)
		return 0
	case api.IsKind(err, api.KindAuth):
		color.Yellow("reachable (authentication required)")
		return 0
	case api.IsKind(err, api.KindNetwork):
		color.Red("unreachable: %s", api.Detail(err))
		return 1
	default:
		color.Red("backend error: %s", api.Detail(err))
		return 1
	}
}
