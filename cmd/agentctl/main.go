package main

import (
	"context"
	"fmt"
	"os"

	"voice-agent-console/internal/config"
	"voice-agent-console/internal/openmic"

	"github.com/spf13/cobra"
)

var (
	noColor    bool
	jsonOutput bool
)

// agentClient is the part of the remote API the CLI drives.
type agentClient interface {
	CreateAgent(ctx context.Context, in openmic.AgentInput) (openmic.Agent, error)
	GetAgent(ctx context.Context, uid string) (openmic.Agent, error)
	ListAgents(ctx context.Context) ([]openmic.Agent, error)
	UpdateAgent(ctx context.Context, uid string, in openmic.AgentInput) (openmic.Agent, error)
	DeleteAgent(ctx context.Context, uid string) error
	ListCalls(ctx context.Context, botID string) ([]openmic.CallLog, error)
	GetCall(ctx context.Context, id string) (openmic.CallLog, error)
}

// newAgentClient is swapped in tests.
var newAgentClient = func() (agentClient, error) {
	cfg := config.LoadClient()
	if cfg.OpenMic.APIKey == "" {
		return nil, fmt.Errorf("OPENMIC_API_KEY is required")
	}
	return openmic.NewClientWithBaseURL(cfg.OpenMic.APIKey, cfg.OpenMic.BaseURL, cfg.OpenMic.Timeout), nil
}

var rootCmd = &cobra.Command{
	Use:           "agentctl",
	Short:         "Manage voice agents and inspect their calls",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON")

	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(callsCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
