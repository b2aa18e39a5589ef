package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"voice-agent-console/internal/auth"
	"voice-agent-console/internal/config"
	"voice-agent-console/internal/openmic"
	"voice-agent-console/internal/rbac"

	"github.com/spf13/cobra"
)

// --- agents ---

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Create, inspect and delete voice agents",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAgentClient()
		if err != nil {
			return err
		}
		agents, err := client.ListAgents(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing agents: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, agents)
		}
		if len(agents) == 0 {
			printWarning("no agents found")
			return nil
		}
		rows := [][]string{{"UID", "NAME", "CREATED"}}
		for _, a := range agents {
			rows = append(rows, []string{a.UID, a.Name, a.CreatedAt})
		}
		return table(out, rows)
	},
}

var agentsGetCmd = &cobra.Command{
	Use:   "get <uid>",
	Short: "Show one agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAgentClient()
		if err != nil {
			return err
		}
		a, err := client.GetAgent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching agent %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, a)
		}
		printField(out, "UID", "%s", a.UID)
		printField(out, "Name", "%s", a.Name)
		printField(out, "First message", "%s", a.FirstMessage)
		printField(out, "Prompt", "%s", a.Prompt)
		if a.KnowledgeBaseID != nil {
			printField(out, "Knowledge base", "%v", a.KnowledgeBaseID)
		}
		printField(out, "Created", "%s", a.CreatedAt)
		return nil
	},
}

var agentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an agent with the console defaults",
	Long: `Create an agent with the console defaults.

Examples:
  agentctl agents create --name "Clinic Line" --prompt "You are a receptionist" \
    --first-message "Hello, how can I help?" --knowledge-base-id kb_123`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := agentInputFromFlags(cmd)
		var missing []string
		if in.Name == "" {
			missing = append(missing, "--name")
		}
		if in.Prompt == "" {
			missing = append(missing, "--prompt")
		}
		if in.FirstMessage == "" {
			missing = append(missing, "--first-message")
		}
		if in.KnowledgeBaseID == "" {
			missing = append(missing, "--knowledge-base-id")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s required", strings.Join(missing, ", "))
		}

		client, err := newAgentClient()
		if err != nil {
			return err
		}
		a, err := client.CreateAgent(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("creating agent: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), a)
		}
		printSuccess("Created agent %s (%s)", a.Name, a.UID)
		return nil
	},
}

var agentsUpdateCmd = &cobra.Command{
	Use:   "update <uid>",
	Short: "Change fields of an existing agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := agentInputFromFlags(cmd)
		if in == (openmic.AgentInput{}) {
			return fmt.Errorf("at least one of --name, --prompt, --first-message, --knowledge-base-id is required")
		}

		client, err := newAgentClient()
		if err != nil {
			return err
		}
		a, err := client.UpdateAgent(cmd.Context(), args[0], in)
		if err != nil {
			return fmt.Errorf("updating agent %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), a)
		}
		printSuccess("Updated agent %s", args[0])
		return nil
	},
}

var agentsDeleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete %s without --yes", args[0])
		}

		client, err := newAgentClient()
		if err != nil {
			return err
		}
		if err := client.DeleteAgent(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting agent %s: %w", args[0], err)
		}
		printSuccess("Deleted agent %s", args[0])
		return nil
	},
}

func addAgentFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "agent display name")
	cmd.Flags().String("prompt", "", "system prompt")
	cmd.Flags().String("first-message", "", "greeting spoken when the call connects")
	cmd.Flags().String("knowledge-base-id", "", "knowledge base to attach")
}

func agentInputFromFlags(cmd *cobra.Command) openmic.AgentInput {
	name, _ := cmd.Flags().GetString("name")
	prompt, _ := cmd.Flags().GetString("prompt")
	first, _ := cmd.Flags().GetString("first-message")
	kb, _ := cmd.Flags().GetString("knowledge-base-id")
	return openmic.AgentInput{
		Name:            strings.TrimSpace(name),
		Prompt:          strings.TrimSpace(prompt),
		FirstMessage:    strings.TrimSpace(first),
		KnowledgeBaseID: strings.TrimSpace(kb),
	}
}

func init() {
	addAgentFlags(agentsCreateCmd)
	addAgentFlags(agentsUpdateCmd)
	agentsDeleteCmd.Flags().Bool("yes", false, "confirm deletion")

	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsGetCmd)
	agentsCmd.AddCommand(agentsCreateCmd)
	agentsCmd.AddCommand(agentsUpdateCmd)
	agentsCmd.AddCommand(agentsDeleteCmd)
}

// --- calls ---

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Inspect remote call logs",
}

var callsListCmd = &cobra.Command{
	Use:   "list <agent-uid>",
	Short: "List calls handled by an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAgentClient()
		if err != nil {
			return err
		}
		logs, err := client.ListCalls(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("listing calls for %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, logs)
		}
		if len(logs) == 0 {
			printWarning("no calls found for %s", args[0])
			return nil
		}
		rows := [][]string{{"ID", "STATUS", "DURATION", "CREATED"}}
		for _, l := range logs {
			rows = append(rows, []string{l.ID, l.Status, strconv.FormatFloat(l.Duration, 'f', -1, 64) + "s", l.CreatedAt})
		}
		return table(out, rows)
	},
}

var callsGetCmd = &cobra.Command{
	Use:   "get <call-id>",
	Short: "Show one call with its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAgentClient()
		if err != nil {
			return err
		}
		l, err := client.GetCall(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching call %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, l)
		}
		printField(out, "ID", "%s", l.ID)
		printField(out, "Agent", "%s", l.BotID)
		printField(out, "Status", "%s", l.Status)
		printField(out, "Duration", "%vs", l.Duration)
		if l.Summary != "" {
			printField(out, "Summary", "%s", l.Summary)
		}
		if l.Transcript != nil {
			fmt.Fprintln(out)
			return printJSON(out, l.Transcript)
		}
		return nil
	},
}

func init() {
	callsCmd.AddCommand(callsListCmd)
	callsCmd.AddCommand(callsGetCmd)
}

// --- token ---

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a dashboard access token from JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		role, _ := cmd.Flags().GetString("role")
		if strings.TrimSpace(user) == "" {
			return fmt.Errorf("--user is required")
		}
		if !rbac.IsKnownRole(role) {
			return fmt.Errorf("unknown role %q (admin, operator, viewer)", role)
		}

		cfg := config.LoadClient()
		m, err := auth.NewManager(cfg.Auth)
		if err != nil {
			return err
		}
		tok, err := m.IssueAccess(time.Now(), user, role)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"access_token": tok,
				"token_type":   "Bearer",
				"expires_in":   int(m.TTL().Seconds()),
			})
		}
		fmt.Fprintln(out, tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "user id placed in the token")
	tokenCmd.Flags().String("role", rbac.RoleViewer, "role: admin, operator or viewer")
}
