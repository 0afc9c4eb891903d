package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/domain"
)

// NewRulesetCmd создаёт группу команд для database rulesets.
func NewRulesetCmd(envFn func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ruleset",
		Short: "Manage database rulesets",
	}

	cmd.AddCommand(
		newRulesetListCmd(envFn),
		newRulesetCreateCmd(envFn),
	)

	return cmd
}

func newRulesetListCmd(envFn func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List database rulesets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			sess, err := env.Session(cmd.Context())
			if err != nil {
				return err
			}

			rulesets, err := env.Engine.ListRulesets(cmd.Context(), sess)
			if err != nil {
				return err
			}

			printRulesets(env.Out, rulesets)
			return nil
		},
	}
}

func newRulesetCreateCmd(envFn func() *Env) *cobra.Command {
	var name string
	var connectorID int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a database ruleset for a connector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			sess, err := env.Session(cmd.Context())
			if err != nil {
				return err
			}

			ruleset, err := env.Engine.CreateRuleset(cmd.Context(), sess, domain.RulesetSpec{
				Name:        name,
				ConnectorID: connectorID,
			})
			if err != nil {
				return err
			}

			env.Out.Success(fmt.Sprintf("Ruleset created: %d", ruleset.ID))
			printRulesets(env.Out, []domain.Ruleset{*ruleset})
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Ruleset name")
	cmd.Flags().IntVar(&connectorID, "connector-id", 0, "Database connector ID")
	markRequired(cmd, "name", "connector-id")

	return cmd
}

func printRulesets(out *Output, rulesets []domain.Ruleset) {
	rows := make([][]string, len(rulesets))
	for i, rs := range rulesets {
		rows[i] = []string{itoa(rs.ID), rs.Name, itoa(rs.ConnectorID)}
	}
	out.Print([]string{"ID", "NAME", "CONNECTOR_ID"}, rows, rulesets)
}

// NewConnectorCmd создаёт группу команд для database connectors.
func NewConnectorCmd(envFn func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connector",
		Short: "Inspect database connectors",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List database connectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			sess, err := env.Session(cmd.Context())
			if err != nil {
				return err
			}

			connectors, err := env.Engine.ListConnectors(cmd.Context(), sess)
			if err != nil {
				return err
			}

			printConnectors(env.Out, connectors)
			return nil
		},
	})

	return cmd
}

func printConnectors(out *Output, connectors []domain.Connector) {
	rows := make([][]string, len(connectors))
	for i, c := range connectors {
		rows[i] = []string{itoa(c.ID), c.Name}
	}
	out.Print([]string{"ID", "NAME"}, rows, connectors)
}

func printJobs(out *Output, jobs []domain.Job) {
	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		rows[i] = []string{itoa(j.ID), j.Name, itoa(j.RulesetID), string(j.Kind)}
	}
	out.Print([]string{"ID", "NAME", "RULESET_ID", "KIND"}, rows, jobs)
}
