package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/orchestrator"
)

// NewExecutionCmd создаёт группу команд для executions.
func NewExecutionCmd(envFn func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execution",
		Short: "Inspect job executions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "status IDS",
		Short:   "Show the status of executions in one table",
		Example: "  maskctl execution status 100-105,120",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			env := envFn()
			sess, orch, err := workflowDeps(cmd.Context(), env)
			if err != nil {
				return err
			}

			reports, err := orch.CheckExecutions(cmd.Context(), sess, ids)
			printExecutionReports(env.Out, reports)
			return err
		},
	})

	return cmd
}

func printExecutionReports(out *Output, reports []orchestrator.ExecutionReport) {
	headers := []string{"EXECUTION_ID", "JOB_ID", "JOB_NAME", "STATUS", "ROWS_MASKED", "START_TIME", "END_TIME"}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		if r.Error != "" {
			rows = append(rows, []string{itoa(r.ExecutionID), "-", r.JobName, string(r.Status), "-", "-", r.Error})
			continue
		}
		rows = append(rows, []string{
			itoa(r.ExecutionID),
			itoa(r.JobID),
			r.JobName,
			string(r.Status),
			formatRows(r.RowsMasked),
			formatTime(r.StartTime),
			formatTime(r.EndTime),
		})
	}

	out.Print(headers, rows, reports)
}
