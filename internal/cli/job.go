package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/orchestrator"
	"github.com/shaiso/maskctl/internal/scheduler"
)

// NewJobCmd создаёт группу команд для masking и profile jobs.
func NewJobCmd(envFn func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage and run jobs",
	}

	cmd.AddCommand(
		newJobListCmd(envFn),
		newJobCreateCmd(envFn),
		newJobCreateFromRulesetsCmd(envFn),
		newJobRunCmd(envFn),
		newJobRefreshRunCmd(envFn),
	)

	return cmd
}

func newJobListCmd(envFn func() *Env) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			sess, err := env.Session(cmd.Context())
			if err != nil {
				return err
			}

			var jobs []domain.Job
			switch domain.ParseJobKind(kind) {
			case domain.JobKindProfile:
				jobs, err = env.Engine.ListProfileJobs(cmd.Context(), sess)
			default:
				jobs, err = env.Engine.ListMaskingJobs(cmd.Context(), sess)
			}
			if err != nil {
				return err
			}

			printJobs(env.Out, jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "masking", "Job kind (masking, profile)")

	return cmd
}

func newJobCreateCmd(envFn func() *Env) *cobra.Command {
	var rulesetID int
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a masking job for a ruleset",
		Long:  "Create a masking job. Fails without changes if a job with the same name already exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			sess, orch, err := workflowDeps(cmd.Context(), env)
			if err != nil {
				return err
			}

			job, err := orch.CreateJob(cmd.Context(), sess, rulesetID, name)
			if err != nil {
				return err
			}

			printJobs(env.Out, []domain.Job{*job})
			return nil
		},
	}

	cmd.Flags().IntVar(&rulesetID, "ruleset-id", 0, "Ruleset ID")
	cmd.Flags().StringVar(&name, "name", "", "Job name")
	markRequired(cmd, "ruleset-id", "name")

	return cmd
}

func newJobCreateFromRulesetsCmd(envFn func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "create-from-rulesets IDS",
		Short:   "Create one masking job per ruleset, named after the ruleset",
		Example: "  maskctl job create-from-rulesets 1,3,5-7",
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

			batch, err := orch.CreateJobsFromRulesets(cmd.Context(), sess, ids)
			printBatch(env.Out, batch)
			if err != nil {
				return err
			}
			return batchError(batch)
		},
	}
}

func newJobRunCmd(envFn func() *Env) *cobra.Command {
	var wait bool
	var cronExpr string

	cmd := &cobra.Command{
		Use:   "run IDS",
		Short: "Run jobs one after another",
		Long: `Run jobs in the given order. IDS is a comma-separated list of IDs and
inclusive ranges, e.g. 1,3,5-7.

With --cron the batch is repeated at every activation of the schedule
until interrupted.`,
		Example: "  maskctl job run 10-12 --wait\n  maskctl job run 4 --cron '0 2 * * *'",
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

			opts := orchestrator.RunOptions{Wait: wait}

			if cronExpr == "" {
				batch, err := orch.RunJobs(cmd.Context(), sess, ids, opts)
				printBatch(env.Out, batch)
				if err != nil {
					return err
				}
				return batchError(batch)
			}

			sched, err := scheduler.ParseCron(cronExpr)
			if err != nil {
				return err
			}

			s := scheduler.New(scheduler.Config{Schedule: sched, Logger: env.Logger})
			return s.Run(cmd.Context(), func(ctx context.Context, n int) error {
				batch, err := orch.RunJobs(ctx, sess, ids, opts)
				printBatch(env.Out, batch)
				if err == nil && batch.Failed() > 0 {
					env.Logger.Warn("scheduled batch had failures",
						"activation", n,
						"failed", batch.Failed(),
					)
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for each execution to finish before starting the next")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Repeat on a cron schedule (5 fields, @hourly, @every 1h, CRON_TZ=...)")

	return cmd
}

func newJobRefreshRunCmd(envFn func() *Env) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "refresh-run ID",
		Short: "Refresh the job's ruleset, then run the job and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if len(ids) != 1 {
				return fmt.Errorf("refresh-run takes exactly one job ID, got %d", len(ids))
			}

			env := envFn()
			sess, orch, err := workflowDeps(cmd.Context(), env)
			if err != nil {
				return err
			}

			env.Out.Success("NOTE: A RuleSet refresh will run for the job before the job is triggered.")

			result, err := orch.RefreshAndRun(cmd.Context(), sess, orchestrator.JobRef{
				ID:   ids[0],
				Kind: domain.ParseJobKind(kind),
			})
			if result != nil && result.Execution != nil {
				printExecutions(env.Out, []*domain.Execution{result.Execution}, result)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "masking", "Job kind (masking, profile)")

	return cmd
}

// workflowDeps возвращает сессию и Orchestrator для workflow-команд.
func workflowDeps(ctx context.Context, env *Env) (domain.Session, *orchestrator.Orchestrator, error) {
	sess, err := env.Session(ctx)
	if err != nil {
		return domain.Session{}, nil, err
	}

	orch, err := env.Orchestrator(ctx)
	if err != nil {
		return domain.Session{}, nil, err
	}

	return sess, orch, nil
}

func printExecutions(out *Output, execs []*domain.Execution, jsonData any) {
	rows := make([][]string, len(execs))
	for i, e := range execs {
		rows[i] = []string{
			itoa(e.ID),
			itoa(e.JobID),
			string(e.Status),
			formatRows(e.RowsMasked),
			formatTime(e.StartTime),
			formatTime(e.EndTime),
		}
	}
	out.Print([]string{"EXECUTION_ID", "JOB_ID", "STATUS", "ROWS_MASKED", "START_TIME", "END_TIME"}, rows, jsonData)
}

// printBatch выводит итог пакета. В табличном режиме элементы уже
// напечатаны ConsoleReporter, поэтому выводится только сводка.
func printBatch(out *Output, batch *orchestrator.BatchResult) {
	if batch == nil {
		return
	}

	if out.JSONMode() {
		out.JSON(batch)
		return
	}

	out.Infof("%d succeeded, %d failed", batch.Succeeded(), batch.Failed())
}

func batchError(batch *orchestrator.BatchResult) error {
	if batch.Failed() == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d items failed", batch.Failed(), len(batch.Items))
}
