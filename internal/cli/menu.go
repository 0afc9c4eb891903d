package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/maskctl/internal/domain"
	"github.com/shaiso/maskctl/internal/masking"
	"github.com/shaiso/maskctl/internal/orchestrator"
)

// NewMenuCmd создаёт интерактивное меню.
func NewMenuCmd(envFn func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu over the same operations as the commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			sess, orch, err := workflowDeps(cmd.Context(), env)
			if err != nil {
				return err
			}

			m := NewMenu(env.Engine, orch, sess, cmd.InOrStdin(), env.Out)
			return m.Run(cmd.Context())
		},
	}
}

type menuItem struct {
	title  string
	action func(ctx context.Context) error
}

// Menu — интерактивный цикл: выбор пункта, ввод параметров, вывод результата.
type Menu struct {
	engine Engine
	orch   *orchestrator.Orchestrator
	sess   domain.Session
	in     *bufio.Scanner
	out    *Output
	items  []menuItem
}

// NewMenu создаёт Menu.
func NewMenu(engine Engine, orch *orchestrator.Orchestrator, sess domain.Session, in io.Reader, out *Output) *Menu {
	m := &Menu{
		engine: engine,
		orch:   orch,
		sess:   sess,
		in:     bufio.NewScanner(in),
		out:    out,
	}

	m.items = []menuItem{
		{"List existing rulesets", m.listRulesets},
		{"List existing connectors", m.listConnectors},
		{"List existing masking jobs", m.listMaskingJobs},
		{"List existing profile jobs", m.listProfileJobs},
		{"Create a new database ruleset", m.createRuleset},
		{"Create a masking job", m.createJob},
		{"Create masking jobs based on RulesetID", m.createJobsFromRulesets},
		{"Run masking job(s)", m.runJobs},
		{"Refresh ruleset and run a profile job", m.refreshAndRun},
		{"Check job execution status", m.checkExecutions},
	}

	return m
}

// Run показывает меню, пока пользователь не выберет выход или не закончится ввод.
//
// Ошибки отдельных пунктов печатаются и меню продолжает работу;
// ошибка авторизации завершает Run.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.printMenu()

		choice, ok := m.prompt("Enter your choice: ")
		if !ok || choice == "0" {
			m.println("Exiting...")
			return nil
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(m.items) {
			m.println("Invalid choice. Please try again.")
			continue
		}

		if err := m.items[n-1].action(ctx); err != nil {
			if errors.Is(err, masking.ErrUnauthorized) || ctx.Err() != nil {
				return err
			}
			m.out.Error(err.Error())
		}
	}
}

func (m *Menu) printMenu() {
	m.println("\nInteractive Masking Menu")
	for i, item := range m.items {
		m.println(fmt.Sprintf("%d. %s", i+1, item.title))
	}
	m.println("0. Exit")
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out.w, s)
}

// prompt печатает приглашение и читает строку. false, если ввод закончился.
func (m *Menu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out.w, text)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// promptInt читает целое число; what попадает в сообщение об ошибке.
func (m *Menu) promptInt(text, what string) (int, bool) {
	s, ok := m.prompt(text)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		m.println(fmt.Sprintf("Invalid input. Please enter a numeric %s.", what))
		return 0, false
	}
	return n, true
}

// promptIDs читает список ID с диапазонами.
func (m *Menu) promptIDs(text string) ([]int, bool) {
	s, ok := m.prompt(text)
	if !ok {
		return nil, false
	}
	ids, err := parseIDs([]string{s})
	if err != nil {
		m.out.Error(err.Error())
		return nil, false
	}
	return ids, true
}

// --- actions ---

func (m *Menu) listRulesets(ctx context.Context) error {
	rulesets, err := m.engine.ListRulesets(ctx, m.sess)
	if err != nil {
		return err
	}
	m.println("\nExisting Rulesets:")
	printRulesets(m.out, rulesets)
	return nil
}

func (m *Menu) listConnectors(ctx context.Context) error {
	connectors, err := m.engine.ListConnectors(ctx, m.sess)
	if err != nil {
		return err
	}
	m.println("\nExisting Connectors:")
	printConnectors(m.out, connectors)
	return nil
}

func (m *Menu) listMaskingJobs(ctx context.Context) error {
	jobs, err := m.engine.ListMaskingJobs(ctx, m.sess)
	if err != nil {
		return err
	}
	m.println("\nExisting Masking Jobs:")
	printJobs(m.out, jobs)
	return nil
}

func (m *Menu) listProfileJobs(ctx context.Context) error {
	jobs, err := m.engine.ListProfileJobs(ctx, m.sess)
	if err != nil {
		return err
	}
	m.println("\nExisting Profile Jobs:")
	printJobs(m.out, jobs)
	return nil
}

func (m *Menu) createRuleset(ctx context.Context) error {
	connectorID, ok := m.promptInt("Enter the connector ID for the new ruleset: ", "connector ID")
	if !ok {
		return nil
	}
	name, ok := m.prompt("Enter the name for the new ruleset: ")
	if !ok {
		return nil
	}

	ruleset, err := m.engine.CreateRuleset(ctx, m.sess, domain.RulesetSpec{Name: name, ConnectorID: connectorID})
	if err != nil {
		return err
	}
	m.println("\nDatabase Ruleset Details:")
	printRulesets(m.out, []domain.Ruleset{*ruleset})
	return nil
}

func (m *Menu) createJob(ctx context.Context) error {
	rulesetID, ok := m.promptInt("Enter the ruleset ID: ", "ruleset ID")
	if !ok {
		return nil
	}
	name, ok := m.prompt("Enter the name for the masking job: ")
	if !ok {
		return nil
	}

	job, err := m.orch.CreateJob(ctx, m.sess, rulesetID, name)
	if err != nil {
		return err
	}
	m.println("\nMasking Job Details:")
	printJobs(m.out, []domain.Job{*job})
	return nil
}

func (m *Menu) createJobsFromRulesets(ctx context.Context) error {
	ids, ok := m.promptIDs("Enter the rulesetIds to create masking jobs (comma-separated for multiple, hyphen for range): ")
	if !ok {
		return nil
	}
	batch, err := m.orch.CreateJobsFromRulesets(ctx, m.sess, ids)
	printBatch(m.out, batch)
	return err
}

func (m *Menu) runJobs(ctx context.Context) error {
	ids, ok := m.promptIDs("Enter the jobIds to run (comma-separated for multiple, hyphen for range): ")
	if !ok {
		return nil
	}
	batch, err := m.orch.RunJobs(ctx, m.sess, ids, orchestrator.RunOptions{})
	printBatch(m.out, batch)
	return err
}

func (m *Menu) refreshAndRun(ctx context.Context) error {
	if err := m.listProfileJobs(ctx); err != nil {
		return err
	}
	m.println("NOTE: A RuleSet refresh will run for the associated profile job before the profile job is triggered.")

	jobID, ok := m.promptInt("Enter the profileJobId to trigger: ", "job ID")
	if !ok {
		return nil
	}

	result, err := m.orch.RefreshAndRun(ctx, m.sess, orchestrator.JobRef{ID: jobID, Kind: domain.JobKindProfile})
	if result != nil && result.Execution != nil {
		printExecutions(m.out, []*domain.Execution{result.Execution}, result)
	}
	return err
}

func (m *Menu) checkExecutions(ctx context.Context) error {
	ids, ok := m.promptIDs("Enter execution IDs (comma-separated or range, e.g., 1-3): ")
	if !ok {
		return nil
	}
	reports, err := m.orch.CheckExecutions(ctx, m.sess, ids)
	m.println("\nJob Execution Status:")
	printExecutionReports(m.out, reports)
	return err
}
