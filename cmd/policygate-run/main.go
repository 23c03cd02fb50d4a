// Command policygate-run streams a batch of order intents through the
// engine and a broker, evolving portfolio and execution state as it
// goes, and writes a run summary at the end (spec.md §4.8, §6). It
// exits 0 on a completed run, 1 if the kill switch is active at the end
// of the run, and 2 on any error — the kill-switch signal is policygate-run's
// analogue of policygate-eval's DENY exit code, since a single run has
// no single top-level decision to report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/policygate/capital/audit"
	"github.com/policygate/capital/broker"
	"github.com/policygate/capital/broker/sim"
	"github.com/policygate/capital/execevent"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/journal"
	"github.com/policygate/capital/policy"
	"github.com/policygate/capital/runner"
	"github.com/policygate/capital/state"
)

const engineVersion = "0.1.0"

var (
	policyPath    string
	intentsPath   string
	portfolioJSON string
	marketJSON    string
	executionJSON string
	auditLogPath  string
	execLogPath   string
	brokerName    string
	summaryPath   string
	journalDBPath string
)

var rootCmd = &cobra.Command{
	Use:   "policygate-run",
	Short: "Stream a batch of order intents through the engine and a broker",
	RunE:  runStream,
}

func init() {
	rootCmd.Flags().StringVar(&policyPath, "policy", "", "path to the capital policy YAML file (required)")
	rootCmd.Flags().StringVar(&intentsPath, "intents", "", "path to a JSONL file of order intents (required)")
	rootCmd.Flags().StringVar(&portfolioJSON, "portfolio", "", "starting portfolio state as a JSON object (required)")
	rootCmd.Flags().StringVar(&marketJSON, "market", "", "market snapshot as a JSON object (required)")
	rootCmd.Flags().StringVar(&executionJSON, "execution", "", "starting execution state as a JSON object (required)")
	rootCmd.Flags().StringVar(&auditLogPath, "audit-log", "", "path to append audit events to (required)")
	rootCmd.Flags().StringVar(&execLogPath, "exec-log", "", "optional path to append execution lifecycle events to")
	rootCmd.Flags().StringVar(&brokerName, "broker", "sim", "broker to submit orders to: sim, alpaca, tradier")
	rootCmd.Flags().StringVar(&summaryPath, "summary", "", "path to write the run summary JSON to (required)")
	rootCmd.Flags().StringVar(&journalDBPath, "journal-db", "", "optional path to a SQLite journal mirroring decisions and the run summary")
	for _, name := range []string{"policy", "intents", "portfolio", "market", "execution", "audit-log", "summary"} {
		_ = rootCmd.MarkFlagRequired(name)
	}
}

func buildBroker(name string) (broker.Broker, error) {
	switch name {
	case "sim":
		return sim.New(), nil
	case "alpaca", "tradier":
		return nil, fmt.Errorf("broker %q is not implemented", name)
	default:
		return nil, fmt.Errorf("unknown broker %q (want sim, alpaca, or tradier)", name)
	}
}

func runStream(cmd *cobra.Command, args []string) error {
	pol, err := policy.LoadFile(policyPath)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	intents, err := intent.ReadJSONL(intentsPath)
	if err != nil {
		return fmt.Errorf("load intents: %w", err)
	}

	var portfolio state.PortfolioState
	if err := json.Unmarshal([]byte(portfolioJSON), &portfolio); err != nil {
		return fmt.Errorf("parse portfolio: %w", err)
	}
	if err := portfolio.Validate(); err != nil {
		return fmt.Errorf("invalid portfolio: %w", err)
	}

	var market state.MarketSnapshot
	if err := json.Unmarshal([]byte(marketJSON), &market); err != nil {
		return fmt.Errorf("parse market: %w", err)
	}

	var execState state.ExecutionState
	if err := json.Unmarshal([]byte(executionJSON), &execState); err != nil {
		return fmt.Errorf("parse execution: %w", err)
	}

	br, err := buildBroker(brokerName)
	if err != nil {
		return fmt.Errorf("build broker: %w", err)
	}

	auditW, err := audit.NewWriter(auditLogPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	var execW *execevent.Writer
	if execLogPath != "" {
		execW, err = execevent.NewWriter(execLogPath)
		if err != nil {
			_ = auditW.Close()
			return fmt.Errorf("open exec log: %w", err)
		}
	}

	var jrnl journal.Journal
	if journalDBPath != "" {
		jrnl, err = journal.NewSQLite(journalDBPath)
		if err != nil {
			_ = auditW.Close()
			if execW != nil {
				_ = execW.Close()
			}
			return fmt.Errorf("open journal: %w", err)
		}
	}

	summary, err := runner.Run(context.Background(), pol, intents, &portfolio, &execState, market, br, auditW, execW, jrnl, engineVersion)
	if err != nil {
		_ = auditW.Close()
		if execW != nil {
			_ = execW.Close()
		}
		if jrnl != nil {
			_ = jrnl.Close()
		}
		return fmt.Errorf("run: %w", err)
	}

	if err := auditW.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	if execW != nil {
		if err := execW.Close(); err != nil {
			return fmt.Errorf("close exec log: %w", err)
		}
	}
	if jrnl != nil {
		if err := jrnl.Close(); err != nil {
			return fmt.Errorf("close journal: %w", err)
		}
	}

	out, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	fmt.Printf("run %s: %d intents (allow=%d modify=%d deny=%d), %d orders submitted, %d filled, final equity %.2f, kill switch active=%v\n",
		summary.RunID, summary.TotalIntents, summary.Decisions["ALLOW"], summary.Decisions["MODIFY"], summary.Decisions["DENY"],
		summary.OrdersSubmitted, summary.OrdersFilled, summary.FinalEquity, summary.KillSwitchActive)

	if summary.KillSwitchActive {
		exitCode = 1
	}
	return nil
}

// exitCode carries the process exit status out of RunE, since cobra's
// Execute return value only distinguishes error/no-error.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "policygate-run:", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}
