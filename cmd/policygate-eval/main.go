// Command policygate-eval evaluates a single order intent against a
// capital policy and prints the resulting Decision, exiting 0 for
// ALLOW/MODIFY, 1 for DENY, and 2 for any error (spec.md §6). It is the
// single-shot counterpart to policygate-run.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/policygate/capital/audit"
	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/engine"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/state"
)

const engineVersion = "0.1.0"

var (
	policyPath    string
	intentJSON    string
	portfolioJSON string
	marketJSON    string
	executionJSON string
	auditLogPath  string
	pretty        bool
)

var rootCmd = &cobra.Command{
	Use:   "policygate-eval",
	Short: "Evaluate a single order intent against a capital policy",
	RunE:  runEval,
}

func init() {
	rootCmd.Flags().StringVar(&policyPath, "policy", "", "path to the capital policy YAML file (required)")
	rootCmd.Flags().StringVar(&intentJSON, "intent", "", "order intent as a JSON object (required)")
	rootCmd.Flags().StringVar(&portfolioJSON, "portfolio", "", "portfolio state as a JSON object (required)")
	rootCmd.Flags().StringVar(&marketJSON, "market", "", "market snapshot as a JSON object (required)")
	rootCmd.Flags().StringVar(&executionJSON, "execution", "", "execution state as a JSON object (required)")
	rootCmd.Flags().StringVar(&auditLogPath, "audit-log", "", "optional path to append the resulting audit event to")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print the decision JSON to stdout")
	for _, name := range []string{"policy", "intent", "portfolio", "market", "execution"} {
		_ = rootCmd.MarkFlagRequired(name)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	eng, err := engine.NewFromFile(policyPath)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	var in intent.OrderIntent
	if err := json.Unmarshal([]byte(intentJSON), &in); err != nil {
		return fmt.Errorf("parse intent: %w", err)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid intent: %w", err)
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

	var exec state.ExecutionState
	if err := json.Unmarshal([]byte(executionJSON), &exec); err != nil {
		return fmt.Errorf("parse execution: %w", err)
	}

	d := eng.Evaluate(in, portfolio, market, exec)

	if auditLogPath != "" {
		w, err := audit.NewWriter(auditLogPath)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		event := audit.Build(d, in, portfolio, market, exec, engineVersion, eng.PolicyHash(), "", audit.NowMicros())
		if err := w.Write(event); err != nil {
			_ = w.Close()
			return fmt.Errorf("write audit event: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close audit log: %w", err)
		}
	}

	out := os.Stdout
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}

	switch d.Decision {
	case decision.Allow, decision.Modify:
		exitCode = 0
	case decision.Deny:
		exitCode = 1
	}
	return nil
}

// exitCode carries the process exit status out of RunE, since cobra's
// Execute return value only distinguishes error/no-error.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "policygate-eval:", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}
