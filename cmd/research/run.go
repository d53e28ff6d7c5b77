package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aishitdharwal/ai-agent/app"
	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/research"
)

var (
	runAgent  string
	runTopic  string
	runFormat string
	runTrace  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the naive agent, the stateful agent, or both",
	Long: `Run one or both research agents on a topic and print the result.

With --agent both the naive agent runs first, then the stateful agent, followed
by a short comparison.

Examples:
  research run --agent stateful --topic "Solid-state batteries"
  research run --agent both --format markdown
  research run --agent naive --format json`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runAgent, "agent", "both", "agent to run (naive, stateful, both)")
	runCmd.Flags().StringVar(&runTopic, "topic", defaultTopic, "research topic")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "output format (text, markdown, html, json)")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print per-step timings for the stateful agent")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runAgent != "naive" && runAgent != "stateful" && runAgent != "both" {
		return fmt.Errorf("unknown agent %q (want naive, stateful or both)", runAgent)
	}
	if err := validFormat(runFormat); err != nil {
		return err
	}

	ctx := cmd.Context()
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()

	var (
		opts   []research.Option
		tracer *graph.Tracer
	)
	if runTrace {
		tracer = graph.NewTracer()
		opts = append(opts, research.WithTracer(tracer))
	}
	agents, err := app.BuildAgents(cfg, logger, opts...)
	if err != nil {
		return err
	}

	switch runAgent {
	case "naive":
		res, err := runNaiveAgent(ctx, status, agents.Naive, runTopic)
		if err != nil {
			return err
		}
		return renderNaive(out, runFormat, res)
	case "stateful":
		res, err := runStatefulAgent(ctx, status, agents.Stateful, runTopic)
		if tracer != nil {
			printTimings(status, tracer)
		}
		if err != nil {
			return err
		}
		return renderResult(out, runFormat, res)
	}

	naive, err := runNaiveAgent(ctx, status, agents.Naive, runTopic)
	if err != nil {
		return fmt.Errorf("naive agent: %w", err)
	}
	stateful, err := runStatefulAgent(ctx, status, agents.Stateful, runTopic)
	if tracer != nil {
		printTimings(status, tracer)
	}
	if err != nil {
		return fmt.Errorf("stateful agent: %w", err)
	}

	if runFormat == "json" {
		return writeJSON(out, map[string]any{"naive": naive, "stateful": stateful})
	}
	if err := renderNaive(out, runFormat, naive); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := renderResult(out, runFormat, stateful); err != nil {
		return err
	}
	if runFormat == "text" {
		printComparison(out)
	}
	return nil
}

func runNaiveAgent(ctx context.Context, status io.Writer, agent *research.NaiveAgent, topic string) (*research.NaiveResult, error) {
	fmt.Fprintln(status, bannerStyle.Render("NAIVE (STATELESS) AGENT"))

	start := time.Now()
	res, err := agent.Research(ctx, topic)
	fmt.Fprintln(status, mutedStyle.Render(fmt.Sprintf("Time taken: %.2f seconds", time.Since(start).Seconds())))
	return res, err
}

func runStatefulAgent(ctx context.Context, status io.Writer, agent *research.Agent, topic string) (*research.Result, error) {
	fmt.Fprintln(status, bannerStyle.Render("STATEFUL (GRAPH) AGENT"))

	start := time.Now()
	state, err := agent.Run(ctx, topic, progressPrinter(status))
	fmt.Fprintln(status, mutedStyle.Render(fmt.Sprintf("Time taken: %.2f seconds", time.Since(start).Seconds())))
	if err != nil {
		return nil, err
	}
	return state.Result(), nil
}

// progressPrinter reports each finished step.
func progressPrinter(w io.Writer) graph.NodeListener[research.State] {
	return graph.NodeListenerFunc[research.State](
		func(_ context.Context, event graph.NodeEvent, node string, state research.State, err error) {
			switch event {
			case graph.NodeEventComplete:
				fmt.Fprintf(w, "  ✓ %s%s\n", node, stepDetail(node, state))
			case graph.NodeEventError:
				fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("  ✗ %s: %v", node, err)))
			}
		})
}

// printTimings lists how long each finished step took.
func printTimings(w io.Writer, tracer *graph.Tracer) {
	for _, span := range tracer.Spans() {
		switch span.Event {
		case graph.TraceEventNodeEnd, graph.TraceEventNodeError:
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  %-20s %s", span.NodeName, span.Duration.Round(time.Millisecond))))
		}
	}
}

func stepDetail(node string, s research.State) string {
	switch node {
	case research.StepGenerateQueries:
		return fmt.Sprintf(" (%d queries)", len(s.SearchQueries))
	case research.StepSearchWeb:
		return fmt.Sprintf(" (%d results)", len(s.SearchResults))
	case research.StepExtractFindings:
		return fmt.Sprintf(" (%d findings)", len(s.KeyFindings))
	}
	return ""
}

func printComparison(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Comparison"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Naive agent"))
	fmt.Fprintln(w, "  + one prompt, little code")
	fmt.Fprintln(w, "  - no state between steps, hard to debug or resume")
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Stateful agent"))
	fmt.Fprintln(w, "  + explicit state after every step")
	fmt.Fprintln(w, "  + progress can be observed and persisted")
	fmt.Fprintln(w, "  + failures are pinned to a step, with the last good state kept")
}
