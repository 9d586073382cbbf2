package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/nlformer/pkg/nlformer"
	"github.com/cognicore/nlformer/pkg/nlformer/config"
	"github.com/cognicore/nlformer/pkg/nlformer/engine"
	"github.com/cognicore/nlformer/pkg/nlformer/pattern"
)

var inferFlags struct {
	rules   string
	facts   []string
	layers  int
	mode    string
	explain bool
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Derive weighted facts from a rule file",
	Example: `  nlformer infer --rules vehicles.json --fact 'is(herbie, car)'
  nlformer infer --rules vehicles.rules --fact 'is(herbie, car)' --fact 'is(herbie, damaged)' --layers 4 --explain`,
	RunE: runInfer,
}

func init() {
	f := inferCmd.Flags()
	f.StringVar(&inferFlags.rules, "rules", "", "Rule file (.json, .rules, .db) (required)")
	f.StringArrayVar(&inferFlags.facts, "fact", nil, "Ground fact, e.g. 'is(herbie, car)' (repeatable)")
	f.IntVar(&inferFlags.layers, "layers", 0, "Maximum layers for multi mode (0 uses max_layers from config)")
	f.StringVar(&inferFlags.mode, "mode", "multi", "Inference mode: fact, context or multi")
	f.BoolVar(&inferFlags.explain, "explain", false, "Print the supporting activations of every result")

	_ = inferCmd.MarkFlagRequired("rules")
	_ = inferCmd.MarkFlagRequired("fact")
}

func runInfer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	facts := make([]pattern.Pattern, 0, len(inferFlags.facts))
	for _, s := range inferFlags.facts {
		p, err := pattern.Parse(s)
		if err != nil {
			return fmt.Errorf("parse fact: %w", err)
		}
		facts = append(facts, p)
	}

	st, err := config.OpenStore(ctx, inferFlags.rules)
	if err != nil {
		return err
	}
	nl, err := nlformer.Open(ctx, nlformer.Options{Store: st, Config: engineCfg, Logger: logger})
	if err != nil {
		st.Close()
		return err
	}
	defer nl.Close()

	var results []engine.Result
	switch inferFlags.mode {
	case "fact":
		if len(facts) != 1 {
			return fmt.Errorf("fact mode takes exactly one --fact, got %d", len(facts))
		}
		results, err = nl.Infer(ctx, facts[0])
	case "context":
		results, err = nl.InferContext(ctx, facts)
	case "multi":
		results, err = nl.InferMultiLayer(ctx, facts, inferFlags.layers)
	default:
		return fmt.Errorf("unknown mode %q", inferFlags.mode)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No rules matched.")
		return nil
	}

	if inferFlags.explain {
		for _, r := range results {
			fmt.Fprintln(out, strings.TrimSuffix(engine.Explain(r), "\n"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CONSEQUENT\tWEIGHT\tRULES")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\t%d\n", r.Consequent, r.Weight, len(r.Support))
	}
	return tw.Flush()
}
