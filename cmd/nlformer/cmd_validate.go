package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/nlformer/pkg/nlformer/config"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
)

var validateRules string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule file and summarize it",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "Rule file (required)")
	_ = validateCmd.MarkFlagRequired("rules")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := config.OpenStore(ctx, validateRules)
	if err != nil {
		return err
	}
	defer st.Close()

	set, err := st.LoadRules(ctx)
	if err != nil {
		return err
	}

	idx := rules.NewIndex(set)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d rules over %d predicates\n", validateRules, idx.Len(), len(idx.Predicates()))
	for _, pred := range idx.Predicates() {
		fmt.Fprintf(out, "  %s: %d\n", pred, len(idx.CandidatesFor(pred)))
	}
	return nil
}
