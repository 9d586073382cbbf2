package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/nlformer/pkg/nlformer/config"
)

var convertFlags struct {
	from string
	to   string
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Copy a rule set between storage formats",
	Long:  "Reads every rule from --from and replaces the contents of --to.\nThe format of each side is chosen by file extension.",
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertFlags.from, "from", "", "Source rule file (required)")
	f.StringVar(&convertFlags.to, "to", "", "Destination rule file (required)")

	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	src, err := config.OpenStore(ctx, convertFlags.from)
	if err != nil {
		return err
	}
	defer src.Close()

	set, err := src.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", convertFlags.from, err)
	}

	dst, err := config.OpenStore(ctx, convertFlags.to)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := dst.SaveRules(ctx, set); err != nil {
		return fmt.Errorf("save %s: %w", convertFlags.to, err)
	}

	logger.Info("rules converted",
		zap.String("from", convertFlags.from),
		zap.String("to", convertFlags.to),
		zap.Int("rules", len(set)))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rules to %s\n", len(set), convertFlags.to)
	return nil
}
