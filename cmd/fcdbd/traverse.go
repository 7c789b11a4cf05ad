package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/spf13/cobra"
)

var traverseCmd = &cobra.Command{
	Use:   "traverse DATA-DIR START",
	Short: "Breadth-first walk from a Rid, printing depth and Rid per line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseRid(args[1])
		if err != nil {
			return err
		}

		labels, err := parseLabels(cmd)
		if err != nil {
			return err
		}
		maxDepth, _ := cmd.Flags().GetInt("max-depth")
		asOf, err := parseOptionalAsOf(cmd)
		if err != nil {
			return err
		}

		store, g, err := openGraph(cmd, args[0])
		if err != nil {
			return err
		}
		defer store.Close()

		steps, err := g.Traverse(context.Background(), start, labels, maxDepth, asOf)
		if err != nil {
			return err
		}

		for _, step := range steps {
			fmt.Printf("%d\t%d\n", step.Depth, step.Rid)
		}
		return nil
	},
}

func init() {
	traverseCmd.Flags().String("labels", "", "Comma-separated label IDs to follow (default: all)")
	traverseCmd.Flags().Int("max-depth", 10, "Maximum BFS depth")
	traverseCmd.Flags().String("as-of", "", "Restrict to edges live at this timestamp (microseconds)")
	traverseCmd.Flags().String("config", "", "Path to a fcdbd YAML config file (defaults used if omitted)")
}

func parseLabels(cmd *cobra.Command) ([]types.LabelID, error) {
	raw, _ := cmd.Flags().GetString("labels")
	if raw == "" {
		return nil, nil
	}

	var labels []types.LabelID
	for _, part := range strings.Split(raw, ",") {
		label, err := parseLabel(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func parseOptionalAsOf(cmd *cobra.Command) (*types.Timestamp, error) {
	raw, _ := cmd.Flags().GetString("as-of")
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fcdberr.New(fcdberr.KindMalformed, "fcdbd.parseOptionalAsOf", err)
	}
	ts := types.Timestamp(v)
	return &ts, nil
}
