package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/spf13/cobra"
)

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Create edges between graph nodes",
}

var edgeCreateCmd = &cobra.Command{
	Use:   "create DATA-DIR FROM TO LABEL",
	Short: "Create a labeled edge from one Rid to another",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseRid(args[1])
		if err != nil {
			return err
		}
		to, err := parseRid(args[2])
		if err != nil {
			return err
		}
		label, err := parseLabel(args[3])
		if err != nil {
			return err
		}
		props, err := edgePropsFromFlags(cmd)
		if err != nil {
			return err
		}

		store, g, err := openGraph(cmd, args[0])
		if err != nil {
			return err
		}
		defer store.Close()

		if err := g.CreateEdge(context.Background(), from, to, label, props); err != nil {
			return err
		}

		fmt.Printf("✓ Edge %d -[%d]-> %d created\n", from, label, to)
		return nil
	},
}

func init() {
	edgeCmd.AddCommand(edgeCreateCmd)

	edgeCreateCmd.Flags().String("data", "", "Literal content for the edge's properties")
	edgeCreateCmd.Flags().String("from-file", "", "Read edge properties from a file")
	edgeCreateCmd.Flags().String("config", "", "Path to a fcdbd YAML config file (defaults used if omitted)")
}

func parseLabel(s string) (types.LabelID, error) {
	v, err := parseRid(s)
	return types.LabelID(v), err
}

// edgePropsFromFlags reads optional edge properties from --data or
// --from-file; unlike a node's content, an edge may legitimately carry
// no properties at all.
func edgePropsFromFlags(cmd *cobra.Command) ([]byte, error) {
	literal, _ := cmd.Flags().GetString("data")
	if literal != "" {
		return []byte(literal), nil
	}

	fromFile, _ := cmd.Flags().GetString("from-file")
	if fromFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(fromFile)
	if err != nil {
		return nil, fcdberr.New(fcdberr.KindMalformed, "fcdbd.edgePropsFromFlags", err)
	}
	return data, nil
}
