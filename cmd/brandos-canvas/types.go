package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/output"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the registered node types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd); err != nil {
			return err
		}

		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")

		types := output.Filter(nodetype.Builtin().Export(), nodetype.Category(category))
		if len(types) == 0 {
			return fmt.Errorf("no node types in category %q", category)
		}
		return output.WriteCatalog(cmd.OutOrStdout(), types, format)
	},
}

var handlesCmd = &cobra.Command{
	Use:   "handles <type>",
	Short: "Print the connection handles a node type resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd); err != nil {
			return err
		}

		d, err := nodetype.Builtin().Resolve(args[0])
		if err != nil {
			return err
		}

		data := map[string]any{}
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			data["mode"] = mode
		}
		handles, err := d.Handles(d.Normalize(data))
		if err != nil {
			return err
		}
		output.PrintHandles(cmd.OutOrStdout(), args[0], handles)
		return nil
	},
}

func init() {
	typesCmd.Flags().String("format", "text", "Output format: text, json or yaml")
	typesCmd.Flags().String("category", "", "Only list one category")
	handlesCmd.Flags().String("mode", "", "Switch mode: Aggregator, Broadcaster or Matrix")
}
