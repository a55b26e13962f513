package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidscript/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateFormat(format)
			if err != nil {
				return err
			}
			statuses := deps.CheckSystem(ctx.config)
			missing := deps.Missing(statuses)

			ok, err := writeStructured(cmd, format, statuses)
			if err != nil {
				return err
			}
			if !ok {
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{
						status.Name,
						yesNo(status.Available),
						yesNo(status.Optional),
						status.Detail,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Dependency", "Available", "Optional", "Detail"},
					rows,
					nil,
				))
			}
			if len(missing) > 0 {
				return fmt.Errorf("%d required dependencies missing", len(missing))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	return cmd
}
