/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hapi-server/hapitable/core/rendering"
)

func newRenderCommand(a *app) *cobra.Command {
	var column string
	var columns []string

	renderCommand := &cobra.Command{
		Use:   "render <value> [row values...]",
		Short: "Render one table cell",
		Long: `Render the display HTML of one cell.

With --columns, the remaining arguments are the row, one value per column,
and the view links of identifier columns are resolved from it:

	$ hapitable render --column id --columns server,id CDAWeb CDAWeb AC_H0_MFI
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, row := args[0], rendering.Row(args[1:])
			cols := columns
			if len(cols) == 0 {
				cols = []string{column}
				row = rendering.Row{value}
			} else if len(row) != len(cols) {
				return fmt.Errorf("got %d row values for %d columns", len(row), len(cols))
			}

			cfg, err := a.settings.Rendering(cols)
			if err != nil {
				return err
			}
			index := cfg.Index(column)
			if index < 0 {
				return fmt.Errorf("column %q is not one of --columns", column)
			}
			out := rendering.Strategy(column, cfg)(value, rendering.PhaseDisplay, row, rendering.Meta{Column: column, Index: index})
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	renderCommand.Flags().StringVar(&column, "column", "", "set the column the value belongs to")
	renderCommand.Flags().StringSliceVar(&columns, "columns", nil, "set the grid columns, in row order")
	renderCommand.Flags().String("escape", "none", "set the escape policy of cell values (none, html)")
	renderCommand.Flags().String("explorer-url", "", "set the base URL of the data explorer")
	_ = renderCommand.MarkFlagRequired("column")
	return renderCommand
}

func newBinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bins <value>",
		Short: "Format a bins summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), rendering.FormatBins(args[0]))
			return nil
		},
	}
}
