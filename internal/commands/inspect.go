package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/moasq/wkinject/internal/service"
	"github.com/moasq/wkinject/internal/terminal"
	"github.com/spf13/cobra"
)

var inspectFlags struct {
	projectRoot string
	json        bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the targets and groups of the iOS project",
	Long:  "Load the Xcode project, print its group tree and targets, and report any structural problems in the object graph.",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := inspectFlags.projectRoot
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			root = wd
		}

		d, err := service.Describe(cmd.Context(), root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if inspectFlags.json {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}

		fmt.Fprint(out, d.Tree)
		terminal.Divider()
		if len(d.Problems) == 0 {
			terminal.Success(fmt.Sprintf("%d objects, %d targets, no problems", d.Objects, len(d.Targets)))
			return nil
		}
		for _, p := range d.Problems {
			terminal.Warning(p)
		}
		return fmt.Errorf("%d problems found in %s", len(d.Problems), d.PBXPath)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFlags.projectRoot, "project-root", "", "Cordova project root or iOS platform directory (default: current directory)")
	inspectCmd.Flags().BoolVar(&inspectFlags.json, "json", false, "Print the description as JSON")
}
