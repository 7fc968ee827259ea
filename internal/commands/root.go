package commands

import (
	"github.com/moasq/wkinject/internal/terminal"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "wkinject",
	Short:         "Inject a WatchKit companion app into a Cordova iOS project",
	Long:          "wkinject adds a WatchKit app and WatchKit extension target to the Xcode project of a Cordova iOS platform. It runs as an after_prepare hook or by hand.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		terminal.SetQuiet(quietFlag)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")

	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(mcpCmd)
}

// quietFlag holds the --quiet flag value.
var quietFlag bool
