package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/moasq/wkinject/internal/config"
	"github.com/moasq/wkinject/internal/service"
	"github.com/moasq/wkinject/internal/terminal"
	"github.com/spf13/cobra"
)

type injectOptions struct {
	projectRoot string
	pluginDir   string
	pluginID    string
	configFile  string
	hookContext string
	dryRun      bool
	json        bool
}

var injectFlags injectOptions

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Add the WatchKit app and extension targets",
	Long: `Copy the WatchKit resources from the plugin into the iOS platform and add
the companion targets to the Xcode project.

The project root and plugin directory come from flags, the config file,
WKINJECT_* environment variables or a Cordova hook context. Pass "-" to
--hook-context to read the context JSON from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hookContext, err := readHookContext(cmd.InOrStdin(), injectFlags.hookContext)
		if err != nil {
			return err
		}

		cfg, err := config.Load(config.Overrides{
			ConfigFile:  injectFlags.configFile,
			HookContext: hookContext,
			ProjectRoot: injectFlags.projectRoot,
			PluginDir:   injectFlags.pluginDir,
			PluginID:    injectFlags.pluginID,
		})
		if err != nil {
			return err
		}

		terminal.Banner(Version)
		report, err := service.NewService(cfg).Inject(cmd.Context(), service.InjectOpts{DryRun: injectFlags.dryRun})
		if err != nil {
			return err
		}

		if injectFlags.json {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return nil
	},
}

// readHookContext returns the hook context JSON named by the flag: a file
// path, "-" for stdin, or nothing.
func readHookContext(stdin io.Reader, source string) ([]byte, error) {
	switch source {
	case "":
		return nil, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read hook context from stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read hook context: %w", err)
		}
		return data, nil
	}
}

func init() {
	f := injectCmd.Flags()
	f.StringVar(&injectFlags.projectRoot, "project-root", "", "Cordova project root or iOS platform directory")
	f.StringVar(&injectFlags.pluginDir, "plugin-dir", "", "Directory of the installed watch plugin")
	f.StringVar(&injectFlags.pluginID, "plugin-id", "", "Plugin identifier, used for the extension library search path")
	f.StringVar(&injectFlags.configFile, "config", "", "YAML file with target names, exclusions and build settings")
	f.StringVar(&injectFlags.hookContext, "hook-context", "", "Cordova hook context JSON file, or - for stdin")
	f.BoolVar(&injectFlags.dryRun, "dry-run", false, "Build and validate the new project graph without writing anything")
	f.BoolVar(&injectFlags.json, "json", false, "Print the injection report as JSON")
}
