package injectserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moasq/wkinject/internal/config"
	"github.com/moasq/wkinject/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type textOutput struct {
	Message string `json:"message"`
}

// injectInput is the input for the inject_companion_targets tool.
type injectInput struct {
	ProjectRoot string `json:"project_root" jsonschema:"Cordova project root or its platforms/ios directory"`
	PluginDir   string `json:"plugin_dir" jsonschema:"Directory of the installed watch plugin containing src/ios/resources"`
	PluginID    string `json:"plugin_id,omitempty" jsonschema:"Plugin identifier e.g. com.example.watch. Used for the extension library search path"`
	ConfigFile  string `json:"config_file,omitempty" jsonschema:"Optional YAML file overriding target names, exclusions and build settings"`
	DryRun      bool   `json:"dry_run,omitempty" jsonschema:"Validate the injection without writing any file"`
}

func handleInject(ctx context.Context, req *mcp.CallToolRequest, input injectInput) (*mcp.CallToolResult, textOutput, error) {
	cfg, err := config.Load(config.Overrides{
		ConfigFile:  input.ConfigFile,
		ProjectRoot: input.ProjectRoot,
		PluginDir:   input.PluginDir,
		PluginID:    input.PluginID,
	})
	if err != nil {
		return nil, textOutput{}, err
	}

	report, err := service.NewService(cfg).Inject(ctx, service.InjectOpts{DryRun: input.DryRun})
	if err != nil {
		return nil, textOutput{}, err
	}

	var summary strings.Builder
	if report.DryRun {
		summary.WriteString("Dry run, nothing written.\n")
	}
	summary.WriteString(fmt.Sprintf("Project: %s\n", report.Project))
	summary.WriteString(fmt.Sprintf("Added %s (%s)\n", report.AppTarget, report.AppBundleID))
	summary.WriteString(fmt.Sprintf("Added %s (%s)\n", report.ExtensionTarget, report.ExtBundleID))
	if report.RemovedLinks > 0 {
		summary.WriteString(fmt.Sprintf("Unlinked %s from the main target\n", cfg.StaleFramework))
	}
	if len(report.Skipped) > 0 {
		summary.WriteString(fmt.Sprintf("Excluded: %s\n", strings.Join(report.Skipped, ", ")))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, textOutput{}, fmt.Errorf("failed to marshal report: %w", err)
	}
	return nil, textOutput{Message: summary.String() + "\n" + string(data)}, nil
}

// describeInput is the input for the describe_project tool.
type describeInput struct {
	ProjectRoot string `json:"project_root" jsonschema:"Cordova project root or its platforms/ios directory"`
}

func handleDescribe(ctx context.Context, req *mcp.CallToolRequest, input describeInput) (*mcp.CallToolResult, textOutput, error) {
	if input.ProjectRoot == "" {
		return nil, textOutput{}, fmt.Errorf("project_root is required")
	}
	d, err := service.Describe(ctx, input.ProjectRoot)
	if err != nil {
		return nil, textOutput{}, err
	}

	var summary strings.Builder
	summary.WriteString(d.Tree)
	if len(d.Problems) == 0 {
		summary.WriteString("\nNo problems found.\n")
	} else {
		summary.WriteString(fmt.Sprintf("\nProblems: %d\n", len(d.Problems)))
		for _, p := range d.Problems {
			summary.WriteString(fmt.Sprintf("  - %s\n", p))
		}
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, textOutput{}, fmt.Errorf("failed to marshal description: %w", err)
	}
	return nil, textOutput{Message: summary.String() + "\n" + string(data)}, nil
}
