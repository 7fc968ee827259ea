// Package injectserver exposes companion injection and project inspection
// as MCP tools.
package injectserver

import (
	"context"

	"github.com/moasq/wkinject/internal/terminal"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Run starts the injection MCP server over stdio.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	// stdout belongs to the transport.
	terminal.SetQuiet(true)

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "wkinject",
			Version: "v1.0.0",
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inject_companion_targets",
		Description: "Add a WatchKit app and WatchKit extension target to the Xcode project of a Cordova iOS platform. Copies the plugin's watchkitapp and watchkitextension resources, embeds the watch app in the main target and wires the target dependencies. Fails without writing anything if the companion targets already exist. Example: inject_companion_targets(project_root: \"/src/app\", plugin_dir: \"/src/app/plugins/com.example.watch\", dry_run: true)",
	}, handleInject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_project",
		Description: "Describe the Xcode project of a Cordova iOS platform. Returns the group tree, every target with its build phases and dependencies, and any structural problems in the object graph. Read-only.",
	}, handleDescribe)

	return server.Run(ctx, &mcp.StdioTransport{})
}
