package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moasq/wkinject/internal/pbx/pbxtest"
	"github.com/moasq/wkinject/internal/service"
	"github.com/moasq/wkinject/internal/terminal"
)

func TestReadHookContext(t *testing.T) {
	file := filepath.Join(t.TempDir(), "context.json")
	if err := os.WriteFile(file, []byte(`{"opts":{"projectRoot":"/tmp/app"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		source string
		stdin  string
		want   string
	}{
		{name: "none", source: "", stdin: "ignored", want: ""},
		{name: "stdin", source: "-", stdin: `{"plugin":{"id":"x"}}`, want: `{"plugin":{"id":"x"}}`},
		{name: "file", source: file, want: `{"opts":{"projectRoot":"/tmp/app"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readHookContext(strings.NewReader(tt.stdin), tt.source)
			if err != nil {
				t.Fatalf("readHookContext: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadHookContextMissingFile(t *testing.T) {
	_, err := readHookContext(strings.NewReader(""), filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "hook context") {
		t.Errorf("error = %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"inject", "inspect", "mcp"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
	for _, flag := range []string{"project-root", "plugin-dir", "plugin-id", "config", "hook-context", "dry-run"} {
		if injectCmd.Flags().Lookup(flag) == nil {
			t.Errorf("inject is missing --%s", flag)
		}
	}
}

func TestInjectCommandReadsHookContextFromStdin(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"WKINJECT_PROJECT_ROOT", "WKINJECT_PLUGIN_DIR", "WKINJECT_PLUGIN_ID"} {
		t.Setenv(k, "")
	}
	prev := terminal.SetOutput(io.Discard)
	t.Cleanup(func() {
		terminal.SetOutput(prev)
		injectFlags = injectOptions{}
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	l := pbxtest.NewLayout(t)
	before, err := os.ReadFile(l.PBXPath)
	if err != nil {
		t.Fatal(err)
	}
	hook := fmt.Sprintf(`{"hook":"after_prepare","opts":{"projectRoot":%q,"plugin":{"id":%q,"dir":%q},"cordova":{"platforms":["ios"]}}}`,
		l.Base, pbxtest.PluginID, l.PluginDir)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(hook))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inject", "--hook-context", "-", "--dry-run", "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("inject: %v", err)
	}

	var report service.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out.String())
	}
	if report.AppTarget != "My_App WatchKit App" || report.ExtensionTarget != "My_App WatchKit Extension" {
		t.Errorf("report targets = %q, %q", report.AppTarget, report.ExtensionTarget)
	}
	if !report.DryRun {
		t.Error("expected a dry-run report")
	}

	after, _ := os.ReadFile(l.PBXPath)
	if !bytes.Equal(before, after) {
		t.Error("dry run changed the project file")
	}
}
