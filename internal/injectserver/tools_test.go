package injectserver

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/moasq/wkinject/internal/pbx/pbxtest"
	"github.com/moasq/wkinject/internal/terminal"
)

func TestMain(m *testing.M) {
	terminal.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestHandleInjectDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	l := pbxtest.NewLayout(t)
	before, err := os.ReadFile(l.PBXPath)
	if err != nil {
		t.Fatal(err)
	}

	_, out, err := handleInject(context.Background(), nil, injectInput{
		ProjectRoot: l.Base,
		PluginDir:   l.PluginDir,
		PluginID:    pbxtest.PluginID,
		DryRun:      true,
	})
	if err != nil {
		t.Fatalf("handleInject: %v", err)
	}

	checks := []string{
		"Dry run, nothing written.",
		"Added My_App WatchKit App (com.example.myapp.watchkitapp)",
		"Added My_App WatchKit Extension (com.example.myapp.watchkitapp.watchkitextension)",
		"Unlinked libMMWormhole-watchos.a",
		`"dry_run": true`,
	}
	for _, want := range checks {
		if !strings.Contains(out.Message, want) {
			t.Errorf("message missing %q:\n%s", want, out.Message)
		}
	}

	after, _ := os.ReadFile(l.PBXPath)
	if string(before) != string(after) {
		t.Error("dry run changed the project file")
	}
}

func TestHandleInjectRequiresPluginDir(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WKINJECT_PLUGIN_DIR", "")
	l := pbxtest.NewLayout(t)

	_, _, err := handleInject(context.Background(), nil, injectInput{ProjectRoot: l.Root})
	if err == nil || !strings.Contains(err.Error(), "PluginDir") {
		t.Errorf("error = %v", err)
	}
}

func TestHandleDescribe(t *testing.T) {
	l := pbxtest.NewLayout(t)

	_, out, err := handleDescribe(context.Background(), nil, describeInput{ProjectRoot: l.Root})
	if err != nil {
		t.Fatalf("handleDescribe: %v", err)
	}
	for _, want := range []string{"MyApp.xcodeproj", "No problems found.", `"name": "MyApp"`} {
		if !strings.Contains(out.Message, want) {
			t.Errorf("message missing %q:\n%s", want, out.Message)
		}
	}
}

func TestHandleDescribeRequiresRoot(t *testing.T) {
	if _, _, err := handleDescribe(context.Background(), nil, describeInput{}); err == nil {
		t.Error("expected an error without project_root")
	}
}
