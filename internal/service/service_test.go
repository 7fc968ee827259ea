package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moasq/wkinject/internal/config"
	"github.com/moasq/wkinject/internal/inject"
	"github.com/moasq/wkinject/internal/pbx"
	"github.com/moasq/wkinject/internal/pbx/pbxtest"
	"github.com/moasq/wkinject/internal/terminal"
)

func TestMain(m *testing.M) {
	terminal.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func layoutConfig(l pbxtest.Layout) *config.Config {
	cfg := config.Default()
	cfg.ProjectRoot = l.Root
	cfg.PluginDir = l.PluginDir
	cfg.PluginID = pbxtest.PluginID
	return cfg
}

func TestInjectEndToEnd(t *testing.T) {
	l := pbxtest.NewLayout(t)
	report, err := NewService(layoutConfig(l)).Inject(context.Background(), InjectOpts{})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}

	if report.DisplayName != "My_App" || report.AppTarget != "My_App WatchKit App" || report.ExtensionTarget != "My_App WatchKit Extension" {
		t.Errorf("report names = %+v", report)
	}
	if report.AppBundleID != "com.example.myapp.watchkitapp" || report.ExtBundleID != "com.example.myapp.watchkitapp.watchkitextension" {
		t.Errorf("bundle ids = %q, %q", report.AppBundleID, report.ExtBundleID)
	}
	if report.RemovedLinks != 1 {
		t.Errorf("RemovedLinks = %d", report.RemovedLinks)
	}

	plist, err := os.ReadFile(filepath.Join(l.Root, "My_App watchkitapp", "Info.plist"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(plist), "__") || !strings.Contains(string(plist), "1.4.0") {
		t.Errorf("app Info.plist not rendered:\n%s", plist)
	}
	if _, err := os.Stat(filepath.Join(l.Root, "My_App watchkitapp", "Base.lproj", "Interface.storyboard")); err != nil {
		t.Errorf("storyboard not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.Root, "MyApp", "watchkitextension.entitlements")); err != nil {
		t.Errorf("entitlements not copied: %v", err)
	}

	g, err := pbx.Load(l.PBXPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("saved graph invalid: %v", err)
	}
	if n := len(g.NativeTargets()); n != 3 {
		t.Errorf("saved graph has %d targets", n)
	}
	ext, err := g.TargetByName("My_App WatchKit Extension")
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := g.Object(ext.BuildConfigurationList)
	list := obj.(*pbx.ConfigurationList)
	obj, _ = g.Object(list.BuildConfigurations[0])
	settings := obj.(*pbx.BuildConfiguration).BuildSettings
	if settings["CODE_SIGN_ENTITLEMENTS"] != "MyApp/watchkitextension.entitlements" {
		t.Errorf("CODE_SIGN_ENTITLEMENTS = %v", settings["CODE_SIGN_ENTITLEMENTS"])
	}
	if settings["INFOPLIST_FILE"] != "My_App watchkitextension/Info.plist" {
		t.Errorf("INFOPLIST_FILE = %v", settings["INFOPLIST_FILE"])
	}
}

func TestInjectDryRunWritesNothing(t *testing.T) {
	l := pbxtest.NewLayout(t)
	before, err := os.ReadFile(l.PBXPath)
	if err != nil {
		t.Fatal(err)
	}

	report, err := NewService(layoutConfig(l)).Inject(context.Background(), InjectOpts{DryRun: true})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if !report.DryRun || len(report.Written) != 0 {
		t.Errorf("report = %+v", report)
	}

	after, err := os.ReadFile(l.PBXPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("dry run modified the project file")
	}
	if _, err := os.Stat(filepath.Join(l.Root, "My_App watchkitapp")); !os.IsNotExist(err) {
		t.Errorf("dry run copied resources: %v", err)
	}
}

func TestInjectReportsProjectRelativePaths(t *testing.T) {
	l := pbxtest.NewLayout(t)
	var buf bytes.Buffer
	prev := terminal.SetOutput(&buf)
	t.Cleanup(func() { terminal.SetOutput(prev) })

	if _, err := NewService(layoutConfig(l)).Inject(context.Background(), InjectOpts{DryRun: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewService(layoutConfig(l)).Inject(context.Background(), InjectOpts{}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"would copy My_App watchkitapp (",
		"would write MyApp.xcodeproj/project.pbxproj",
		"Copied My_App watchkitextension",
		"Copied MyApp/watchkitextension.entitlements",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, l.Root) {
		t.Errorf("output leaks absolute paths:\n%s", out)
	}
}

func TestInjectSecondRunRejected(t *testing.T) {
	l := pbxtest.NewLayout(t)
	svc := NewService(layoutConfig(l))
	if _, err := svc.Inject(context.Background(), InjectOpts{}); err != nil {
		t.Fatal(err)
	}
	saved, err := os.ReadFile(l.PBXPath)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Inject(context.Background(), InjectOpts{})
	if !errors.Is(err, inject.ErrAlreadyInjected) {
		t.Fatalf("second run: expected ErrAlreadyInjected, got %v", err)
	}
	again, _ := os.ReadFile(l.PBXPath)
	if !bytes.Equal(saved, again) {
		t.Error("rejected run rewrote the project file")
	}
}

func TestInjectMissingMainTargetWritesNothing(t *testing.T) {
	l := pbxtest.NewLayout(t)
	cfg := layoutConfig(l)
	cfg.MainTarget = "NotThere"

	_, err := NewService(cfg).Inject(context.Background(), InjectOpts{})
	if !errors.Is(err, pbx.ErrMissingNode) {
		t.Fatalf("expected ErrMissingNode, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.Root, "My_App watchkitapp")); !os.IsNotExist(err) {
		t.Error("resources copied although injection failed")
	}
}

func TestInjectFromCordovaRoot(t *testing.T) {
	l := pbxtest.NewLayout(t)
	cfg := layoutConfig(l)
	cfg.ProjectRoot = l.Base

	report, err := NewService(cfg).Inject(context.Background(), InjectOpts{DryRun: true})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if report.Project != "MyApp" {
		t.Errorf("Project = %q", report.Project)
	}
}

func TestInjectSkipsOtherPlatforms(t *testing.T) {
	l := pbxtest.NewLayout(t)
	cfg := layoutConfig(l)
	cfg.Platforms = []string{"android"}

	report, err := NewService(cfg).Inject(context.Background(), InjectOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if !report.NotApplicable {
		t.Error("expected a not-applicable report")
	}
}

func TestInjectHonoursCancellation(t *testing.T) {
	l := pbxtest.NewLayout(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewService(layoutConfig(l)).Inject(ctx, InjectOpts{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInjectMissingEntitlements(t *testing.T) {
	l := pbxtest.NewLayout(t)
	if err := os.Remove(filepath.Join(l.PluginDir, "src", "ios", "resources", "watchkitextension.entitlements")); err != nil {
		t.Fatal(err)
	}
	_, err := NewService(layoutConfig(l)).Inject(context.Background(), InjectOpts{})
	if err == nil || !strings.Contains(err.Error(), "entitlements") {
		t.Errorf("error = %v", err)
	}
}

func TestDescribe(t *testing.T) {
	l := pbxtest.NewLayout(t)
	if _, err := NewService(layoutConfig(l)).Inject(context.Background(), InjectOpts{}); err != nil {
		t.Fatal(err)
	}

	d, err := Describe(context.Background(), l.Root)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(d.Targets) != 3 {
		t.Fatalf("described %d targets", len(d.Targets))
	}
	if len(d.Problems) != 0 {
		t.Errorf("problems = %v", d.Problems)
	}

	deps := map[string][]string{}
	for _, target := range d.Targets {
		deps[target.Name] = target.Dependencies
	}
	if got := deps["MyApp"]; len(got) != 1 || got[0] != "My_App WatchKit App" {
		t.Errorf("MyApp dependencies = %v", got)
	}
	if got := deps["My_App WatchKit App"]; len(got) != 1 || got[0] != "My_App WatchKit Extension" {
		t.Errorf("app dependencies = %v", got)
	}
	for _, want := range []string{"MyApp.xcodeproj", "My_App WatchKit App", "Embed Watch Content [dst 16]"} {
		if !strings.Contains(d.Tree, want) {
			t.Errorf("tree missing %q:\n%s", want, d.Tree)
		}
	}
}

func TestDescribeReportsProblems(t *testing.T) {
	l := pbxtest.NewLayout(t)
	data, err := os.ReadFile(l.PBXPath)
	if err != nil {
		t.Fatal(err)
	}
	// Drop main.m from its group so its build file is no longer reachable.
	broken := strings.Replace(string(data), "29B97316FDCFA39411CA2CEA /* main.m */,\n", "", 1)
	if broken == string(data) {
		t.Fatal("fixture edit did not apply")
	}
	pbxtest.Put(t, l.PBXPath, broken)

	d, err := Describe(context.Background(), l.Root)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Problems) != 1 || !strings.Contains(d.Problems[0], "main.m") {
		t.Errorf("problems = %v", d.Problems)
	}
}
