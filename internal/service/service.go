package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moasq/wkinject/internal/config"
	"github.com/moasq/wkinject/internal/inject"
	"github.com/moasq/wkinject/internal/pbx"
	"github.com/moasq/wkinject/internal/resources"
	"github.com/moasq/wkinject/internal/terminal"
	"github.com/moasq/wkinject/internal/watchkit"
)

// Service runs injections and project inspections for the CLI and the MCP
// server.
type Service struct {
	config *config.Config
}

// NewService creates a new service.
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// InjectOpts holds per-call switches.
type InjectOpts struct {
	// DryRun computes and validates the new graph without writing anything.
	DryRun bool
}

// Report summarises one injection.
type Report struct {
	Project         string   `json:"project"`
	PBXPath         string   `json:"pbxproj"`
	DisplayName     string   `json:"display_name"`
	AppTarget       string   `json:"app_target"`
	ExtensionTarget string   `json:"extension_target"`
	AppBundleID     string   `json:"app_bundle_id"`
	ExtBundleID     string   `json:"extension_bundle_id"`
	Written         []string `json:"written,omitempty"`
	Skipped         []string `json:"skipped,omitempty"`
	RemovedLinks    int      `json:"removed_links"`
	DryRun          bool     `json:"dry_run"`
	// NotApplicable is set when the hook context names no iOS platform.
	NotApplicable bool `json:"not_applicable,omitempty"`
}

// plan is everything derived from the project and the plugin before the
// graph is touched.
type plan struct {
	project  *resources.Project
	bundle   *resources.BundleInfo
	display  string
	app      companionPlan
	ext      companionPlan
	entSrc   string
	entDst   string
	pluginID string
}

type companionPlan struct {
	kind     string
	src      string
	dst      string
	files    []string
	bundleID string
}

const stageCount = 5

// Inject adds the companion targets to the configured project. The graph is
// mutated and validated in memory first; resources are copied and the
// project file replaced only when that succeeds.
func (s *Service) Inject(ctx context.Context, opts InjectOpts) (*Report, error) {
	cfg := s.config
	if !cfg.TargetsPlatform("ios") {
		terminal.Info("Hook context does not target iOS, nothing to do")
		return &Report{NotApplicable: true, DryRun: opts.DryRun}, nil
	}

	terminal.Header("WatchKit companion injection")

	terminal.Step(1, stageCount, "Locating project")
	p, err := s.plan()
	if err != nil {
		return nil, err
	}
	terminal.Detail("Project", p.project.Name)
	terminal.Detail("Display name", p.display)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terminal.Step(2, stageCount, "Loading project graph")
	g, err := pbx.Load(p.project.PBXPath())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terminal.Step(3, stageCount, "Injecting companion targets")
	req := s.request(p)
	res, err := inject.Inject(g, req)
	if err != nil {
		return nil, fmt.Errorf("failed to inject companion targets: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("injected graph is inconsistent: %w", err)
	}
	for _, skipped := range res.Skipped {
		terminal.Detail("Excluded", skipped)
	}
	if len(res.Removed) > 0 {
		terminal.Info(fmt.Sprintf("Unlinked %s from %s", cfg.StaleFramework, req.MainTarget))
	}

	report := &Report{
		Project:         p.project.Name,
		PBXPath:         p.project.PBXPath(),
		DisplayName:     p.display,
		AppTarget:       req.App.Name,
		ExtensionTarget: req.Extension.Name,
		AppBundleID:     p.app.bundleID,
		ExtBundleID:     p.ext.bundleID,
		Skipped:         res.Skipped,
		RemovedLinks:    len(res.Removed),
		DryRun:          opts.DryRun,
	}

	if opts.DryRun {
		for _, c := range []companionPlan{p.app, p.ext} {
			terminal.DryRun(fmt.Sprintf("would copy %s (%d entries)", p.rel(c.dst), len(c.files)))
		}
		terminal.DryRun("would copy " + p.rel(p.entDst))
		terminal.DryRun("would write " + p.rel(p.project.PBXPath()))
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terminal.Step(4, stageCount, "Copying WatchKit resources")
	written, err := s.stage(p)
	report.Written = written
	if err != nil {
		return report, err
	}

	terminal.Step(5, stageCount, "Writing project file")
	if err := g.Save(p.project.PBXPath()); err != nil {
		return report, err
	}
	report.Written = append(report.Written, p.project.PBXPath())

	terminal.Success(fmt.Sprintf("Added %s and %s", req.App.Name, req.Extension.Name))
	return report, nil
}

func (s *Service) plan() (*plan, error) {
	cfg := s.config
	project, err := locateProject(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	bundle, err := resources.ReadBundleInfo(project.InfoPlistPath())
	if err != nil {
		return nil, err
	}

	p := &plan{
		project:  project,
		bundle:   bundle,
		display:  bundle.SafeDisplayName(),
		pluginID: cfg.PluginID,
		entSrc:   filepath.Join(cfg.PluginDir, resources.PluginResourcesDir, resources.EntitlementsFile),
		entDst:   filepath.Join(project.Root, project.Name, resources.EntitlementsFile),
	}
	if _, err := os.Stat(p.entSrc); err != nil {
		return nil, fmt.Errorf("failed to find entitlements template: %w", err)
	}

	values := bundle.Placeholders()
	if p.app, err = companion(cfg.PluginDir, project.Root, p.display, resources.WatchKitAppDir, values); err != nil {
		return nil, err
	}
	if p.ext, err = companion(cfg.PluginDir, project.Root, p.display, resources.WatchKitExtensionDir, values); err != nil {
		return nil, err
	}
	return p, nil
}

// companion lists a resource template and reads the bundle identifier its
// Info.plist will carry once the placeholders are filled in.
func companion(pluginDir, root, display, kind string, values map[string]string) (companionPlan, error) {
	c := companionPlan{
		kind: kind,
		src:  filepath.Join(pluginDir, resources.PluginResourcesDir, kind),
		dst:  filepath.Join(root, resources.CompanionDir(display, kind)),
	}
	files, err := resources.ListFiles(c.src)
	if err != nil {
		return c, err
	}
	c.files = files

	template, err := os.ReadFile(filepath.Join(c.src, "Info.plist"))
	if err != nil {
		return c, fmt.Errorf("failed to read %s Info.plist template: %w", kind, err)
	}
	rendered := resources.RenderPlaceholders(template, values)
	c.bundleID, err = resources.BundleIdentifierFrom(rendered, kind+"/Info.plist")
	return c, err
}

// locateProject accepts either the iOS platform directory or the Cordova
// project root above it.
func locateProject(root string) (*resources.Project, error) {
	project, err := resources.DetectProject(root)
	if err == nil {
		return project, nil
	}
	platform := filepath.Join(root, "platforms", "ios")
	if info, statErr := os.Stat(platform); statErr == nil && info.IsDir() {
		return resources.DetectProject(platform)
	}
	return nil, err
}

func (s *Service) request(p *plan) inject.Request {
	cfg := s.config
	appName := p.display + " WatchKit App"
	extName := p.display + " WatchKit Extension"
	appDir := resources.CompanionDir(p.display, resources.WatchKitAppDir)
	extDir := resources.CompanionDir(p.display, resources.WatchKitExtensionDir)
	entitlements := p.project.Name + "/" + resources.EntitlementsFile

	var pluginDir string
	if p.pluginID != "" {
		pluginDir = p.project.PluginDir(p.pluginID)
	}

	frameworks := cfg.Frameworks
	if len(frameworks) == 0 {
		frameworks = watchkit.DefaultFrameworks(pluginDir, cfg.StaleFramework)
	}

	mainTarget := cfg.MainTarget
	if mainTarget == "" {
		mainTarget = p.project.Name
	}

	return inject.Request{
		MainTarget:      mainTarget,
		RootGroup:       cfg.RootGroup,
		ProductsGroup:   cfg.ProductsGroup,
		FrameworksGroup: cfg.FrameworksGroup,
		App: inject.Companion{
			Name:      appName,
			Dir:       appDir,
			Files:     p.app.files,
			Excludes:  cfg.AppExcludes,
			BundleID:  p.app.bundleID,
			PlistPath: appDir + "/Info.plist",
		},
		Extension: inject.Companion{
			Name:         extName,
			Dir:          extDir,
			Files:        p.ext.files,
			Excludes:     cfg.ExtensionExcludes,
			BundleID:     p.ext.bundleID,
			PlistPath:    extDir + "/Info.plist",
			Entitlements: entitlements,
		},
		Storyboard:     inject.Storyboard{Name: cfg.Storyboard, Locale: cfg.StoryboardLocale},
		StaleFramework: cfg.StaleFramework,
		Frameworks:     frameworks,
		AppAttributes: watchkit.AppAttributes(watchkit.Options{
			DisplayName: p.display,
			InfoPlist:   appDir + "/Info.plist",
			BundleID:    p.app.bundleID,
		}, cfg.App),
		ExtensionAttributes: watchkit.ExtensionAttributes(watchkit.Options{
			DisplayName:  p.display,
			InfoPlist:    extDir + "/Info.plist",
			BundleID:     p.ext.bundleID,
			Entitlements: entitlements,
			PluginDir:    pluginDir,
		}, cfg.Extension),
	}
}

// stage copies both resource trees and the entitlements file and fills in
// the placeholders of the copied Info.plist files. It returns what it wrote, even on failure.
func (s *Service) stage(p *plan) ([]string, error) {
	var written []string
	for _, c := range []companionPlan{p.app, p.ext} {
		if err := resources.CopyDir(c.src, c.dst); err != nil {
			return written, fmt.Errorf("failed to copy %s resources: %w", c.kind, err)
		}
		written = append(written, c.dst)
		infoPlist := filepath.Join(c.dst, "Info.plist")
		if err := resources.ReplacePlaceholders(infoPlist, p.bundle.Placeholders()); err != nil {
			return written, err
		}
		id, err := resources.BundleIdentifier(infoPlist)
		if err != nil {
			return written, err
		}
		if id != c.bundleID {
			return written, fmt.Errorf("%s has bundle identifier %q, the targets were built for %q", p.rel(infoPlist), id, c.bundleID)
		}
		terminal.Success("Copied " + p.rel(c.dst))
	}
	if err := resources.CopyFile(p.entSrc, p.entDst); err != nil {
		return written, fmt.Errorf("failed to copy entitlements: %w", err)
	}
	written = append(written, p.entDst)
	terminal.Success("Copied " + p.rel(p.entDst))
	return written, nil
}

// rel shortens a path under the project root for messages.
func (p *plan) rel(path string) string {
	if r, err := p.project.Rel(path); err == nil {
		return r
	}
	return path
}
