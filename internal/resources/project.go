// Package resources stages the companion resource trees into a Cordova iOS
// platform directory and reads the property lists that drive the run.
package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout of the plugin and the platform directory.
const (
	WatchKitAppDir       = "watchkitapp"
	WatchKitExtensionDir = "watchkitextension"
	EntitlementsFile     = "watchkitextension.entitlements"
	PluginResourcesDir   = "src/ios/resources"
)

// Project is a located iOS platform directory.
type Project struct {
	Root      string
	Name      string
	XcodeProj string
}

// DetectProject finds the single .xcodeproj directly under root.
func DetectProject(root string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	projPath, err := FindDir(absRoot, ".xcodeproj")
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:      absRoot,
		Name:      strings.TrimSuffix(filepath.Base(projPath), ".xcodeproj"),
		XcodeProj: projPath,
	}, nil
}

// FindDir returns the one directory in root whose name ends with suffix.
func FindDir(root, suffix string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", root, err)
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			matches = append(matches, filepath.Join(root, e.Name()))
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s directory found in %s", suffix, root)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("expected one %s directory in %s, found %d", suffix, root, len(matches))
	}
}

// PBXPath is the project file inside the .xcodeproj bundle.
func (p *Project) PBXPath() string {
	return filepath.Join(p.XcodeProj, "project.pbxproj")
}

// InfoPlistPath is the main application's Info.plist.
func (p *Project) InfoPlistPath() string {
	return filepath.Join(p.Root, p.Name, p.Name+"-Info.plist")
}

// PluginDir is where Cordova installs a plugin's native files, relative to
// the project root.
func (p *Project) PluginDir(pluginID string) string {
	return filepath.ToSlash(filepath.Join(p.Name, "Plugins", pluginID))
}

// CompanionDir names the directory a companion's resources are copied to,
// relative to the project root: "<display> watchkitapp".
func CompanionDir(displayName, kind string) string {
	return displayName + " " + kind
}

// Rel returns target relative to the project root in slash form.
func (p *Project) Rel(target string) (string, error) {
	rel, err := filepath.Rel(p.Root, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
