package pbxtest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lithammer/dedent"
)

// DisplayName is the bundle display name of the Cordova layout's app.
const DisplayName = "My App"

// Layout is a Cordova iOS platform directory next to an installed watch
// plugin.
type Layout struct {
	// Base is the Cordova project root.
	Base      string
	Root      string
	PluginDir string
	PBXPath   string
}

// NewLayout writes SingleTarget under <base>/platforms/ios together with the
// app's Info.plist, and a plugin carrying WatchKit app and extension
// templates with placeholders.
func NewLayout(t testing.TB) Layout {
	t.Helper()
	base := t.TempDir()
	l := Layout{
		Base:      base,
		Root:      filepath.Join(base, "platforms", "ios"),
		PluginDir: filepath.Join(base, "plugins", PluginID),
	}
	l.PBXPath = WriteProject(t, l.Root, SingleTarget())
	Put(t, filepath.Join(l.Root, ProjectName, ProjectName+"-Info.plist"), mainPlist)

	res := filepath.Join(l.PluginDir, "src", "ios", "resources")
	Put(t, filepath.Join(res, "watchkitapp", "Info.plist"), companionPlist(".watchkitapp"))
	Put(t, filepath.Join(res, "watchkitapp", "Icon.png"), "png")
	Put(t, filepath.Join(res, "watchkitapp", "Controller.swift"), "class Controller {}\n")
	Put(t, filepath.Join(res, "watchkitapp", "Controller.h"), "")
	Put(t, filepath.Join(res, "watchkitapp", "Base.lproj", "Interface.storyboard"), "<document/>\n")
	Put(t, filepath.Join(res, "watchkitextension", "Info.plist"), companionPlist(".watchkitapp.watchkitextension"))
	Put(t, filepath.Join(res, "watchkitextension", "ExtensionDelegate.swift"), "class ExtensionDelegate {}\n")
	Put(t, filepath.Join(res, "watchkitextension", "ExtensionDelegate.h"), "")
	Put(t, filepath.Join(res, "watchkitextension.entitlements"), "<plist/>\n")
	return l
}

// Put writes content to path, creating parent directories.
func Put(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

var mainPlist = strings.TrimLeft(dedent.Dedent(`
	<?xml version="1.0" encoding="UTF-8"?>
	<plist version="1.0">
	<dict>
		<key>CFBundleDisplayName</key>
		<string>`+DisplayName+`</string>
		<key>CFBundleIdentifier</key>
		<string>com.example.myapp</string>
		<key>CFBundleShortVersionString</key>
		<string>1.4.0</string>
		<key>CFBundleVersion</key>
		<string>9</string>
	</dict>
	</plist>
`), "\n")

func companionPlist(suffix string) string {
	return strings.TrimLeft(dedent.Dedent(`
		<?xml version="1.0" encoding="UTF-8"?>
		<plist version="1.0">
		<dict>
			<key>CFBundleDisplayName</key>
			<string>__DISPLAY_NAME__</string>
			<key>CFBundleIdentifier</key>
			<string>__APP_IDENTIFIER__`+suffix+`</string>
			<key>CFBundleShortVersionString</key>
			<string>__BUNDLE_SHORT_VERSION_STRING__</string>
			<key>CFBundleVersion</key>
			<string>__BUNDLE_VERSION__</string>
		</dict>
		</plist>
	`), "\n")
}
