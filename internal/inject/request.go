package inject

import (
	"path"

	"github.com/moasq/wkinject/internal/pbx"
	"github.com/moasq/wkinject/internal/watchkit"
)

// Defaults for the names a Cordova iOS platform project uses.
const (
	DefaultRootGroup       = "CustomTemplate"
	DefaultProductsGroup   = "Products"
	DefaultFrameworksGroup = "Frameworks"
	DefaultStoryboard      = "Interface.storyboard"
	DefaultLocale          = "Base"
	DefaultStaleFramework  = "libMMWormhole-watchos.a"
)

// Default exclusion patterns, in gitignore syntax. Localized content of the
// app is registered through variant groups instead.
var (
	DefaultAppExcludes       = []string{"Base.lproj", "*.h"}
	DefaultExtensionExcludes = []string{"*.h"}
)

// Companion describes one of the two targets to add.
type Companion struct {
	// Name is the target name, e.g. "MyApp WatchKit App".
	Name string
	// Dir is the directory holding the copied resources, relative to the
	// project root. It becomes the path of the target's group.
	Dir string
	// Files are the entries of Dir, relative to Dir. Nested paths use "/".
	Files []string
	// Excludes are gitignore-style patterns; matching files get neither a
	// build file nor a place in the group.
	Excludes []string
	BundleID string
	// PlistPath is the target's Info.plist relative to the project root.
	PlistPath string
	// Entitlements is the code signing entitlements file relative to the
	// project root. Optional.
	Entitlements string
}

// Storyboard is the one localized resource of the companion app.
type Storyboard struct {
	Name   string
	Locale string
}

// Path is the storyboard path relative to the app directory.
func (s Storyboard) Path() string {
	return path.Join(s.Locale+".lproj", s.Name)
}

// Request is the input of Inject.
type Request struct {
	MainTarget      string
	RootGroup       string
	ProductsGroup   string
	FrameworksGroup string

	App       Companion
	Extension Companion

	Storyboard Storyboard

	// StaleFramework is removed from the main target's frameworks phase; it
	// is only linked into the extension.
	StaleFramework string
	// Frameworks is the link set of the extension.
	Frameworks []watchkit.Framework

	AppAttributes       watchkit.Attributes
	ExtensionAttributes watchkit.Attributes
}

func (r Request) withDefaults() Request {
	if r.RootGroup == "" {
		r.RootGroup = DefaultRootGroup
	}
	if r.ProductsGroup == "" {
		r.ProductsGroup = DefaultProductsGroup
	}
	if r.FrameworksGroup == "" {
		r.FrameworksGroup = DefaultFrameworksGroup
	}
	if r.Storyboard.Name == "" {
		r.Storyboard.Name = DefaultStoryboard
	}
	if r.Storyboard.Locale == "" {
		r.Storyboard.Locale = DefaultLocale
	}
	if r.StaleFramework == "" {
		r.StaleFramework = DefaultStaleFramework
	}
	if r.App.Excludes == nil {
		r.App.Excludes = DefaultAppExcludes
	}
	if r.Extension.Excludes == nil {
		r.Extension.Excludes = DefaultExtensionExcludes
	}
	if r.Frameworks == nil {
		r.Frameworks = watchkit.DefaultFrameworks("", r.StaleFramework)
	}
	if r.AppAttributes.ProductType == "" {
		r.AppAttributes.ProductType = watchkit.ProductTypeWatchApp
	}
	if r.ExtensionAttributes.ProductType == "" {
		r.ExtensionAttributes.ProductType = watchkit.ProductTypeWatchExtension
	}
	return r
}

// AppProductName is the bundle the companion app target produces.
func (r Request) AppProductName() string { return r.App.Name + ".app" }

// ExtensionProductName is the bundle the companion extension target produces.
func (r Request) ExtensionProductName() string { return r.Extension.Name + ".appex" }

// Result lists what Inject created.
type Result struct {
	AppTarget        pbx.ID
	ExtensionTarget  pbx.ID
	AppGroup         pbx.ID
	ExtensionGroup   pbx.ID
	AppProduct       pbx.ID
	ExtensionProduct pbx.ID
	StoryboardGroup  pbx.ID
	// Removed holds the build files dropped from the main target.
	Removed []pbx.ID
	// Skipped holds the files left out by the exclusion patterns.
	Skipped []string
}
