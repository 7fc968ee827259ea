// Package watchkit supplies the platform attribute sets of watchOS companion
// targets and resolves the frameworks the companion extension links.
package watchkit

import "fmt"

// Product types of the two companion targets.
const (
	ProductTypeWatchApp       = "com.apple.product-type.application.watchapp2"
	ProductTypeWatchExtension = "com.apple.product-type.watchkit2-extension"
)

// DefaultDeploymentTarget is the watchOS release the companion targets build for
// unless configuration says otherwise.
const DefaultDeploymentTarget = "2.0"

// Attributes is the platform-specific part of a native target declaration.
// Zero fields fall back to the defaults of the target kind.
type Attributes struct {
	ProductType      string         `yaml:"product_type,omitempty" json:"product_type,omitempty"`
	DeploymentTarget string         `yaml:"deployment_target,omitempty" json:"deployment_target,omitempty"`
	DeviceFamily     string         `yaml:"device_family,omitempty" json:"device_family,omitempty"`
	BuildSettings    map[string]any `yaml:"build_settings,omitempty" json:"build_settings,omitempty"`
	Configurations   []string       `yaml:"configurations,omitempty" json:"configurations,omitempty"`
}

// Options carries the per-run values that end up in build settings.
type Options struct {
	// DisplayName is CFBundleDisplayName with spaces replaced by underscores.
	DisplayName string
	// InfoPlist is the target's Info.plist, relative to the project root.
	InfoPlist string
	BundleID  string
	// Entitlements is the extension entitlements file, relative to the
	// project root.
	Entitlements string
	// PluginDir is the plugin directory inside the project, used as an extra
	// library search path for the extension.
	PluginDir string
}

// AppAttributes returns the attribute set of the companion watch app.
// Settings in overrides win over the computed defaults.
func AppAttributes(opts Options, overrides Attributes) Attributes {
	a := withDefaults(overrides, ProductTypeWatchApp)
	settings := commonSettings(a, opts)
	settings["ASSETCATALOG_COMPILER_APPICON_NAME"] = "AppIcon"
	settings["IBSC_MODULE"] = moduleName(opts.DisplayName, "WatchKit_Extension")
	a.BuildSettings = merge(settings, overrides.BuildSettings)
	return a
}

// ExtensionAttributes returns the attribute set of the companion watch
// extension.
func ExtensionAttributes(opts Options, overrides Attributes) Attributes {
	a := withDefaults(overrides, ProductTypeWatchExtension)
	settings := commonSettings(a, opts)
	settings["LD_RUNPATH_SEARCH_PATHS"] = "$(inherited) @executable_path/Frameworks @executable_path/../../Frameworks"
	if opts.Entitlements != "" {
		settings["CODE_SIGN_ENTITLEMENTS"] = opts.Entitlements
	}
	if opts.PluginDir != "" {
		settings["LIBRARY_SEARCH_PATHS"] = []any{"$(inherited)", fmt.Sprintf("%q", opts.PluginDir)}
	}
	a.BuildSettings = merge(settings, overrides.BuildSettings)
	return a
}

func withDefaults(a Attributes, productType string) Attributes {
	out := Attributes{
		ProductType:      a.ProductType,
		DeploymentTarget: a.DeploymentTarget,
		DeviceFamily:     a.DeviceFamily,
		Configurations:   a.Configurations,
	}
	if out.ProductType == "" {
		out.ProductType = productType
	}
	if out.DeploymentTarget == "" {
		out.DeploymentTarget = DefaultDeploymentTarget
	}
	if out.DeviceFamily == "" {
		out.DeviceFamily = "4"
	}
	if len(out.Configurations) == 0 {
		out.Configurations = []string{"Debug", "Release"}
	}
	return out
}

func commonSettings(a Attributes, opts Options) map[string]any {
	m := map[string]any{
		"PRODUCT_NAME":              "$(TARGET_NAME)",
		"SDKROOT":                   "watchos",
		"SKIP_INSTALL":              "YES",
		"TARGETED_DEVICE_FAMILY":    a.DeviceFamily,
		"WATCHOS_DEPLOYMENT_TARGET": a.DeploymentTarget,
	}
	if opts.InfoPlist != "" {
		m["INFOPLIST_FILE"] = opts.InfoPlist
	}
	if opts.BundleID != "" {
		m["PRODUCT_BUNDLE_IDENTIFIER"] = opts.BundleID
	}
	return m
}

func merge(defaults, overrides map[string]any) map[string]any {
	for k, v := range overrides {
		defaults[k] = v
	}
	return defaults
}

func moduleName(display, suffix string) string {
	if display == "" {
		return suffix
	}
	return display + "_" + suffix
}
