package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/moasq/wkinject/internal/inject"
	"github.com/moasq/wkinject/internal/watchkit"
	"gopkg.in/yaml.v3"
)

// Environment variables read after the config file.
const (
	EnvProjectRoot = "WKINJECT_PROJECT_ROOT"
	EnvPluginDir   = "WKINJECT_PLUGIN_DIR"
	EnvPluginID    = "WKINJECT_PLUGIN_ID"
)

// Config holds everything one injection run needs.
type Config struct {
	// ProjectRoot is the iOS platform directory holding the .xcodeproj.
	ProjectRoot string `yaml:"project_root" validate:"required"`
	// PluginDir is the installed plugin, holding src/ios/resources.
	PluginDir string `yaml:"plugin_dir" validate:"required"`
	// PluginID locates the plugin's native files inside the project.
	PluginID string `yaml:"plugin_id" validate:"omitempty,excludesall=/"`

	// MainTarget defaults to the project name.
	MainTarget      string `yaml:"main_target"`
	RootGroup       string `yaml:"root_group" validate:"required"`
	ProductsGroup   string `yaml:"products_group" validate:"required"`
	FrameworksGroup string `yaml:"frameworks_group" validate:"required"`

	Storyboard       string `yaml:"storyboard" validate:"required"`
	StoryboardLocale string `yaml:"storyboard_locale" validate:"required"`
	StaleFramework   string `yaml:"stale_framework" validate:"required"`

	AppExcludes       []string `yaml:"app_excludes"`
	ExtensionExcludes []string `yaml:"extension_excludes"`

	// Frameworks replaces the extension's default link set when non-empty.
	Frameworks []watchkit.Framework `yaml:"frameworks" validate:"dive"`

	App       watchkit.Attributes `yaml:"app"`
	Extension watchkit.Attributes `yaml:"extension"`

	// Platforms is the platform list from a Cordova hook context. Empty
	// means the caller did not say, and the run proceeds.
	Platforms []string `yaml:"-"`
}

// Overrides are explicit values from the command line. Empty fields are
// ignored.
type Overrides struct {
	ConfigFile string
	// HookContext is the Cordova hook context JSON, not a path.
	HookContext []byte
	ProjectRoot string
	PluginDir   string
	PluginID    string
}

// Default returns a Config with the Cordova project conventions filled in.
func Default() *Config {
	return &Config{
		RootGroup:         inject.DefaultRootGroup,
		ProductsGroup:     inject.DefaultProductsGroup,
		FrameworksGroup:   inject.DefaultFrameworksGroup,
		Storyboard:        inject.DefaultStoryboard,
		StoryboardLocale:  inject.DefaultLocale,
		StaleFramework:    inject.DefaultStaleFramework,
		AppExcludes:       slices.Clone(inject.DefaultAppExcludes),
		ExtensionExcludes: slices.Clone(inject.DefaultExtensionExcludes),
	}
}

// Load builds a Config from defaults, the optional YAML file, .env and the
// environment, the optional Cordova hook context, and finally o. The result
// is validated.
func Load(o Overrides) (*Config, error) {
	cfg := Default()

	if o.ConfigFile != "" {
		if err := cfg.loadFile(o.ConfigFile); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if len(o.HookContext) > 0 {
		if err := cfg.ApplyHookContext(o.HookContext); err != nil {
			return nil, err
		}
	}

	cfg.ProjectRoot = firstNonEmpty(o.ProjectRoot, cfg.ProjectRoot)
	cfg.PluginDir = firstNonEmpty(o.PluginDir, cfg.PluginDir)
	cfg.PluginID = firstNonEmpty(o.PluginID, cfg.PluginID)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ProjectRoot = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvProjectRoot)), c.ProjectRoot)
	c.PluginDir = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvPluginDir)), c.PluginDir)
	c.PluginID = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvPluginID)), c.PluginID)
}

var validate = validator.New()

// Validate checks required fields and reports every failing one.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	lists := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lists = append(lists, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("invalid config: validation failed on %s", strings.Join(lists, ", "))
}

// TargetsPlatform reports whether the run applies to iOS.
func (c *Config) TargetsPlatform(platform string) bool {
	if len(c.Platforms) == 0 {
		return true
	}
	for _, p := range c.Platforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
