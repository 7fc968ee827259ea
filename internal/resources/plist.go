package resources

import (
	"fmt"
	"os"
	"strings"

	"howett.net/plist"
)

// Placeholders replaced in the companion Info.plist templates.
const (
	PlaceholderDisplayName  = "__DISPLAY_NAME__"
	PlaceholderAppID        = "__APP_IDENTIFIER__"
	PlaceholderShortVersion = "__BUNDLE_SHORT_VERSION_STRING__"
	PlaceholderVersion      = "__BUNDLE_VERSION__"
)

// ReadPlist decodes a property list file in any format.
func ReadPlist(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plist: %w", err)
	}
	m, err := ParsePlist(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

// ParsePlist decodes property list bytes in any format.
func ParsePlist(data []byte) (map[string]any, error) {
	var m map[string]any
	if _, err := plist.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// BundleInfo is the part of the main application's Info.plist the companion
// templates are filled from.
type BundleInfo struct {
	DisplayName  string
	Identifier   string
	ShortVersion string
	Version      string
}

// ReadBundleInfo loads the bundle fields of an Info.plist. A missing
// CFBundleDisplayName falls back to CFBundleName.
func ReadBundleInfo(path string) (*BundleInfo, error) {
	m, err := ReadPlist(path)
	if err != nil {
		return nil, err
	}
	info := &BundleInfo{
		DisplayName:  stringValue(m, "CFBundleDisplayName"),
		Identifier:   stringValue(m, "CFBundleIdentifier"),
		ShortVersion: stringValue(m, "CFBundleShortVersionString"),
		Version:      stringValue(m, "CFBundleVersion"),
	}
	if info.DisplayName == "" {
		info.DisplayName = stringValue(m, "CFBundleName")
	}
	if info.DisplayName == "" {
		return nil, fmt.Errorf("%s has no CFBundleDisplayName", path)
	}
	if info.Identifier == "" {
		return nil, fmt.Errorf("%s has no CFBundleIdentifier", path)
	}
	return info, nil
}

// SafeDisplayName is the display name with spaces replaced by underscores,
// as used in target, directory and product names.
func (b *BundleInfo) SafeDisplayName() string {
	return strings.ReplaceAll(b.DisplayName, " ", "_")
}

// Placeholders maps every template token to its value.
func (b *BundleInfo) Placeholders() map[string]string {
	return map[string]string{
		PlaceholderDisplayName:  b.SafeDisplayName(),
		PlaceholderAppID:        b.Identifier,
		PlaceholderShortVersion: b.ShortVersion,
		PlaceholderVersion:      b.Version,
	}
}

// BundleIdentifier reads CFBundleIdentifier from a property list file.
func BundleIdentifier(path string) (string, error) {
	m, err := ReadPlist(path)
	if err != nil {
		return "", err
	}
	return requireIdentifier(m, path)
}

// BundleIdentifierFrom reads CFBundleIdentifier from property list bytes.
func BundleIdentifierFrom(data []byte, name string) (string, error) {
	m, err := ParsePlist(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return requireIdentifier(m, name)
}

func requireIdentifier(m map[string]any, name string) (string, error) {
	id := stringValue(m, "CFBundleIdentifier")
	if id == "" {
		return "", fmt.Errorf("%s has no CFBundleIdentifier", name)
	}
	return id, nil
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
