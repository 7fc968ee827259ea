package config

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ApplyHookContext fills the run paths from a Cordova hook context,
// serialised as JSON by the hook shim. Keys that are absent leave the
// current values alone.
func (c *Config) ApplyHookContext(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("hook context is not valid JSON")
	}
	ctx := gjson.ParseBytes(data)
	opts := ctx.Get("opts")
	if !opts.Exists() {
		return fmt.Errorf("hook context has no opts")
	}

	if v := opts.Get("projectRoot"); v.Exists() {
		c.ProjectRoot = v.String()
	}
	if v := opts.Get("plugin.id"); v.Exists() {
		c.PluginID = v.String()
	}
	if v := opts.Get("plugin.dir"); v.Exists() {
		c.PluginDir = v.String()
	}

	c.Platforms = nil
	opts.Get("cordova.platforms").ForEach(func(_, p gjson.Result) bool {
		c.Platforms = append(c.Platforms, p.String())
		return true
	})
	return nil
}
