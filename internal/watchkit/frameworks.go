package watchkit

import (
	"fmt"
	"path"

	"github.com/moasq/wkinject/internal/pbx"
)

// Framework is one library the companion extension links against.
type Framework struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	// Path is the on-disk path relative to the project root. System
	// frameworks are relative to the SDK root instead.
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	System bool   `yaml:"system,omitempty" json:"system,omitempty"`
}

// SystemFramework names a framework from the watchOS SDK.
func SystemFramework(name string) Framework {
	return Framework{Name: name, Path: path.Join("System/Library/Frameworks", name), System: true}
}

// DefaultFrameworks is the link set of the companion extension: WatchKit and
// the watchOS wormhole archive shipped by the plugin.
func DefaultFrameworks(pluginDir, wormhole string) []Framework {
	return []Framework{
		SystemFramework("WatchKit.framework"),
		{Name: wormhole, Path: path.Join(pluginDir, wormhole)},
	}
}

// ResolveFrameworks builds the extension's frameworks phase. An existing file
// reference with the same name is reused; otherwise a reference is created
// and appended to group, which keeps it reachable from the main group.
func ResolveFrameworks(g *pbx.Graph, group pbx.ID, frameworks []Framework) (*pbx.BuildPhase, error) {
	var files []pbx.ID
	var created []pbx.ID
	for _, fw := range frameworks {
		ref, ok := g.FindFileReference(fw.Name)
		if !ok {
			ref = g.AddFileReference(frameworkReference(fw))
			created = append(created, ref.ID)
		}
		bf, err := g.AddBuildFile(ref.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to link %s: %w", fw.Name, err)
		}
		files = append(files, bf.ID)
	}
	if len(created) > 0 {
		if err := g.AppendChildren(group, created...); err != nil {
			return nil, fmt.Errorf("failed to register frameworks: %w", err)
		}
	}
	return g.AddBuildPhase(pbx.PhaseFrameworks, "", files)
}

func frameworkReference(fw Framework) pbx.FileReference {
	p := fw.Path
	if p == "" {
		p = fw.Name
	}
	ref := pbx.FileReference{Name: fw.Name, Path: p, SourceTree: pbx.SourceTreeGroup}
	if fw.System {
		ref.SourceTree = pbx.SourceTreeSDKRoot
	}
	return ref
}
