package pbx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"howett.net/plist"
)

// fileHeader is the encoding marker Xcode writes on the first line.
const fileHeader = "// !$*UTF8*$!\n"

// Load reads and parses a project.pbxproj file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes the OpenStep property list form of a project file.
func Parse(data []byte) (*Graph, error) {
	var doc map[string]any
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	rawObjects, ok := doc["objects"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("project file has no objects table")
	}
	root := scalar(doc["rootObject"])
	if root == "" {
		return nil, fmt.Errorf("project file has no rootObject")
	}

	g := newGraph()
	g.ArchiveVersion = scalar(doc["archiveVersion"])
	g.ObjectVersion = scalar(doc["objectVersion"])
	if classes, ok := doc["classes"].(map[string]any); ok {
		g.Classes = classes
	}
	g.RootID = ID(root)

	for key, value := range rawObjects {
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("object %s is not a dictionary", key)
		}
		obj, err := decodeObject(ID(key), fields)
		if err != nil {
			return nil, err
		}
		g.insert(obj)
	}

	if _, err := g.Project(); err != nil {
		return nil, err
	}
	return g, nil
}

// Encode serialises the graph back into project file form.
func (g *Graph) Encode() ([]byte, error) {
	objects := make(map[string]any, len(g.objects))
	for id, obj := range g.objects {
		objects[string(id)] = obj.encode()
	}

	classes := g.Classes
	if classes == nil {
		classes = map[string]any{}
	}
	doc := map[string]any{
		"archiveVersion": orDefault(g.ArchiveVersion, "1"),
		"classes":        classes,
		"objectVersion":  orDefault(g.ObjectVersion, "46"),
		"objects":        objects,
		"rootObject":     string(g.RootID),
	}

	out, err := plist.MarshalIndent(doc, plist.OpenStepFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	return append([]byte(fileHeader), append(out, '\n')...), nil
}

// Save writes the graph to path through a temporary file in the same
// directory and renames it into place, so a failed write never leaves a
// truncated project file behind.
func (g *Graph) Save(path string) error {
	data, err := g.Encode()
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pbxproj-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary project file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write project file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close project file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set project file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace project file: %w", err)
	}
	return nil
}

// fields consumes known keys from a decoded object; whatever is left over is
// kept verbatim as the object's extra attributes.
type fields map[string]any

func (f fields) str(key string) string {
	v := scalar(f[key])
	delete(f, key)
	return v
}

func (f fields) id(key string) ID {
	return ID(f.str(key))
}

func (f fields) ids(key string) []ID {
	list, _ := f[key].([]any)
	delete(f, key)
	out := make([]ID, 0, len(list))
	for _, v := range list {
		if s := scalar(v); s != "" {
			out = append(out, ID(s))
		}
	}
	return out
}

func (f fields) dict(key string) map[string]any {
	d, _ := f[key].(map[string]any)
	delete(f, key)
	return d
}

func (f fields) rest() map[string]any {
	delete(f, "isa")
	if len(f) == 0 {
		return nil
	}
	return map[string]any(f)
}

func decodeObject(id ID, raw map[string]any) (Object, error) {
	f := fields(raw)
	isa := scalar(f["isa"])
	if isa == "" {
		return nil, fmt.Errorf("object %s has no isa", id)
	}

	switch isa {
	case IsaBuildFile:
		return &BuildFile{
			ID:       id,
			FileRef:  f.id("fileRef"),
			Settings: f.dict("settings"),
			extra:    f.rest(),
		}, nil
	case IsaFileReference:
		o := &FileReference{
			ID:                id,
			Name:              f.str("name"),
			Path:              f.str("path"),
			SourceTree:        f.str("sourceTree"),
			LastKnownFileType: f.str("lastKnownFileType"),
			ExplicitFileType:  f.str("explicitFileType"),
		}
		if v, ok := f["includeInIndex"]; ok && scalar(v) == "0" {
			o.ExcludeFromIndex = true
			delete(f, "includeInIndex")
		}
		o.extra = f.rest()
		return o, nil
	case IsaGroup, IsaVariantGroup:
		return &Group{
			ID:         id,
			Variant:    isa == IsaVariantGroup,
			Children:   f.ids("children"),
			Name:       f.str("name"),
			Path:       f.str("path"),
			SourceTree: f.str("sourceTree"),
			extra:      f.rest(),
		}, nil
	case IsaResourcesPhase, IsaSourcesPhase, IsaFrameworksPhase, IsaHeadersPhase:
		return &BuildPhase{
			ID:    id,
			Kind:  phaseKindOf(isa),
			Files: f.ids("files"),
			Name:  f.str("name"),
			extra: f.rest(),
		}, nil
	case IsaCopyFilesPhase:
		spec, err := strconv.Atoi(f.str("dstSubfolderSpec"))
		if err != nil {
			return nil, fmt.Errorf("object %s: invalid dstSubfolderSpec: %w", id, err)
		}
		return &CopyFilesPhase{
			ID:           id,
			DstPath:      f.str("dstPath"),
			DstSubfolder: SubfolderSpec(spec),
			Files:        f.ids("files"),
			Name:         f.str("name"),
			extra:        f.rest(),
		}, nil
	case IsaNativeTarget:
		return &NativeTarget{
			ID:                     id,
			Name:                   f.str("name"),
			ProductName:            f.str("productName"),
			ProductType:            f.str("productType"),
			ProductReference:       f.id("productReference"),
			BuildConfigurationList: f.id("buildConfigurationList"),
			BuildPhases:            f.ids("buildPhases"),
			Dependencies:           f.ids("dependencies"),
			extra:                  f.rest(),
		}, nil
	case IsaTargetDependency:
		return &TargetDependency{
			ID:          id,
			Target:      f.id("target"),
			TargetProxy: f.id("targetProxy"),
			extra:       f.rest(),
		}, nil
	case IsaContainerItemProxy:
		return &ContainerItemProxy{
			ID:              id,
			ContainerPortal: f.id("containerPortal"),
			ProxyType:       f.str("proxyType"),
			RemoteGlobalID:  f.id("remoteGlobalIDString"),
			RemoteInfo:      f.str("remoteInfo"),
			extra:           f.rest(),
		}, nil
	case IsaConfigurationList:
		return &ConfigurationList{
			ID:                            id,
			BuildConfigurations:           f.ids("buildConfigurations"),
			DefaultConfigurationName:      f.str("defaultConfigurationName"),
			DefaultConfigurationIsVisible: f.str("defaultConfigurationIsVisible"),
			extra:                         f.rest(),
		}, nil
	case IsaBuildConfiguration:
		return &BuildConfiguration{
			ID:            id,
			Name:          f.str("name"),
			BuildSettings: f.dict("buildSettings"),
			extra:         f.rest(),
		}, nil
	case IsaProject:
		return &Project{
			ID:              id,
			MainGroup:       f.id("mainGroup"),
			ProductRefGroup: f.id("productRefGroup"),
			Targets:         f.ids("targets"),
			extra:           f.rest(),
		}, nil
	default:
		delete(f, "isa")
		return &RawObject{ID: id, Kind: isa, Fields: map[string]any(f)}, nil
	}
}

func phaseKindOf(isa string) PhaseKind {
	switch isa {
	case IsaSourcesPhase:
		return PhaseSources
	case IsaFrameworksPhase:
		return PhaseFrameworks
	case IsaHeadersPhase:
		return PhaseHeaders
	default:
		return PhaseResources
	}
}

// scalar renders a decoded plist scalar as a string. OpenStep files carry no
// type information, so numbers normally arrive as strings already.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func sortedIDs[T any](m map[ID]T) []ID {
	ids := make([]ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
