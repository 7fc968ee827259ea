package pbx

import (
	"path"
	"strconv"
)

// Object kinds as they appear in the isa field.
const (
	IsaBuildFile          = "PBXBuildFile"
	IsaFileReference      = "PBXFileReference"
	IsaGroup              = "PBXGroup"
	IsaVariantGroup       = "PBXVariantGroup"
	IsaResourcesPhase     = "PBXResourcesBuildPhase"
	IsaSourcesPhase       = "PBXSourcesBuildPhase"
	IsaFrameworksPhase    = "PBXFrameworksBuildPhase"
	IsaHeadersPhase       = "PBXHeadersBuildPhase"
	IsaCopyFilesPhase     = "PBXCopyFilesBuildPhase"
	IsaNativeTarget       = "PBXNativeTarget"
	IsaTargetDependency   = "PBXTargetDependency"
	IsaContainerItemProxy = "PBXContainerItemProxy"
	IsaConfigurationList  = "XCConfigurationList"
	IsaBuildConfiguration = "XCBuildConfiguration"
	IsaProject            = "PBXProject"
	IsaReferenceProxy     = "PBXReferenceProxy"
	IsaVersionGroup       = "XCVersionGroup"
)

// Source trees.
const (
	SourceTreeGroup         = "<group>"
	SourceTreeBuiltProducts = "BUILT_PRODUCTS_DIR"
	SourceTreeSDKRoot       = "SDKROOT"
	SourceTreeAbsolute      = "<absolute>"
)

// Object is one node of the project graph.
type Object interface {
	ObjectID() ID
	Isa() string
	encode() map[string]any
}

// BuildFile places a file (or variant group) into a build phase.
type BuildFile struct {
	ID       ID
	FileRef  ID
	Settings map[string]any
	extra    map[string]any
}

func (o *BuildFile) ObjectID() ID { return o.ID }
func (o *BuildFile) Isa() string { return IsaBuildFile }

func (o *BuildFile) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	putString(m, "fileRef", string(o.FileRef))
	if len(o.Settings) > 0 {
		m["settings"] = o.Settings
	}
	return m
}

// FileReference is a leaf pointing at a path on disk.
type FileReference struct {
	ID                ID
	Name              string
	Path              string
	SourceTree        string
	LastKnownFileType string
	ExplicitFileType  string
	ExcludeFromIndex  bool
	extra             map[string]any
}

func (o *FileReference) ObjectID() ID { return o.ID }
func (o *FileReference) Isa() string { return IsaFileReference }

// DisplayName is the name Xcode shows for the reference.
func (o *FileReference) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return path.Base(o.Path)
}

func (o *FileReference) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	putString(m, "name", o.Name)
	putString(m, "path", o.Path)
	putString(m, "sourceTree", o.SourceTree)
	putString(m, "lastKnownFileType", o.LastKnownFileType)
	putString(m, "explicitFileType", o.ExplicitFileType)
	if o.ExcludeFromIndex {
		m["includeInIndex"] = "0"
	}
	return m
}

// Group is a node of the logical folder hierarchy. A variant group holds the
// locale-specific variants of a single resource.
type Group struct {
	ID         ID
	Name       string
	Path       string
	SourceTree string
	Children   []ID
	Variant    bool
	extra      map[string]any
}

func (o *Group) ObjectID() ID { return o.ID }

func (o *Group) Isa() string {
	if o.Variant {
		return IsaVariantGroup
	}
	return IsaGroup
}

// DisplayName is the name Xcode shows for the group.
func (o *Group) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return path.Base(o.Path)
}

func (o *Group) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	m["children"] = idList(o.Children)
	putString(m, "name", o.Name)
	putString(m, "path", o.Path)
	putString(m, "sourceTree", o.SourceTree)
	return m
}

// PhaseKind is the kind of a non copy-files build phase.
type PhaseKind int

const (
	PhaseResources PhaseKind = iota
	PhaseSources
	PhaseFrameworks
	PhaseHeaders
)

func (k PhaseKind) isa() string {
	switch k {
	case PhaseSources:
		return IsaSourcesPhase
	case PhaseFrameworks:
		return IsaFrameworksPhase
	case PhaseHeaders:
		return IsaHeadersPhase
	default:
		return IsaResourcesPhase
	}
}

func (k PhaseKind) String() string {
	switch k {
	case PhaseSources:
		return "Sources"
	case PhaseFrameworks:
		return "Frameworks"
	case PhaseHeaders:
		return "Headers"
	default:
		return "Resources"
	}
}

// Phase is implemented by every build phase kind.
type Phase interface {
	Object
	Label() string
	Members() []ID
	setMembers([]ID)
}

// BuildPhase is a resources, sources, frameworks or headers phase.
type BuildPhase struct {
	ID    ID
	Kind  PhaseKind
	Name  string
	Files []ID
	extra map[string]any
}

func (o *BuildPhase) ObjectID() ID { return o.ID }
func (o *BuildPhase) Isa() string { return o.Kind.isa() }
func (o *BuildPhase) Members() []ID { return o.Files }
func (o *BuildPhase) setMembers(files []ID) { o.Files = files }

// Label is the phase name, falling back to its kind.
func (o *BuildPhase) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Kind.String()
}

func (o *BuildPhase) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	defaultString(m, "buildActionMask", "2147483647")
	defaultString(m, "runOnlyForDeploymentPostprocessing", "0")
	m["files"] = idList(o.Files)
	putString(m, "name", o.Name)
	return m
}

// SubfolderSpec is the destination folder of a copy-files phase.
type SubfolderSpec int

const (
	SubfolderResources  SubfolderSpec = 7
	SubfolderFrameworks SubfolderSpec = 10
	SubfolderPlugIns    SubfolderSpec = 13
	// SubfolderProducts is where watch content is embedded.
	SubfolderProducts SubfolderSpec = 16
)

// CopyFilesPhase copies its members into a destination inside the product.
type CopyFilesPhase struct {
	ID           ID
	Name         string
	DstPath      string
	DstSubfolder SubfolderSpec
	Files        []ID
	extra        map[string]any
}

func (o *CopyFilesPhase) ObjectID() ID { return o.ID }
func (o *CopyFilesPhase) Isa() string { return IsaCopyFilesPhase }
func (o *CopyFilesPhase) Members() []ID { return o.Files }
func (o *CopyFilesPhase) setMembers(files []ID) { o.Files = files }

func (o *CopyFilesPhase) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return "Copy Files"
}

func (o *CopyFilesPhase) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	defaultString(m, "buildActionMask", "2147483647")
	defaultString(m, "runOnlyForDeploymentPostprocessing", "0")
	m["dstPath"] = o.DstPath
	m["dstSubfolderSpec"] = strconv.Itoa(int(o.DstSubfolder))
	m["files"] = idList(o.Files)
	putString(m, "name", o.Name)
	return m
}

// NativeTarget is one buildable product.
type NativeTarget struct {
	ID                     ID
	Name                   string
	ProductName            string
	ProductType            string
	ProductReference       ID
	BuildConfigurationList ID
	BuildPhases            []ID
	Dependencies           []ID
	extra                  map[string]any
}

func (o *NativeTarget) ObjectID() ID { return o.ID }
func (o *NativeTarget) Isa() string { return IsaNativeTarget }

func (o *NativeTarget) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	putString(m, "buildConfigurationList", string(o.BuildConfigurationList))
	m["buildPhases"] = idList(o.BuildPhases)
	if _, ok := m["buildRules"]; !ok {
		m["buildRules"] = []any{}
	}
	m["dependencies"] = idList(o.Dependencies)
	putString(m, "name", o.Name)
	putString(m, "productName", o.ProductName)
	putString(m, "productReference", string(o.ProductReference))
	putString(m, "productType", o.ProductType)
	return m
}

// TargetDependency makes its owner build after Target.
type TargetDependency struct {
	ID          ID
	Target      ID
	TargetProxy ID
	extra       map[string]any
}

func (o *TargetDependency) ObjectID() ID { return o.ID }
func (o *TargetDependency) Isa() string { return IsaTargetDependency }

func (o *TargetDependency) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	putString(m, "target", string(o.Target))
	putString(m, "targetProxy", string(o.TargetProxy))
	return m
}

// ContainerItemProxy points a dependency at a target inside a container.
type ContainerItemProxy struct {
	ID              ID
	ContainerPortal ID
	ProxyType       string
	RemoteGlobalID  ID
	RemoteInfo      string
	extra           map[string]any
}

func (o *ContainerItemProxy) ObjectID() ID { return o.ID }
func (o *ContainerItemProxy) Isa() string { return IsaContainerItemProxy }

func (o *ContainerItemProxy) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	putString(m, "containerPortal", string(o.ContainerPortal))
	putString(m, "proxyType", o.ProxyType)
	putString(m, "remoteGlobalIDString", string(o.RemoteGlobalID))
	putString(m, "remoteInfo", o.RemoteInfo)
	return m
}

// ConfigurationList lists the build configurations of a target or project.
type ConfigurationList struct {
	ID                            ID
	BuildConfigurations           []ID
	DefaultConfigurationName      string
	DefaultConfigurationIsVisible string
	extra                         map[string]any
}

func (o *ConfigurationList) ObjectID() ID { return o.ID }
func (o *ConfigurationList) Isa() string { return IsaConfigurationList }

func (o *ConfigurationList) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	m["buildConfigurations"] = idList(o.BuildConfigurations)
	putString(m, "defaultConfigurationIsVisible", o.DefaultConfigurationIsVisible)
	putString(m, "defaultConfigurationName", o.DefaultConfigurationName)
	return m
}

// BuildConfiguration is one named set of build settings.
type BuildConfiguration struct {
	ID            ID
	Name          string
	BuildSettings map[string]any
	extra         map[string]any
}

func (o *BuildConfiguration) ObjectID() ID { return o.ID }
func (o *BuildConfiguration) Isa() string { return IsaBuildConfiguration }

func (o *BuildConfiguration) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	settings := o.BuildSettings
	if settings == nil {
		settings = map[string]any{}
	}
	m["buildSettings"] = settings
	putString(m, "name", o.Name)
	return m
}

// Project is the graph root.
type Project struct {
	ID              ID
	MainGroup       ID
	ProductRefGroup ID
	Targets         []ID
	extra           map[string]any
}

func (o *Project) ObjectID() ID { return o.ID }
func (o *Project) Isa() string { return IsaProject }

// ReferencedProductGroups returns the product groups of referenced
// sub-projects (projectReferences), which are outside the main group.
func (o *Project) ReferencedProductGroups() []ID {
	refs, _ := o.extra["projectReferences"].([]any)
	var out []ID
	for _, r := range refs {
		entry, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if g := scalar(entry["ProductGroup"]); g != "" {
			out = append(out, ID(g))
		}
	}
	return out
}

func (o *Project) encode() map[string]any {
	m := base(o.Isa(), o.extra)
	putString(m, "mainGroup", string(o.MainGroup))
	putString(m, "productRefGroup", string(o.ProductRefGroup))
	m["targets"] = idList(o.Targets)
	return m
}

// RawObject preserves every object kind the graph does not model.
type RawObject struct {
	ID     ID
	Kind   string
	Fields map[string]any
}

func (o *RawObject) ObjectID() ID { return o.ID }
func (o *RawObject) Isa() string { return o.Kind }

// Name returns the name or path field, whichever is set.
func (o *RawObject) Name() string {
	if n := scalar(o.Fields["name"]); n != "" {
		return n
	}
	return path.Base(scalar(o.Fields["path"]))
}

func (o *RawObject) encode() map[string]any {
	return base(o.Kind, o.Fields)
}

func base(isa string, extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+4)
	for k, v := range extra {
		m[k] = v
	}
	m["isa"] = isa
	return m
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func defaultString(m map[string]any, key, value string) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

func idList(ids []ID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
