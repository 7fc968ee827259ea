package pbx

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// Graph is the in-memory form of a project file. It is owned by one run and
// mutated in place; nothing in this package keeps global state.
type Graph struct {
	ArchiveVersion string
	ObjectVersion  string
	Classes        map[string]any
	RootID         ID

	objects map[ID]Object
	ids     *idAllocator
}

func newGraph() *Graph {
	return &Graph{
		objects: make(map[ID]Object),
		ids:     newIDAllocator(),
	}
}

func (g *Graph) insert(obj Object) {
	g.ids.reserve(obj.ObjectID())
	g.objects[obj.ObjectID()] = obj
}

// NewID allocates an identifier that is not used by any current or
// previously removed object.
func (g *Graph) NewID() ID {
	return g.ids.allocate()
}

// Object returns the object with the given ID.
func (g *Graph) Object(id ID) (Object, bool) {
	obj, ok := g.objects[id]
	return obj, ok
}

// Len returns the number of objects in the graph.
func (g *Graph) Len() int { return len(g.objects) }

// Objects returns every object sorted by ID.
func (g *Graph) Objects() []Object {
	out := make([]Object, 0, len(g.objects))
	for _, id := range sortedIDs(g.objects) {
		out = append(out, g.objects[id])
	}
	return out
}

// Remove deletes an object. Its ID stays reserved.
func (g *Graph) Remove(id ID) {
	delete(g.objects, id)
}

// Project returns the root object.
func (g *Graph) Project() (*Project, error) {
	p, ok := g.objects[g.RootID].(*Project)
	if !ok {
		return nil, missing("project", string(g.RootID))
	}
	return p, nil
}

// NativeTargets returns every native target in project order, followed by
// any target the project does not list.
func (g *Graph) NativeTargets() []*NativeTarget {
	var out []*NativeTarget
	seen := make(map[ID]bool)
	if p, err := g.Project(); err == nil {
		for _, id := range p.Targets {
			if t, ok := g.objects[id].(*NativeTarget); ok {
				out = append(out, t)
				seen[id] = true
			}
		}
	}
	for _, id := range sortedIDs(g.objects) {
		if t, ok := g.objects[id].(*NativeTarget); ok && !seen[id] {
			out = append(out, t)
		}
	}
	return out
}

// TargetByName finds a native target by exact name.
func (g *Graph) TargetByName(name string) (*NativeTarget, error) {
	for _, t := range g.NativeTargets() {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, missing("target", name)
}

// GroupByName finds a non-variant group by its display name. The project's
// main group and product group win over same-named groups elsewhere (a
// referenced sub-project brings its own "Products" group).
func (g *Graph) GroupByName(name string) (*Group, error) {
	if p, err := g.Project(); err == nil {
		for _, id := range []ID{p.ProductRefGroup, p.MainGroup} {
			if grp, ok := g.objects[id].(*Group); ok && grp.DisplayName() == name {
				return grp, nil
			}
		}
	}
	for _, id := range sortedIDs(g.objects) {
		if grp, ok := g.objects[id].(*Group); ok && !grp.Variant && grp.DisplayName() == name {
			return grp, nil
		}
	}
	return nil, missing("group", name)
}

// Group returns the group with the given ID.
func (g *Graph) Group(id ID) (*Group, error) {
	grp, ok := g.objects[id].(*Group)
	if !ok {
		return nil, inconsistent(id, "", "not a group")
	}
	return grp, nil
}

// Target returns the native target with the given ID.
func (g *Graph) Target(id ID) (*NativeTarget, error) {
	t, ok := g.objects[id].(*NativeTarget)
	if !ok {
		return nil, inconsistent(id, "", "not a native target")
	}
	return t, nil
}

// Phase returns the build phase with the given ID.
func (g *Graph) Phase(id ID) (Phase, error) {
	ph, ok := g.objects[id].(Phase)
	if !ok {
		return nil, inconsistent(id, "", "not a build phase")
	}
	return ph, nil
}

// PhaseOf returns the first phase of the given kind owned by a target.
func (g *Graph) PhaseOf(t *NativeTarget, kind PhaseKind) (*BuildPhase, error) {
	for _, id := range t.BuildPhases {
		if ph, ok := g.objects[id].(*BuildPhase); ok && ph.Kind == kind {
			return ph, nil
		}
	}
	return nil, missing("phase", fmt.Sprintf("%s of %s", kind, t.Name))
}

// FileName returns the display name of a file-like object: a file
// reference, a group or a preserved reference proxy.
func (g *Graph) FileName(id ID) string {
	switch o := g.objects[id].(type) {
	case *FileReference:
		return o.DisplayName()
	case *Group:
		return o.DisplayName()
	case *RawObject:
		return o.Name()
	case *BuildFile:
		return g.FileName(o.FileRef)
	}
	return ""
}

// FindFileReference returns the first file reference whose display name or
// path basename equals name.
func (g *Graph) FindFileReference(name string) (*FileReference, bool) {
	for _, id := range sortedIDs(g.objects) {
		ref, ok := g.objects[id].(*FileReference)
		if !ok {
			continue
		}
		if ref.DisplayName() == name || path.Base(ref.Path) == name {
			return ref, true
		}
	}
	return nil, false
}

// AddFileReference registers a file reference under a fresh ID.
func (g *Graph) AddFileReference(ref FileReference) *FileReference {
	ref.ID = g.NewID()
	if ref.SourceTree == "" {
		ref.SourceTree = SourceTreeGroup
	}
	if ref.LastKnownFileType == "" && ref.ExplicitFileType == "" {
		ref.LastKnownFileType = FileTypeFor(ref.Path)
	}
	obj := &ref
	g.insert(obj)
	return obj
}

// AddBuildFile registers a build-file entry for fileRef. The referenced
// object must already exist.
func (g *Graph) AddBuildFile(fileRef ID, settings map[string]any) (*BuildFile, error) {
	if !g.isFileLike(fileRef) {
		return nil, inconsistent("", fileRef, "build file target is not a file reference")
	}
	bf := &BuildFile{ID: g.NewID(), FileRef: fileRef, Settings: settings}
	g.insert(bf)
	return bf, nil
}

// AddBuildPhase creates a phase whose members are the given build files.
func (g *Graph) AddBuildPhase(kind PhaseKind, name string, files []ID) (*BuildPhase, error) {
	if err := g.checkBuildFiles(files); err != nil {
		return nil, err
	}
	ph := &BuildPhase{ID: g.NewID(), Kind: kind, Name: name, Files: slices.Clone(files)}
	g.insert(ph)
	return ph, nil
}

// AddCopyFilesPhase creates a copy-files phase.
func (g *Graph) AddCopyFilesPhase(name, dstPath string, dst SubfolderSpec, files []ID) (*CopyFilesPhase, error) {
	if err := g.checkBuildFiles(files); err != nil {
		return nil, err
	}
	ph := &CopyFilesPhase{
		ID:           g.NewID(),
		Name:         name,
		DstPath:      dstPath,
		DstSubfolder: dst,
		Files:        slices.Clone(files),
	}
	g.insert(ph)
	return ph, nil
}

// AddGroup creates a group. Children must exist.
func (g *Graph) AddGroup(name, groupPath string, children []ID) (*Group, error) {
	return g.addGroup(false, name, groupPath, children)
}

// AddVariantGroup creates a variant group holding the locale-specific
// references of one logical resource.
func (g *Graph) AddVariantGroup(name string, variants []ID) (*Group, error) {
	return g.addGroup(true, name, "", variants)
}

func (g *Graph) addGroup(variant bool, name, groupPath string, children []ID) (*Group, error) {
	for _, c := range children {
		if _, ok := g.objects[c]; !ok {
			return nil, inconsistent("", c, "group child does not exist")
		}
	}
	grp := &Group{
		ID:         g.NewID(),
		Name:       name,
		Path:       groupPath,
		SourceTree: SourceTreeGroup,
		Children:   slices.Clone(children),
		Variant:    variant,
	}
	g.insert(grp)
	return grp, nil
}

// AppendChildren appends existing objects to a group.
func (g *Graph) AppendChildren(group ID, children ...ID) error {
	grp, err := g.Group(group)
	if err != nil {
		return err
	}
	for _, c := range children {
		if _, ok := g.objects[c]; !ok {
			return inconsistent(group, c, "group child does not exist")
		}
	}
	grp.Children = append(grp.Children, children...)
	return nil
}

// AppendPhase appends an existing phase to a target.
func (g *Graph) AppendPhase(target, phase ID) error {
	t, err := g.Target(target)
	if err != nil {
		return err
	}
	if _, err := g.Phase(phase); err != nil {
		return err
	}
	t.BuildPhases = append(t.BuildPhases, phase)
	return nil
}

// TargetSpec describes a native target to create.
type TargetSpec struct {
	Name             string
	ProductName      string
	ProductType      string
	ProductReference ID
	BuildPhases      []ID
	// BuildSettings are applied to every configuration in Configurations.
	BuildSettings  map[string]any
	Configurations []string
}

// AddNativeTarget creates a target with its own configuration list.
func (g *Graph) AddNativeTarget(spec TargetSpec) (*NativeTarget, error) {
	if _, ok := g.objects[spec.ProductReference].(*FileReference); !ok {
		return nil, inconsistent("", spec.ProductReference, "product reference of %q is not a file reference", spec.Name)
	}
	for _, ph := range spec.BuildPhases {
		if _, err := g.Phase(ph); err != nil {
			return nil, err
		}
	}

	configs := spec.Configurations
	if len(configs) == 0 {
		configs = []string{"Debug", "Release"}
	}
	list := &ConfigurationList{
		ID:                            g.NewID(),
		DefaultConfigurationName:      configs[len(configs)-1],
		DefaultConfigurationIsVisible: "0",
	}
	for _, name := range configs {
		settings := make(map[string]any, len(spec.BuildSettings))
		for k, v := range spec.BuildSettings {
			settings[k] = v
		}
		bc := &BuildConfiguration{ID: g.NewID(), Name: name, BuildSettings: settings}
		g.insert(bc)
		list.BuildConfigurations = append(list.BuildConfigurations, bc.ID)
	}
	g.insert(list)

	productName := spec.ProductName
	if productName == "" {
		productName = spec.Name
	}
	t := &NativeTarget{
		ID:                     g.NewID(),
		Name:                   spec.Name,
		ProductName:            productName,
		ProductType:            spec.ProductType,
		ProductReference:       spec.ProductReference,
		BuildConfigurationList: list.ID,
		BuildPhases:            slices.Clone(spec.BuildPhases),
	}
	g.insert(t)
	return t, nil
}

// AddTarget lists an existing native target in the project.
func (g *Graph) AddTarget(target ID) error {
	if _, err := g.Target(target); err != nil {
		return err
	}
	p, err := g.Project()
	if err != nil {
		return err
	}
	if slices.Contains(p.Targets, target) {
		return nil
	}
	p.Targets = append(p.Targets, target)
	return nil
}

// AddTargetDependency makes dependent build after dependency, through a
// container item proxy as Xcode records it.
func (g *Graph) AddTargetDependency(dependent, dependency ID) (*TargetDependency, error) {
	if dependent == dependency {
		return nil, inconsistent(dependent, dependency, "target cannot depend on itself")
	}
	from, err := g.Target(dependent)
	if err != nil {
		return nil, err
	}
	to, err := g.Target(dependency)
	if err != nil {
		return nil, err
	}

	proxy := &ContainerItemProxy{
		ID:              g.NewID(),
		ContainerPortal: g.RootID,
		ProxyType:       "1",
		RemoteGlobalID:  to.ID,
		RemoteInfo:      to.Name,
	}
	g.insert(proxy)

	dep := &TargetDependency{ID: g.NewID(), Target: to.ID, TargetProxy: proxy.ID}
	g.insert(dep)
	from.Dependencies = append(from.Dependencies, dep.ID)
	return dep, nil
}

// DependencyTargets resolves the dependency list of a target to target IDs.
func (g *Graph) DependencyTargets(t *NativeTarget) []ID {
	out := make([]ID, 0, len(t.Dependencies))
	for _, id := range t.Dependencies {
		if dep, ok := g.objects[id].(*TargetDependency); ok {
			out = append(out, dep.Target)
		}
	}
	return out
}

// RemoveFromPhase drops every member of a phase for which match returns true
// and deletes those build-file objects. It returns the removed IDs.
func (g *Graph) RemoveFromPhase(phase ID, match func(*BuildFile) bool) ([]ID, error) {
	ph, err := g.Phase(phase)
	if err != nil {
		return nil, err
	}
	var kept, removed []ID
	for _, id := range ph.Members() {
		bf, ok := g.objects[id].(*BuildFile)
		if ok && match(bf) {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	ph.setMembers(kept)
	for _, id := range removed {
		g.Remove(id)
	}
	return removed, nil
}

func (g *Graph) isFileLike(id ID) bool {
	switch o := g.objects[id].(type) {
	case *FileReference:
		return true
	case *Group:
		return o.Variant
	case *RawObject:
		return o.Kind == IsaReferenceProxy || o.Kind == IsaVersionGroup
	}
	return false
}

// isPhase reports whether id is a build phase, including kinds the graph
// preserves without modelling (shell script phases).
func (g *Graph) isPhase(id ID) bool {
	switch o := g.objects[id].(type) {
	case Phase:
		return true
	case *RawObject:
		return strings.HasSuffix(o.Kind, "BuildPhase")
	}
	return false
}

func (g *Graph) checkBuildFiles(files []ID) error {
	for _, f := range files {
		if _, ok := g.objects[f].(*BuildFile); !ok {
			return inconsistent("", f, "phase member is not a build file")
		}
	}
	return nil
}
