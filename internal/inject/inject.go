// Package inject adds a companion watch app and its extension to a project
// graph that holds a single application target.
package inject

import (
	"errors"
	"fmt"

	"github.com/moasq/wkinject/internal/pbx"
	"github.com/moasq/wkinject/internal/watchkit"
)

// ErrAlreadyInjected is returned when the graph already has a target named
// like one of the companions. The graph is left untouched.
var ErrAlreadyInjected = errors.New("companion targets already present")

// Copy-files phases that package the companions.
const (
	EmbedWatchContent   = "Embed Watch Content"
	EmbedAppExtensions  = "Embed App Extensions"
	WatchContentDstPath = "$(CONTENTS_FOLDER_PATH)/Watch"
)

// Inject adds the companion app and extension targets to g, wires their
// resources, packaging phases and dependencies, and moves the stale watchOS
// framework off the main target. Every named node is resolved before the
// first mutation, so a MissingNodeError leaves g as it was.
func Inject(g *pbx.Graph, req Request) (*Result, error) {
	req = req.withDefaults()
	a, err := resolveAnchors(g, req)
	if err != nil {
		return nil, err
	}
	b := &builder{g: g, req: req, anchors: a}
	return b.run()
}

// anchors are the existing nodes the new targets hang off.
type anchors struct {
	main       *pbx.NativeTarget
	root       *pbx.Group
	products   *pbx.Group
	frameworks *pbx.Group
}

func resolveAnchors(g *pbx.Graph, req Request) (anchors, error) {
	var a anchors
	if req.App.Name == "" || req.Extension.Name == "" {
		return a, fmt.Errorf("companion target names are required")
	}
	if req.App.Name == req.Extension.Name {
		return a, fmt.Errorf("companion app and extension share the name %q", req.App.Name)
	}

	var err error
	if a.main, err = g.TargetByName(req.MainTarget); err != nil {
		return a, err
	}
	if a.root, err = g.GroupByName(req.RootGroup); err != nil {
		return a, err
	}
	if a.products, err = g.GroupByName(req.ProductsGroup); err != nil {
		return a, err
	}
	a.frameworks, err = g.GroupByName(req.FrameworksGroup)
	if errors.Is(err, pbx.ErrMissingNode) {
		a.frameworks, err = a.root, nil
	}
	if err != nil {
		return a, err
	}

	for _, name := range []string{req.App.Name, req.Extension.Name} {
		if _, err := g.TargetByName(name); err == nil {
			return a, fmt.Errorf("%w: target %q exists", ErrAlreadyInjected, name)
		}
	}
	return a, nil
}

type builder struct {
	g       *pbx.Graph
	req     Request
	anchors anchors
}

// product is a target product: its file reference and the build file that
// places it in the embedding copy-files phase.
type product struct {
	ref       pbx.ID
	buildFile pbx.ID
}

func (b *builder) run() (*Result, error) {
	res := &Result{}

	// 1. Exclusion predicate.
	appFiles, appSkipped := partition(b.req.App, b.req.Storyboard.Path())
	extFiles, extSkipped := partition(b.req.Extension, "")
	res.Skipped = append(appSkipped, extSkipped...)

	// 2. Resource registration. The variant group of the storyboard is
	// created here too, before any build file points at it.
	board, err := b.registerLocalizedResource(b.req.Storyboard)
	if err != nil {
		return nil, err
	}
	res.StoryboardGroup = board.group
	appRes, err := b.registerPlainResources(appFiles)
	if err != nil {
		return nil, err
	}
	extRes, err := b.registerPlainResources(extFiles)
	if err != nil {
		return nil, err
	}

	// 3, 4. App resources and extension sources.
	appResources, err := b.g.AddBuildPhase(pbx.PhaseResources, "", append(appRes.buildFiles(), board.buildFile))
	if err != nil {
		return nil, err
	}
	extSources, err := b.g.AddBuildPhase(pbx.PhaseSources, "", extRes.buildFiles())
	if err != nil {
		return nil, err
	}

	// 5. Groups.
	appGroup, err := b.g.AddGroup(b.req.App.Name, b.req.App.Dir, append(appRes.refs(), board.group))
	if err != nil {
		return nil, err
	}
	extGroup, err := b.g.AddGroup(b.req.Extension.Name, b.req.Extension.Dir, extRes.refs())
	if err != nil {
		return nil, err
	}
	res.AppGroup, res.ExtensionGroup = appGroup.ID, extGroup.ID

	// 7. Products.
	appProduct, err := b.addProduct(b.req.AppProductName(), "wrapper.application", nil)
	if err != nil {
		return nil, err
	}
	extProduct, err := b.addProduct(b.req.ExtensionProductName(), "wrapper.app-extension",
		map[string]any{"ATTRIBUTES": []any{"RemoveHeadersOnCopy"}})
	if err != nil {
		return nil, err
	}
	res.AppProduct, res.ExtensionProduct = appProduct.ref, extProduct.ref

	// 8. The extension ships the app product as a resource.
	shipped, err := b.g.AddBuildFile(appProduct.ref, nil)
	if err != nil {
		return nil, err
	}
	extResources, err := b.g.AddBuildPhase(pbx.PhaseResources, "", []pbx.ID{shipped.ID})
	if err != nil {
		return nil, err
	}

	// 9. Hierarchy.
	if err := b.g.AppendChildren(b.anchors.root.ID, appGroup.ID, extGroup.ID); err != nil {
		return nil, err
	}
	if err := b.g.AppendChildren(b.anchors.products.ID, appProduct.ref, extProduct.ref); err != nil {
		return nil, err
	}

	// 10. Extension target.
	linked, err := watchkit.ResolveFrameworks(b.g, b.anchors.frameworks.ID, b.req.Frameworks)
	if err != nil {
		return nil, err
	}
	extTarget, err := b.addTarget(b.req.Extension, b.req.ExtensionAttributes, extProduct.ref,
		linked.ID, extSources.ID, extResources.ID)
	if err != nil {
		return nil, err
	}
	res.ExtensionTarget = extTarget.ID

	// 11, 12. Main target fix-up.
	main, err := b.g.TargetByName(b.req.MainTarget)
	if err != nil {
		return nil, err
	}
	if res.Removed, err = b.dropStaleFramework(main); err != nil {
		return nil, err
	}

	// 13, 14. App target, then both targets into the project.
	appTarget, err := b.addTarget(b.req.App, b.req.AppAttributes, appProduct.ref, appResources.ID)
	if err != nil {
		return nil, err
	}
	res.AppTarget = appTarget.ID
	if err := b.g.AddTarget(appTarget.ID); err != nil {
		return nil, err
	}
	if err := b.g.AddTarget(extTarget.ID); err != nil {
		return nil, err
	}

	// 15, 16. Packaging.
	if err := b.embed(main.ID, EmbedWatchContent, WatchContentDstPath, pbx.SubfolderProducts, appProduct.buildFile); err != nil {
		return nil, err
	}
	if err := b.embed(appTarget.ID, EmbedAppExtensions, "", pbx.SubfolderPlugIns, extProduct.buildFile); err != nil {
		return nil, err
	}

	// 17, 18. Dependencies.
	if _, err := b.g.AddTargetDependency(appTarget.ID, extTarget.ID); err != nil {
		return nil, fmt.Errorf("failed to add app dependency: %w", err)
	}
	if _, err := b.g.AddTargetDependency(main.ID, appTarget.ID); err != nil {
		return nil, fmt.Errorf("failed to add main target dependency: %w", err)
	}

	return res, nil
}

func (b *builder) addProduct(name, fileType string, settings map[string]any) (product, error) {
	ref := b.g.AddFileReference(pbx.FileReference{
		Path:             name,
		SourceTree:       pbx.SourceTreeBuiltProducts,
		ExplicitFileType: fileType,
		ExcludeFromIndex: true,
	})
	bf, err := b.g.AddBuildFile(ref.ID, settings)
	if err != nil {
		return product{}, err
	}
	return product{ref: ref.ID, buildFile: bf.ID}, nil
}

func (b *builder) addTarget(c Companion, attrs watchkit.Attributes, productRef pbx.ID, phases ...pbx.ID) (*pbx.NativeTarget, error) {
	settings := make(map[string]any, len(attrs.BuildSettings)+3)
	for k, v := range attrs.BuildSettings {
		settings[k] = v
	}
	setDefault(settings, "INFOPLIST_FILE", c.PlistPath)
	setDefault(settings, "PRODUCT_BUNDLE_IDENTIFIER", c.BundleID)
	setDefault(settings, "CODE_SIGN_ENTITLEMENTS", c.Entitlements)

	t, err := b.g.AddNativeTarget(pbx.TargetSpec{
		Name:             c.Name,
		ProductType:      attrs.ProductType,
		ProductReference: productRef,
		BuildPhases:      phases,
		BuildSettings:    settings,
		Configurations:   attrs.Configurations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create target %q: %w", c.Name, err)
	}
	return t, nil
}

func (b *builder) embed(target pbx.ID, name, dstPath string, dst pbx.SubfolderSpec, buildFile pbx.ID) error {
	ph, err := b.g.AddCopyFilesPhase(name, dstPath, dst, []pbx.ID{buildFile})
	if err != nil {
		return fmt.Errorf("failed to create %s phase: %w", name, err)
	}
	return b.g.AppendPhase(target, ph.ID)
}

func setDefault(m map[string]any, key, value string) {
	if _, ok := m[key]; ok || value == "" {
		return
	}
	m[key] = value
}
