package pbx

import (
	"errors"
	"strings"
	"testing"

	"github.com/moasq/wkinject/internal/pbx/pbxtest"
)

func TestLookupsReportMissingNodes(t *testing.T) {
	g := loadFixture(t)

	tests := []struct {
		name string
		call func() error
		kind string
	}{
		{"target", func() error { _, err := g.TargetByName("Nope"); return err }, "target"},
		{"group", func() error { _, err := g.GroupByName("Nope"); return err }, "group"},
		{"phase", func() error {
			target, err := g.TargetByName(pbxtest.ProjectName)
			if err != nil {
				return err
			}
			_, err = g.PhaseOf(target, PhaseHeaders)
			return err
		}, "phase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, ErrMissingNode) {
				t.Fatalf("expected ErrMissingNode, got %v", err)
			}
			var mn *MissingNodeError
			if !errors.As(err, &mn) || mn.Kind != tt.kind {
				t.Errorf("error = %#v, want kind %q", err, tt.kind)
			}
		})
	}
}

func TestGroupByNamePrefersProjectGroups(t *testing.T) {
	g := loadFixture(t)
	// A referenced sub-project contributes its own Products group.
	if _, err := g.AddGroup("Products", "", nil); err != nil {
		t.Fatal(err)
	}
	grp, err := g.GroupByName("Products")
	if err != nil {
		t.Fatal(err)
	}
	if grp.ID != "19C28FACFE9D520D11CA2CBB" {
		t.Errorf("GroupByName picked %s, want the project's product group", grp.ID)
	}
}

func TestNewIDUniqueAcrossRemovals(t *testing.T) {
	g := loadFixture(t)
	seen := make(map[ID]bool)
	for i := 0; i < 500; i++ {
		id := g.NewID()
		if len(id) != idLength {
			t.Fatalf("id %q has length %d", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if _, exists := g.Object(id); exists {
			t.Fatalf("id %q collides with an existing object", id)
		}
		seen[id] = true
	}
}

func TestAllocatorSkipsReservedIDs(t *testing.T) {
	a := newIDAllocator()
	a.reserve("AAAAAAAAAAAAAAAAAAAAAAAA")
	calls := 0
	a.next = func() string {
		calls++
		if calls == 1 {
			return "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
		}
		return "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	}
	id := a.allocate()
	if id != "BBBBBBBBBBBBBBBBBBBBBBBB" {
		t.Fatalf("allocate = %q", id)
	}
	if calls != 2 {
		t.Errorf("next called %d times, want 2", calls)
	}
}

func TestAddFileReferenceDefaults(t *testing.T) {
	g := loadFixture(t)
	ref := g.AddFileReference(FileReference{Path: "Interface.storyboard"})
	if ref.SourceTree != SourceTreeGroup {
		t.Errorf("SourceTree = %q", ref.SourceTree)
	}
	if ref.LastKnownFileType != "file.storyboard" {
		t.Errorf("LastKnownFileType = %q", ref.LastKnownFileType)
	}
	if got, ok := g.Object(ref.ID); !ok || got != ref {
		t.Error("reference not registered under its ID")
	}

	product := g.AddFileReference(FileReference{
		Path:             "Demo WatchKit App.app",
		SourceTree:       SourceTreeBuiltProducts,
		ExplicitFileType: "wrapper.application",
	})
	if product.LastKnownFileType != "" {
		t.Errorf("explicit type should suppress lastKnownFileType, got %q", product.LastKnownFileType)
	}
}

func TestAddBuildFileRejectsNonFiles(t *testing.T) {
	g := loadFixture(t)
	_, err := g.AddBuildFile(pbxtest.MainTargetID, nil)
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}

	grp, err := g.AddGroup("Plain", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddBuildFile(grp.ID, nil); err == nil {
		t.Error("plain group accepted as build file target")
	}

	ref := g.AddFileReference(FileReference{Path: "Interface.storyboard"})
	variant, err := g.AddVariantGroup("Interface.storyboard", []ID{ref.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddBuildFile(variant.ID, nil); err != nil {
		t.Errorf("variant group rejected: %v", err)
	}
}

func TestAddBuildPhaseRequiresBuildFiles(t *testing.T) {
	g := loadFixture(t)
	ref := g.AddFileReference(FileReference{Path: "a.png"})
	if _, err := g.AddBuildPhase(PhaseResources, "", []ID{ref.ID}); err == nil {
		t.Fatal("file reference accepted as phase member")
	}
	bf, err := g.AddBuildFile(ref.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	ph, err := g.AddBuildPhase(PhaseResources, "", []ID{bf.ID})
	if err != nil {
		t.Fatal(err)
	}
	if ph.Isa() != IsaResourcesPhase || ph.Label() != "Resources" {
		t.Errorf("phase isa=%s label=%s", ph.Isa(), ph.Label())
	}
}

func TestAddNativeTargetCreatesConfigurations(t *testing.T) {
	g := loadFixture(t)
	product := g.AddFileReference(FileReference{Path: "Demo.appex", ExplicitFileType: "wrapper.app-extension", SourceTree: SourceTreeBuiltProducts})

	target, err := g.AddNativeTarget(TargetSpec{
		Name:             "Demo",
		ProductType:      "com.apple.product-type.watchkit2-extension",
		ProductReference: product.ID,
		BuildSettings:    map[string]any{"SDKROOT": "watchos"},
	})
	if err != nil {
		t.Fatalf("AddNativeTarget: %v", err)
	}
	if target.ProductName != "Demo" {
		t.Errorf("ProductName = %q", target.ProductName)
	}

	obj, ok := g.Object(target.BuildConfigurationList)
	if !ok {
		t.Fatal("configuration list missing")
	}
	list := obj.(*ConfigurationList)
	if len(list.BuildConfigurations) != 2 || list.DefaultConfigurationName != "Release" {
		t.Fatalf("list = %#v", list)
	}
	for _, id := range list.BuildConfigurations {
		obj, _ := g.Object(id)
		bc := obj.(*BuildConfiguration)
		if bc.BuildSettings["SDKROOT"] != "watchos" {
			t.Errorf("%s settings = %v", bc.Name, bc.BuildSettings)
		}
	}

	// Each configuration owns a copy of the settings.
	first, _ := g.Object(list.BuildConfigurations[0])
	first.(*BuildConfiguration).BuildSettings["SDKROOT"] = "iphoneos"
	second, _ := g.Object(list.BuildConfigurations[1])
	if second.(*BuildConfiguration).BuildSettings["SDKROOT"] != "watchos" {
		t.Error("configurations share a settings map")
	}

	if _, err := g.AddNativeTarget(TargetSpec{Name: "Bad", ProductReference: "NOPE"}); !errors.Is(err, ErrInconsistent) {
		t.Errorf("expected ErrInconsistent for missing product, got %v", err)
	}
}

func TestAddTargetIsIdempotent(t *testing.T) {
	g := loadFixture(t)
	if err := g.AddTarget(pbxtest.MainTargetID); err != nil {
		t.Fatal(err)
	}
	p, _ := g.Project()
	if len(p.Targets) != 1 {
		t.Errorf("project lists %d targets, want 1", len(p.Targets))
	}
}

func TestAddTargetDependency(t *testing.T) {
	g := loadFixture(t)
	product := g.AddFileReference(FileReference{Path: "Demo.app", ExplicitFileType: "wrapper.application", SourceTree: SourceTreeBuiltProducts})
	demo, err := g.AddNativeTarget(TargetSpec{Name: "Demo", ProductReference: product.ID})
	if err != nil {
		t.Fatal(err)
	}

	dep, err := g.AddTargetDependency(pbxtest.MainTargetID, demo.ID)
	if err != nil {
		t.Fatalf("AddTargetDependency: %v", err)
	}
	obj, _ := g.Object(dep.TargetProxy)
	proxy, ok := obj.(*ContainerItemProxy)
	if !ok {
		t.Fatalf("proxy is %T", obj)
	}
	if proxy.ContainerPortal != g.RootID || proxy.RemoteGlobalID != demo.ID || proxy.RemoteInfo != "Demo" || proxy.ProxyType != "1" {
		t.Errorf("proxy = %#v", proxy)
	}

	main, _ := g.Target(pbxtest.MainTargetID)
	if got := g.DependencyTargets(main); len(got) != 1 || got[0] != demo.ID {
		t.Errorf("DependencyTargets = %v", got)
	}

	_, err = g.AddTargetDependency(demo.ID, demo.ID)
	if !errors.Is(err, ErrInconsistent) || !strings.Contains(err.Error(), "itself") {
		t.Errorf("self dependency: %v", err)
	}
}

func TestRemoveFromPhase(t *testing.T) {
	g := loadFixture(t)
	target, _ := g.TargetByName(pbxtest.ProjectName)
	frameworks, _ := g.PhaseOf(target, PhaseFrameworks)
	before := g.Len()

	removed, err := g.RemoveFromPhase(frameworks.ID, func(bf *BuildFile) bool {
		return g.FileName(bf.FileRef) == pbxtest.StaleFramework
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 {
		t.Fatalf("removed %v", removed)
	}
	if len(frameworks.Files) != 1 || g.FileName(frameworks.Files[0]) != "Foundation.framework" {
		t.Errorf("remaining members = %v", frameworks.Files)
	}
	if _, ok := g.Object(removed[0]); ok {
		t.Error("removed build file still in graph")
	}
	if g.Len() != before-1 {
		t.Errorf("object count = %d, want %d", g.Len(), before-1)
	}
	if _, ok := g.FindFileReference(pbxtest.StaleFramework); !ok {
		t.Error("file reference should survive removal from the phase")
	}

	if _, err := g.RemoveFromPhase(pbxtest.MainTargetID, func(*BuildFile) bool { return true }); err == nil {
		t.Error("expected error for non-phase ID")
	}
}

func TestAppendChildrenAndPhase(t *testing.T) {
	g := loadFixture(t)
	main, _ := g.Project()

	if err := g.AppendChildren(main.MainGroup, "MISSING"); !errors.Is(err, ErrInconsistent) {
		t.Errorf("AppendChildren with missing child: %v", err)
	}
	if err := g.AppendPhase(pbxtest.MainTargetID, main.MainGroup); err == nil {
		t.Error("group accepted as phase")
	}

	ph, err := g.AddBuildPhase(PhaseHeaders, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AppendPhase(pbxtest.MainTargetID, ph.ID); err != nil {
		t.Fatal(err)
	}
	target, _ := g.Target(pbxtest.MainTargetID)
	if target.BuildPhases[len(target.BuildPhases)-1] != ph.ID {
		t.Error("phase not appended last")
	}
}
