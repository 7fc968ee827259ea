package watchkit

import (
	"testing"

	"github.com/moasq/wkinject/internal/pbx"
	"github.com/moasq/wkinject/internal/pbx/pbxtest"
)

func TestResolveFrameworks(t *testing.T) {
	g, err := pbx.Parse(pbxtest.SingleTarget())
	if err != nil {
		t.Fatal(err)
	}
	group, err := g.GroupByName("Frameworks")
	if err != nil {
		t.Fatal(err)
	}
	existing, _ := g.FindFileReference(pbxtest.StaleFramework)
	childrenBefore := len(group.Children)

	phase, err := ResolveFrameworks(g, group.ID, DefaultFrameworks("MyApp/Plugins/"+pbxtest.PluginID, pbxtest.StaleFramework))
	if err != nil {
		t.Fatalf("ResolveFrameworks: %v", err)
	}
	if phase.Kind != pbx.PhaseFrameworks {
		t.Errorf("phase kind = %v", phase.Kind)
	}
	if len(phase.Files) != 2 {
		t.Fatalf("phase has %d members, want 2", len(phase.Files))
	}

	names := map[string]bool{}
	for _, id := range phase.Files {
		names[g.FileName(id)] = true
	}
	for _, want := range []string{"WatchKit.framework", pbxtest.StaleFramework} {
		if !names[want] {
			t.Errorf("phase missing %s: %v", want, names)
		}
	}

	// The wormhole archive reuses its reference; WatchKit gets a new one.
	obj, _ := g.Object(phase.Files[1])
	if bf := obj.(*pbx.BuildFile); bf.FileRef != existing.ID {
		t.Errorf("wormhole build file points at %s, want existing %s", bf.FileRef, existing.ID)
	}
	if len(group.Children) != childrenBefore+1 {
		t.Errorf("Frameworks group has %d children, want %d", len(group.Children), childrenBefore+1)
	}
	wk, ok := g.FindFileReference("WatchKit.framework")
	if !ok {
		t.Fatal("WatchKit reference missing")
	}
	if wk.SourceTree != pbx.SourceTreeSDKRoot || wk.LastKnownFileType != "wrapper.framework" {
		t.Errorf("WatchKit reference = %#v", wk)
	}
}

func TestResolveFrameworksUnknownGroup(t *testing.T) {
	g, err := pbx.Parse(pbxtest.SingleTarget())
	if err != nil {
		t.Fatal(err)
	}
	_, err = ResolveFrameworks(g, "NOTAGROUP", []Framework{SystemFramework("ClockKit.framework")})
	if err == nil {
		t.Fatal("expected error for unknown group")
	}
}
