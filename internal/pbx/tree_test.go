package pbx

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTree(t *testing.T) {
	g := loadFixture(t)
	var buf bytes.Buffer
	if err := g.WriteTree(&buf, "MyApp.xcodeproj"); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	out := buf.String()

	checks := []string{
		"MyApp.xcodeproj",
		"Files",
		"main.m",
		"MyApp-Info.plist",
		"Targets",
		"Frameworks",
		"libMMWormhole-watchos.a",
		"Foundation.framework",
		"MyApp.app",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Copy www directory") {
		t.Errorf("unmodelled phases should not be listed:\n%s", out)
	}
}

func TestWriteTreeShowsCopyPhasesAndDependencies(t *testing.T) {
	g := loadFixture(t)
	product := g.AddFileReference(FileReference{Path: "Demo.app", ExplicitFileType: "wrapper.application", SourceTree: SourceTreeBuiltProducts})
	bf, err := g.AddBuildFile(product.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	demo, err := g.AddNativeTarget(TargetSpec{Name: "Demo", ProductReference: product.ID})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddTarget(demo.ID); err != nil {
		t.Fatal(err)
	}
	embed, err := g.AddCopyFilesPhase("Embed Watch Content", "$(CONTENTS_FOLDER_PATH)/Watch", SubfolderProducts, []ID{bf.ID})
	if err != nil {
		t.Fatal(err)
	}
	target, _ := g.TargetByName("MyApp")
	if err := g.AppendPhase(target.ID, embed.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddTargetDependency(target.ID, demo.ID); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := g.WriteTree(&buf, "MyApp.xcodeproj"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Embed Watch Content [dst 16]", "Demo.app", "depends on Demo"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}
