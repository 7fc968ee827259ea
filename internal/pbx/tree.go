package pbx

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"
)

// WriteTree renders the group hierarchy and the targets with their phases
// and dependencies.
func (g *Graph) WriteTree(w io.Writer, title string) error {
	p, err := g.Project()
	if err != nil {
		return err
	}

	root := gtree.NewRoot(title)

	files := root.Add("Files")
	if main, ok := g.objects[p.MainGroup].(*Group); ok {
		g.addGroupNodes(files, main, make(map[ID]bool))
	}

	targets := root.Add("Targets")
	for _, t := range g.NativeTargets() {
		node := targets.Add(t.Name)
		for _, id := range t.BuildPhases {
			ph, ok := g.objects[id].(Phase)
			if !ok {
				continue
			}
			phNode := node.Add(phaseLabel(ph))
			for _, m := range ph.Members() {
				phNode.Add(g.FileName(m))
			}
		}
		for _, dep := range g.DependencyTargets(t) {
			if d, ok := g.objects[dep].(*NativeTarget); ok {
				node.Add("depends on " + d.Name)
			}
		}
	}

	return gtree.OutputFromRoot(w, root)
}

func (g *Graph) addGroupNodes(parent *gtree.Node, grp *Group, seen map[ID]bool) {
	if seen[grp.ID] {
		return
	}
	seen[grp.ID] = true
	for _, c := range grp.Children {
		name := g.FileName(c)
		if name == "" || name == "." {
			continue
		}
		child := parent.Add(name)
		if sub, ok := g.objects[c].(*Group); ok {
			g.addGroupNodes(child, sub, seen)
		}
	}
}

func phaseLabel(ph Phase) string {
	if cp, ok := ph.(*CopyFilesPhase); ok {
		return fmt.Sprintf("%s [dst %d]", cp.Label(), cp.DstSubfolder)
	}
	return ph.Label()
}
