package service

import (
	"bytes"
	"context"
	"errors"

	"github.com/moasq/wkinject/internal/pbx"
	"github.com/moasq/wkinject/internal/resources"
)

// Description is a read-only view of a project graph.
type Description struct {
	Project  string       `json:"project"`
	PBXPath  string       `json:"pbxproj"`
	Objects  int          `json:"objects"`
	Targets  []TargetInfo `json:"targets"`
	Problems []string     `json:"problems,omitempty"`
	Tree     string       `json:"-"`
}

// TargetInfo describes one native target.
type TargetInfo struct {
	Name         string      `json:"name"`
	ProductType  string      `json:"product_type"`
	Phases       []PhaseInfo `json:"phases"`
	Dependencies []string    `json:"dependencies,omitempty"`
}

// PhaseInfo describes one build phase of a target.
type PhaseInfo struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// Describe loads the project under root and summarises its targets. Graph
// invariant violations are reported as problems rather than errors.
func Describe(ctx context.Context, root string) (*Description, error) {
	project, err := locateProject(root)
	if err != nil {
		return nil, err
	}
	g, err := pbx.Load(project.PBXPath())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &Description{
		Project: project.Name,
		PBXPath: project.PBXPath(),
		Objects: g.Len(),
	}
	for _, t := range g.NativeTargets() {
		info := TargetInfo{Name: t.Name, ProductType: t.ProductType}
		for _, id := range t.BuildPhases {
			ph, err := g.Phase(id)
			if err != nil {
				continue
			}
			pi := PhaseInfo{Name: ph.Label(), Files: []string{}}
			for _, m := range ph.Members() {
				pi.Files = append(pi.Files, g.FileName(m))
			}
			info.Phases = append(info.Phases, pi)
		}
		for _, dep := range g.DependencyTargets(t) {
			if dt, err := g.Target(dep); err == nil {
				info.Dependencies = append(info.Dependencies, dt.Name)
			}
		}
		d.Targets = append(d.Targets, info)
	}

	if err := g.Validate(); err != nil {
		d.Problems = problems(err)
	}

	var buf bytes.Buffer
	if err := g.WriteTree(&buf, treeTitle(project)); err != nil {
		return nil, err
	}
	d.Tree = buf.String()
	return d, nil
}

func treeTitle(p *resources.Project) string {
	return p.Name + ".xcodeproj"
}

func problems(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
