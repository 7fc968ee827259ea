package pbx

import "errors"

// Validate checks the structural invariants of the graph: build files
// resolve to file-like objects, phase members are reachable from the group
// hierarchy, target dependencies are acyclic and every target is listed by
// the project. All violations are returned joined.
func (g *Graph) Validate() error {
	p, err := g.Project()
	if err != nil {
		return err
	}

	var errs []error
	reachable := g.reachableFromGroups(p)

	for _, obj := range g.Objects() {
		switch o := obj.(type) {
		case *BuildFile:
			if !g.isFileLike(o.FileRef) {
				errs = append(errs, inconsistent(o.ID, o.FileRef, "build file does not resolve to a file reference"))
			}
		case Phase:
			for _, m := range o.Members() {
				bf, ok := g.objects[m].(*BuildFile)
				if !ok {
					errs = append(errs, inconsistent(o.ObjectID(), m, "phase member is not a build file"))
					continue
				}
				if !reachable[bf.FileRef] {
					errs = append(errs, inconsistent(o.ObjectID(), bf.FileRef, "%q is not reachable from any group", g.FileName(bf.FileRef)))
				}
			}
		case *Group:
			for _, c := range o.Children {
				if _, ok := g.objects[c]; !ok {
					errs = append(errs, inconsistent(o.ID, c, "group child does not exist"))
				}
			}
		case *NativeTarget:
			for _, ph := range o.BuildPhases {
				if !g.isPhase(ph) {
					errs = append(errs, inconsistent(o.ID, ph, "target phase is not a build phase"))
				}
			}
			for _, d := range o.Dependencies {
				dep, ok := g.objects[d].(*TargetDependency)
				if !ok {
					errs = append(errs, inconsistent(o.ID, d, "dependency is not a target dependency"))
					continue
				}
				if dep.Target == o.ID {
					errs = append(errs, inconsistent(o.ID, d, "target %q depends on itself", o.Name))
				}
			}
		}
	}

	listed := make(map[ID]bool, len(p.Targets))
	for _, id := range p.Targets {
		listed[id] = true
		if _, ok := g.objects[id]; !ok {
			errs = append(errs, inconsistent(p.ID, id, "project target does not exist"))
		}
	}
	for _, t := range g.NativeTargets() {
		if !listed[t.ID] {
			errs = append(errs, inconsistent(p.ID, t.ID, "target %q is not listed by the project", t.Name))
		}
	}

	if cycle := g.dependencyCycle(); cycle != "" {
		errs = append(errs, inconsistent(cycle, "", "target dependency cycle"))
	}

	return errors.Join(errs...)
}

// reachableFromGroups walks the main group and the product groups of
// referenced sub-projects.
func (g *Graph) reachableFromGroups(p *Project) map[ID]bool {
	seen := make(map[ID]bool)
	stack := append([]ID{p.MainGroup}, p.ReferencedProductGroups()...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		switch o := g.objects[id].(type) {
		case *Group:
			stack = append(stack, o.Children...)
		case *RawObject:
			if o.Kind == IsaVersionGroup {
				if kids, ok := o.Fields["children"].([]any); ok {
					for _, k := range kids {
						stack = append(stack, ID(scalar(k)))
					}
				}
			}
		}
	}
	return seen
}

// dependencyCycle returns a target on a dependency cycle, or "".
func (g *Graph) dependencyCycle() ID {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[ID]int)
	var visit func(id ID) ID
	visit = func(id ID) ID {
		switch state[id] {
		case visiting:
			return id
		case done:
			return ""
		}
		state[id] = visiting
		if t, ok := g.objects[id].(*NativeTarget); ok {
			for _, next := range g.DependencyTargets(t) {
				if c := visit(next); c != "" {
					return c
				}
			}
		}
		state[id] = done
		return ""
	}
	for _, t := range g.NativeTargets() {
		if c := visit(t.ID); c != "" {
			return c
		}
	}
	return ""
}
