package inject

import (
	"errors"
	"path"

	"github.com/moasq/wkinject/internal/pbx"
	ignore "github.com/sabhiram/go-gitignore"
)

// partition splits the companion's files into those that get a build file
// and those the exclusion patterns leave out. skip is dropped silently; the
// storyboard is registered on its own path. A directory scan lists only
// top-level entries, so skip matters for callers that list nested files.
func partition(c Companion, skip string) (kept, skipped []string) {
	gi := ignore.CompileIgnoreLines(c.Excludes...)
	for _, f := range c.Files {
		if path.Clean(f) == skip {
			continue
		}
		if gi.MatchesPath(f) {
			skipped = append(skipped, path.Join(c.Dir, f))
			continue
		}
		kept = append(kept, f)
	}
	return kept, skipped
}

// localized is a resource with per-locale variants.
type localized struct {
	ref       pbx.ID
	group     pbx.ID
	buildFile pbx.ID
}

// registerLocalizedResource registers the storyboard in both shapes Xcode
// expects: a file reference for the locale variant, wrapped in a variant
// group that stands for the logical resource, and a build file pointing at
// the variant group. Only the variant group belongs in the app's group and
// only the build file belongs in its resources phase.
func (b *builder) registerLocalizedResource(s Storyboard) (localized, error) {
	ref := b.g.AddFileReference(pbx.FileReference{
		Name:              s.Locale,
		Path:              s.Path(),
		LastKnownFileType: "file.storyboard",
	})
	variant, err := b.g.AddVariantGroup(s.Name, []pbx.ID{ref.ID})
	if err != nil {
		return localized{}, err
	}
	bf, err := b.g.AddBuildFile(variant.ID, nil)
	if err != nil {
		return localized{}, err
	}
	return localized{ref: ref.ID, group: variant.ID, buildFile: bf.ID}, nil
}

type plain struct {
	ref       pbx.ID
	buildFile pbx.ID
}

type plainSet []plain

func (s plainSet) refs() []pbx.ID {
	out := make([]pbx.ID, len(s))
	for i, p := range s {
		out[i] = p.ref
	}
	return out
}

func (s plainSet) buildFiles() []pbx.ID {
	out := make([]pbx.ID, len(s))
	for i, p := range s {
		out[i] = p.buildFile
	}
	return out
}

// registerPlainResource adds a file reference relative to the companion's
// group and a build file for it.
func (b *builder) registerPlainResource(file string) (plain, error) {
	ref := pbx.FileReference{Path: file}
	if base := path.Base(file); base != file {
		ref.Name = base
	}
	fr := b.g.AddFileReference(ref)
	bf, err := b.g.AddBuildFile(fr.ID, nil)
	if err != nil {
		return plain{}, err
	}
	return plain{ref: fr.ID, buildFile: bf.ID}, nil
}

func (b *builder) registerPlainResources(files []string) (plainSet, error) {
	out := make(plainSet, 0, len(files))
	for _, f := range files {
		p, err := b.registerPlainResource(f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// dropStaleFramework removes the watchOS-only archive from the main target's
// frameworks phase. The archive was linked there by plugin installation but
// only builds for the extension. A main target without a frameworks phase
// has nothing to remove.
func (b *builder) dropStaleFramework(main *pbx.NativeTarget) ([]pbx.ID, error) {
	phase, err := b.g.PhaseOf(main, pbx.PhaseFrameworks)
	if errors.Is(err, pbx.ErrMissingNode) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b.g.RemoveFromPhase(phase.ID, func(bf *pbx.BuildFile) bool {
		return b.g.FileName(bf.FileRef) == b.req.StaleFramework
	})
}
