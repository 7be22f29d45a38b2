package oscal

import (
	"path/filepath"

	oscalTypes "github.com/defenseunicorns/go-oscal/src/types/oscal-1-1-2"
	"github.com/pkg/errors"

	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

const maxImportDepth = 16

// selection is the control filter of one profile import.
type selection struct {
	all      bool
	include  map[string]bool
	children map[string]bool
	exclude  map[string]bool
}

func newSelection(imp oscalTypes.Import) selection {
	s := selection{
		all:      imp.IncludeAll != nil || imp.IncludeControls == nil,
		include:  make(map[string]bool),
		children: make(map[string]bool),
		exclude:  make(map[string]bool),
	}
	if imp.IncludeControls != nil {
		for _, sel := range *imp.IncludeControls {
			if sel.WithIds == nil {
				continue
			}
			for _, id := range *sel.WithIds {
				s.include[id] = true
				if sel.WithChildControls == "yes" {
					s.children[id] = true
				}
			}
		}
	}
	if imp.ExcludeControls != nil {
		for _, sel := range *imp.ExcludeControls {
			if sel.WithIds == nil {
				continue
			}
			for _, id := range *sel.WithIds {
				s.exclude[id] = true
			}
		}
	}
	return s
}

func (s selection) keeps(id string, parentKept bool) bool {
	if s.exclude[id] {
		return false
	}
	return s.all || s.include[id] || parentKept
}

// filter walks one catalog and keeps the selected controls. A selected
// control under an unselected parent takes the parent's place. seen holds
// ids already taken from earlier imports.
type filter struct {
	sel  selection
	seen map[string]bool
}

func (f filter) groups(groups []model.Group) []model.Group {
	var out []model.Group
	for _, g := range groups {
		kept := model.Group{ID: g.ID, Title: g.Title}
		kept.Controls = f.controls(g.Controls, false)
		kept.Groups = f.groups(g.Groups)
		if len(kept.Controls) > 0 || len(kept.Groups) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

func (f filter) controls(controls []model.Control, parentWithChildren bool) []model.Control {
	var out []model.Control
	for _, c := range controls {
		if f.sel.keeps(c.ID, parentWithChildren) && !f.seen[c.ID] {
			f.seen[c.ID] = true
			kept := model.Control{ID: c.ID, Title: c.Title}
			kept.Controls = f.controls(c.Controls, f.sel.children[c.ID] || (parentWithChildren && !f.sel.exclude[c.ID]))
			out = append(out, kept)
			continue
		}
		out = append(out, f.controls(c.Controls, false)...)
	}
	return out
}

// resolveProfile builds the catalog selected by a profile, following
// imports of catalogs and other profiles.
func (l *Loader) resolveProfile(path string, p *oscalTypes.Profile, depth int, visiting map[string]bool) (model.Catalog, error) {
	out := model.Catalog{Source: path, Title: p.Metadata.Title}
	if depth > maxImportDepth {
		return out, errors.Errorf("profile %s: import depth exceeds %d", path, maxImportDepth)
	}
	if visiting[path] {
		return out, errors.Errorf("profile %s: import cycle", path)
	}
	visiting[path] = true
	defer delete(visiting, path)

	seen := make(map[string]bool)
	dir := filepath.Dir(path)
	for _, imp := range p.Imports {
		imported, err := l.loadSource(dir, imp.Href, depth+1, visiting)
		if err != nil {
			return out, errors.Wrapf(err, "profile %s: import %s", path, imp.Href)
		}
		f := filter{sel: newSelection(imp), seen: seen}
		out.Controls = append(out.Controls, f.controls(imported.Controls, false)...)
		out.Groups = append(out.Groups, f.groups(imported.Groups)...)
	}
	return out, nil
}
