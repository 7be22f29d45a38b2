// Package catalog flattens OSCAL catalog hierarchies into an ordered index of
// control ids.
package catalog

import (
	"fmt"
	"sort"

	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

// CatalogStructureError reports a duplicated or malformed catalog entry.
type CatalogStructureError struct {
	Source    string
	ControlID string
	Reason    string
}

func (e *CatalogStructureError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("catalog structure: control %q: %s", e.ControlID, e.Reason)
	}
	return fmt.Sprintf("catalog structure: %s: control %q: %s", e.Source, e.ControlID, e.Reason)
}

// Index is the flat, ordered, duplicate-free set of control ids of one or
// more catalogs. It is immutable once built.
type Index struct {
	ids    []string
	pos    map[string]int
	parent map[string]string
	titles map[string]string
}

// New flattens the given catalogs in order. Groups are walked depth first and
// control enhancements follow their parent control.
//
// A control id repeated inside one catalog is a CatalogStructureError. The
// same id in a later catalog is a merge: the first position is kept. Sources
// overlap whenever a profile and the catalog it imports are both referenced.
func New(catalogs ...model.Catalog) (*Index, error) {
	idx := &Index{
		pos:    make(map[string]int),
		parent: make(map[string]string),
		titles: make(map[string]string),
	}
	for _, c := range catalogs {
		w := walker{idx: idx, source: c.Source, local: make(map[string]bool)}
		if err := w.controls("", c.Controls); err != nil {
			return nil, err
		}
		if err := w.groups(c.Groups); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// walker adds one catalog to the index. local holds the ids of that catalog.
type walker struct {
	idx    *Index
	source string
	local  map[string]bool
}

func (w walker) groups(groups []model.Group) error {
	for _, g := range groups {
		if err := w.controls(g.ID, g.Controls); err != nil {
			return err
		}
		if err := w.groups(g.Groups); err != nil {
			return err
		}
	}
	return nil
}

func (w walker) controls(group string, controls []model.Control) error {
	for _, c := range controls {
		if c.ID == "" {
			return &CatalogStructureError{Source: w.source, ControlID: c.ID, Reason: "empty control id"}
		}
		if w.local[c.ID] {
			return &CatalogStructureError{Source: w.source, ControlID: c.ID, Reason: "duplicate control id"}
		}
		w.local[c.ID] = true
		if _, merged := w.idx.pos[c.ID]; !merged {
			w.idx.pos[c.ID] = len(w.idx.ids)
			w.idx.ids = append(w.idx.ids, c.ID)
			w.idx.parent[c.ID] = group
			w.idx.titles[c.ID] = c.Title
		}
		if err := w.controls(group, c.Controls); err != nil {
			return err
		}
	}
	return nil
}

// IDs returns the control ids in catalog document order.
func (idx *Index) IDs() []string {
	out := make([]string, len(idx.ids))
	copy(out, idx.ids)
	return out
}

// Len returns the number of controls.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// Contains reports whether id is a catalog control.
func (idx *Index) Contains(id string) bool {
	_, ok := idx.pos[id]
	return ok
}

// Position returns the document position of id, or -1.
func (idx *Index) Position(id string) int {
	if p, ok := idx.pos[id]; ok {
		return p
	}
	return -1
}

// Parent returns the id of the group that owns the control, if any.
func (idx *Index) Parent(id string) string {
	return idx.parent[id]
}

// Title returns the control title.
func (idx *Index) Title(id string) string {
	return idx.titles[id]
}

// Sorted returns the control ids ordered by CompareControlIDs.
func (idx *Index) Sorted() []string {
	out := idx.IDs()
	SortControlIDs(out)
	return out
}

// SortControlIDs sorts ids in place by CompareControlIDs.
func SortControlIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareControlIDs(ids[i], ids[j]) < 0
	})
}
