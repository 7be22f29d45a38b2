package oscal

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ethanolivertroy/compdef-insights/internal/model"
)

// Workspace is one component definition with the catalogs its control
// implementations reference.
type Workspace struct {
	Path       string
	Definition model.Definition
	Catalogs   []model.Catalog
}

// Loader reads documents relative to a trestle workspace root.
type Loader struct {
	Base string
}

// NewLoader returns a Loader rooted at base.
func NewLoader(base string) *Loader {
	return &Loader{Base: base}
}

// Load reads the component definition at file (relative to the base path)
// and every catalog or profile named as a control implementation source.
func (l *Loader) Load(file string) (*Workspace, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Base, file)
	}
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if doc.ComponentDefinition == nil {
		return nil, &ConversionError{Path: path, Reason: "expected a component-definition, found " + doc.kind()}
	}
	def, err := ToDefinition(doc.ComponentDefinition)
	if err != nil {
		return nil, errors.Wrapf(err, "converting %s", path)
	}

	ws := &Workspace{Path: path, Definition: def}
	// Different hrefs may name the same file.
	loaded := make(map[string]bool)
	for _, src := range def.Sources() {
		srcPath, err := l.resolve(filepath.Dir(path), src)
		if err != nil {
			return nil, errors.Wrapf(err, "loading source %s", src)
		}
		if loaded[srcPath] {
			log.WithFields(log.Fields{
				"source": src,
				"path":   srcPath,
			}).Debug("Catalog source already loaded")
			continue
		}
		loaded[srcPath] = true

		cat, err := l.loadPath(srcPath, 0, make(map[string]bool))
		if err != nil {
			return nil, errors.Wrapf(err, "loading source %s", src)
		}
		log.WithFields(log.Fields{
			"source": src,
			"path":   cat.Source,
		}).Debug("Loaded catalog source")
		ws.Catalogs = append(ws.Catalogs, cat)
	}
	return ws, nil
}

// LoadCatalog reads a catalog, or resolves a profile to its catalog.
func (l *Loader) LoadCatalog(href string) (model.Catalog, error) {
	return l.loadSource("", href, 0, make(map[string]bool))
}

func (l *Loader) loadSource(dir, href string, depth int, visiting map[string]bool) (model.Catalog, error) {
	path, err := l.resolve(dir, href)
	if err != nil {
		return model.Catalog{}, err
	}
	return l.loadPath(path, depth, visiting)
}

// resolve returns the cleaned path of the first existing file href names.
func (l *Loader) resolve(dir, href string) (string, error) {
	candidates, err := ResolveHref(l.Base, dir, href)
	if err != nil {
		return "", err
	}
	path, err := firstExisting(candidates)
	if err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

func (l *Loader) loadPath(path string, depth int, visiting map[string]bool) (model.Catalog, error) {
	doc, err := readDocument(path)
	if err != nil {
		return model.Catalog{}, err
	}
	switch {
	case doc.Catalog != nil:
		return ToCatalog(path, doc.Catalog), nil
	case doc.Profile != nil:
		return l.resolveProfile(path, doc.Profile, depth, visiting)
	}
	return model.Catalog{}, &ConversionError{Path: path, Reason: "expected a catalog or profile, found " + doc.kind()}
}

func firstExisting(paths []string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.Errorf("no such file: %s", paths[len(paths)-1])
}
