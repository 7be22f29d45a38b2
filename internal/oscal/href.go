package oscal

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrRemoteReference is returned for hrefs that would need network access.
var ErrRemoteReference = errors.New("remote references are not supported")

const trestleScheme = "trestle://"

// ResolveHref maps an href to a local path. trestle:// hrefs and plain
// relative paths resolve against base; relative paths are tried against dir
// first when dir is set.
func ResolveHref(base, dir, href string) ([]string, error) {
	switch {
	case href == "":
		return nil, errors.New("empty href")
	case strings.HasPrefix(href, trestleScheme):
		return []string{filepath.Join(base, strings.TrimPrefix(href, trestleScheme))}, nil
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return nil, errors.Wrap(ErrRemoteReference, href)
	case strings.HasPrefix(href, "file://"):
		u, err := url.Parse(href)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", href)
		}
		return []string{filepath.FromSlash(u.Path)}, nil
	case strings.HasPrefix(href, "#"):
		return nil, errors.Errorf("back-matter reference %s is not supported", href)
	case filepath.IsAbs(href):
		return []string{href}, nil
	}
	var out []string
	if dir != "" && dir != base {
		out = append(out, filepath.Join(dir, href))
	}
	return append(out, filepath.Join(base, href)), nil
}
