package catalog

import (
	"strconv"
	"strings"
)

// CompareControlIDs orders control ids by family prefix and then by the
// numeric part, so ac-2 sorts before ac-10. Ids without a '-' compare as
// plain strings. Enhancements (ac-2.1) sort after their base control.
func CompareControlIDs(a, b string) int {
	if !strings.Contains(a, "-") || !strings.Contains(b, "-") {
		return strings.Compare(a, b)
	}
	aFamily, aRest := splitID(a)
	bFamily, bRest := splitID(b)
	if c := strings.Compare(aFamily, bFamily); c != 0 {
		return c
	}
	if c := compareNumeric(aRest, bRest); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareNumeric compares dotted numeric parts segment by segment, so 2.2
// sorts before 2.10. Non-numeric segments compare as strings.
func compareNumeric(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		if aErr != nil || bErr != nil {
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// Family returns the family prefix of a control id ("ac" for "ac-2.1").
func Family(id string) string {
	family, _ := splitID(id)
	return family
}

func splitID(id string) (string, string) {
	family, rest, _ := strings.Cut(id, "-")
	if i := strings.Index(rest, "-"); i >= 0 {
		rest = rest[:i]
	}
	return family, rest
}
