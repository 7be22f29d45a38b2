package model

// Catalog is the control hierarchy of one OSCAL catalog, in document order.
type Catalog struct {
	Source   string
	Title    string
	Groups   []Group
	Controls []Control
}

// Group is a grouping node. Groups nest arbitrarily.
type Group struct {
	ID       string
	Title    string
	Groups   []Group
	Controls []Control
}

// Control is a catalog control. Nested Controls are its enhancements.
type Control struct {
	ID       string
	Title    string
	Controls []Control
}
