package api

// Document is the portable JSON form of a project: every node of the model
// tree as a flat list in pre-order.
type Document struct {
	// Version of the document format.
	Version string `json:"version"`
	// Nodes in pre-order: a node's parent always precedes it.
	Nodes []NodeRecord `json:"nodes"`
}

// NodeRecord is one node of a Document. The parent is implied by the ID
// path ("/a/b" is a child of "/a"; "" is the project root).
type NodeRecord struct {
	ID string `json:"id"`
	// Base is the ID of the node's prototype.
	Base string `json:"base,omitempty"`
	// Attributes holds scalar values (string, bool, number).
	Attributes map[string]any `json:"attributes,omitempty"`
	// Pointers holds named references to other node IDs.
	Pointers map[string]string `json:"pointers,omitempty"`
}

// Element is one markup element as handed over by the launch parser.
// Tags use canonical category casing ("Argument", "RosParam", ...).
type Element struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*Element        `json:"children,omitempty"`
	// Text is the character data of the element, kept only when it is not
	// blank.
	Text string `json:"text,omitempty"`
}

// Package is one entry of the library update feed.
type Package struct {
	Name        string          `json:"package"`
	Nodes       []NodeTemplate  `json:"nodes"`
	LaunchFiles []LaunchFileRef `json:"launch_files"`
}

// NodeTemplate describes an executable a package provides.
type NodeTemplate struct {
	Node        string   `json:"node"`
	Publishers  []string `json:"publishers"`
	Subscribers []string `json:"subscribers"`
}

// LaunchFileRef is a launch file shipped by a package.
type LaunchFileRef struct {
	RelativePath string `json:"relative_path"`
}
