// Package meta holds the closed registry of launch-model categories and the
// classifier that maps any model node onto one of them by walking its
// prototype chain.
package meta

import (
	"github.com/agentic-research/rosgraph/internal/graph"
)

// Category is the role a node plays in a launch model.
type Category uint8

const (
	Undefined Category = iota
	LaunchFile
	Include
	Argument
	Remap
	Group
	Parameter
	RosParam
	Node
	Topic
	GroupPublisher
	GroupSubscriber
	Subscriber
	Publisher
	Machine
	Env
	Test
	RosParamBody
)

var categoryNames = [...]string{
	Undefined:       "undefined",
	LaunchFile:      "LaunchFile",
	Include:         "Include",
	Argument:        "Argument",
	Remap:           "Remap",
	Group:           "Group",
	Parameter:       "Parameter",
	RosParam:        "RosParam",
	Node:            "Node",
	Topic:           "Topic",
	GroupPublisher:  "GroupPublisher",
	GroupSubscriber: "GroupSubscriber",
	Subscriber:      "Subscriber",
	Publisher:       "Publisher",
	Machine:         "Machine",
	Env:             "Env",
	Test:            "Test",
	RosParamBody:    "RosParamBody",
}

// registry maps prototype names to categories. The lowercase rosparam
// spellings are what older models use for the same two prototypes.
var registry = map[string]Category{
	"rosparam":     RosParam,
	"rosparamBody": RosParamBody,
}

func init() {
	for c := LaunchFile; c <= RosParamBody; c++ {
		registry[categoryNames[c]] = c
	}
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return categoryNames[Undefined]
}

// All returns every defined category in declaration order.
func All() []Category {
	out := make([]Category, 0, len(categoryNames)-1)
	for c := LaunchFile; c <= RosParamBody; c++ {
		out = append(out, c)
	}
	return out
}

// Lookup returns the category registered under a prototype name.
func Lookup(name string) (Category, bool) {
	c, ok := registry[name]
	return c, ok
}

// IsPublisher reports whether c is a publishing endpoint.
func (c Category) IsPublisher() bool { return c == Publisher || c == GroupPublisher }

// IsSubscriber reports whether c is a subscribing endpoint.
func (c Category) IsSubscriber() bool { return c == Subscriber || c == GroupSubscriber }

// IsEndpoint reports whether c is any connectable port.
func (c Category) IsEndpoint() bool { return c.IsPublisher() || c.IsSubscriber() }

// IsScope reports whether c delimits a namespace / remap scope.
func (c Category) IsScope() bool { return c == Group || c == LaunchFile }

// Classify walks n's prototype chain, starting at its direct prototype, and
// returns the first category whose registered name matches the prototype's
// name attribute. A chain that ends (or loops) without a match yields
// Undefined.
func Classify(g graph.Graph, n *graph.Node) Category {
	seen := make(map[string]struct{})
	for base := n.Base; base != ""; {
		if _, loop := seen[base]; loop {
			return Undefined
		}
		seen[base] = struct{}{}

		proto, err := g.GetNode(base)
		if err != nil {
			return Undefined
		}
		if name, ok := proto.Attributes["name"].(string); ok {
			if c, ok := registry[name]; ok {
				return c
			}
		}
		base = proto.Base
	}
	return Undefined
}
