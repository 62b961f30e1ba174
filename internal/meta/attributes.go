package meta

import (
	"strconv"
	"strings"
)

// Kind is the declared value type of a category attribute.
type Kind uint8

const (
	KindString Kind = iota
	KindBool
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	default:
		return "string"
	}
}

// AttrSpec declares one attribute of a category.
type AttrSpec struct {
	Key    string // attribute name in the model
	Markup string // attribute name in launch markup
	Kind   Kind
	// Default is the value launch tooling assumes when the attribute is
	// absent. A value equal to it is not written out. nil means any
	// non-empty value is written.
	Default any
}

func str(key string) AttrSpec { return AttrSpec{Key: key, Markup: key} }
func renamed(key, markup string) AttrSpec { return AttrSpec{Key: key, Markup: markup} }
func boolean(key string, def bool) AttrSpec { return AttrSpec{Key: key, Markup: key, Kind: KindBool, Default: def} }
func number(key string, def float64) AttrSpec { return AttrSpec{Key: key, Markup: key, Kind: KindNumber, Default: def} }

// Parse converts raw markup text into the declared kind. Text that does not
// parse as the declared kind is kept verbatim, so substitution expressions
// such as "$(arg respawn)" survive on boolean and numeric attributes.
func (a AttrSpec) Parse(raw string) any {
	switch a.Kind {
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return true
		case "false":
			return false
		}
	case KindNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
	}
	return raw
}

// Attributes are listed in the order they are rendered.
var attributes = map[Category][]AttrSpec{
	Argument: {str("name"), str("value"), str("default"), str("doc")},
	Node: {
		str("name"), str("pkg"), str("type"), str("args"), str("machine"),
		boolean("respawn", false), number("respawn_delay", 0),
		boolean("required", true), str("ns"), boolean("clear_params", false),
		str("output"), str("cwd"), str("launch-prefix"), str("if"), str("unless"),
	},
	Test: {
		renamed("testName", "test-name"), str("pkg"), str("type"), str("name"),
		str("args"), str("ns"), boolean("clear_params", false), str("cwd"),
		str("launch-prefix"), number("retry", 0), number("time-limit", 60),
		str("if"), str("unless"),
	},
	Include: {
		renamed("name", "file"), str("ns"), boolean("clear_params", false),
		boolean("pass_all_args", false), str("if"), str("unless"),
	},
	Group:     {renamed("name", "ns"), boolean("clear_params", false), str("if"), str("unless")},
	Parameter: {str("name"), str("value"), str("type"), str("textfile"), str("binfile"), str("command")},
	RosParam:  {str("command"), str("file"), str("param"), str("ns"), boolean("subst_value", false)},
	Remap:     {str("from"), str("to")},
	Machine: {
		str("name"), str("address"), str("env-loader"), str("default"),
		str("user"), str("password"), number("timeout", 10),
	},
	Env: {str("name"), str("value")},
}

// Attributes returns the declared attributes of c in render order.
func Attributes(c Category) []AttrSpec {
	return attributes[c]
}

// SpecFor returns the declaration of the model attribute key on c.
func SpecFor(c Category, key string) (AttrSpec, bool) {
	for _, a := range attributes[c] {
		if a.Key == key {
			return a, true
		}
	}
	return AttrSpec{}, false
}

// Markup names of the launch elements, by category.
var markupTags = map[Category]string{
	LaunchFile: "launch",
	Argument:   "arg",
	Node:       "node",
	Test:       "test",
	Include:    "include",
	Group:      "group",
	Parameter:  "param",
	RosParam:   "rosparam",
	Remap:      "remap",
	Machine:    "machine",
	Env:        "env",
}

// MarkupTag returns the launch element name for c, or "" when c has no
// element form.
func MarkupTag(c Category) string {
	return markupTags[c]
}

// FromMarkupTag maps a launch element name onto its category.
func FromMarkupTag(tag string) (Category, bool) {
	for c, t := range markupTags {
		if t == tag {
			return c, true
		}
	}
	return Undefined, false
}

// BodyKey is the attribute holding the verbatim text of a RosParamBody.
const BodyKey = "text"
