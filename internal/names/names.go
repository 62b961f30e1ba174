// Package names computes the namespaced names of launch model nodes and
// applies scoped remap rules to endpoint names.
package names

import (
	"sort"
	"strings"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
)

// Resolve returns the namespaced name of n seeded from its name attribute.
func Resolve(g graph.Graph, n *graph.Node) string {
	return ResolveKey(g, n, "name")
}

// ResolveKey returns the namespaced name of n seeded from attribute key.
// The node's own ns and every enclosing named Group up to the nearest
// LaunchFile are prefixed until the name is absolute. The absolute marker
// is not part of the returned name.
func ResolveKey(g graph.Graph, n *graph.Node, key string) string {
	name := meta.String(g, n, key)
	if ns := meta.String(g, n, "ns"); ns != "" && !IsAbsolute(name) {
		name = ns + "/" + name
	}
	for cur := n; !IsAbsolute(name); {
		parent, err := graph.Parent(g, cur)
		if err != nil {
			break
		}
		c := meta.Classify(g, parent)
		if c == meta.LaunchFile {
			break
		}
		if c == meta.Group {
			if group := meta.String(g, parent, "name"); group != "" {
				name = group + "/" + name
			}
		}
		cur = parent
	}
	return strings.TrimPrefix(name, "/")
}

// IsAbsolute reports whether name starts with the absolute marker.
func IsAbsolute(name string) bool {
	return strings.HasPrefix(name, "/")
}

// Remap rewrites the leading segments of name that equal the segments of
// from with the segments of to. Names that do not start with from are
// returned unchanged.
func Remap(from, to, name string) string {
	fromSegs := strings.Split(from, "/")
	nameSegs := strings.Split(name, "/")
	if len(nameSegs) < len(fromSegs) {
		return name
	}
	for i, s := range fromSegs {
		if nameSegs[i] != s {
			return name
		}
	}
	rest := nameSegs[len(fromSegs):]
	if to == "" {
		return strings.Join(rest, "/")
	}
	return strings.Join(append(strings.Split(to, "/"), rest...), "/")
}

// Rule is a remap declared in Scope. It applies to every endpoint below
// Scope.
type Rule struct {
	ID    string
	From  string
	To    string
	Scope string
}

// ApplyRemaps folds rules into the endpoint names keyed by endpoint ID and
// returns the final names. Rules are applied deepest scope first; rules
// declared in equally deep scopes apply in reverse declaration order. Each
// applicable rule rewrites the running name left by the previous ones.
// Rules with an empty from are skipped and counted.
func ApplyRemaps(rules []Rule, endpoints map[string]string) (map[string]string, int) {
	out := make(map[string]string, len(endpoints))
	for id, name := range endpoints {
		out[id] = name
	}
	ids := make([]string, 0, len(out))
	for id := range out {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return graph.Depth(sorted[i].Scope) < graph.Depth(sorted[j].Scope)
	})

	skipped := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		from := strings.TrimPrefix(r.From, "/")
		if from == "" {
			skipped++
			continue
		}
		to := strings.TrimPrefix(r.To, "/")
		for _, id := range ids {
			if graph.IsWithin(id, r.Scope) {
				out[id] = Remap(from, to, out[id])
			}
		}
	}
	return out, skipped
}
