// Package connect regenerates the derived connection nodes of a launch
// model: group-level publisher/subscriber ports and the Topic edges between
// endpoints whose resolved names match.
package connect

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/names"
	"github.com/agentic-research/rosgraph/internal/report"
)

// Resolver rebuilds Topic, GroupPublisher and GroupSubscriber nodes.
type Resolver struct {
	Store graph.Store
}

func NewResolver(s graph.Store) *Resolver {
	return &Resolver{Store: s}
}

// run holds the state of one Resolve call.
type run struct {
	view    *overlay
	cs      *graph.ChangeSet
	rep     *report.Report
	protos  map[meta.Category]string
	cats    map[string]meta.Category
	sources map[string]string // synthesized port → endpoint it aggregates

	groups      []*graph.Node
	launchFiles []*graph.Node
	endpoints   []*graph.Node
	remaps      []*graph.Node
}

// Resolve recomputes the derived nodes below rootID and applies the result
// as one change set. Endpoints and pairings that cannot be resolved are
// skipped and counted in the report; only a failure to read the model or
// a store rejection is returned as an error.
func (r *Resolver) Resolve(ctx context.Context, rootID string) (report.Report, error) {
	var rep report.Report
	protos, err := meta.Prototypes(r.Store)
	if err != nil {
		return rep, fmt.Errorf("connect: load prototypes: %w", err)
	}
	for _, c := range []meta.Category{meta.Topic, meta.GroupPublisher, meta.GroupSubscriber} {
		if _, ok := protos[c]; !ok {
			return rep, fmt.Errorf("connect: prototype %s: %w", c, graph.ErrNotFound)
		}
	}

	st := &run{
		view:    newOverlay(r.Store),
		cs:      &graph.ChangeSet{},
		rep:     &rep,
		protos:  protos,
		cats:    make(map[string]meta.Category),
		sources: make(map[string]string),
	}
	if err := st.collect(r.Store, rootID); err != nil {
		return rep, fmt.Errorf("connect: traverse %q: %w", rootID, err)
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// Inner groups aggregate first so that outer groups see their ports.
	sort.SliceStable(st.groups, func(i, j int) bool {
		return st.groups[i].Depth() > st.groups[j].Depth()
	})
	for _, g := range st.groups {
		st.synthesize(g)
	}

	final := st.resolveNames()
	scopes := append(append([]*graph.Node(nil), st.groups...), st.launchFiles...)
	for _, s := range scopes {
		st.connect(s, final)
	}

	rep.Deleted = len(st.cs.Deletes)
	rep.Created = len(st.cs.Creates)
	if st.cs.Empty() {
		return rep, nil
	}
	if err := r.Store.Apply(ctx, st.cs); err != nil {
		return rep, fmt.Errorf("connect: apply %s: %w", st.cs, err)
	}
	return rep, nil
}

// collect buckets the subtree by category and schedules the deletion of
// every Topic and of the group ports owned by Groups.
func (st *run) collect(g graph.Graph, rootID string) error {
	return graph.Walk(g, rootID, func(n *graph.Node) error {
		if n.ID == meta.MetaID {
			return graph.SkipChildren
		}
		c := meta.Classify(g, n)
		st.cats[n.ID] = c
		switch c {
		case meta.Topic:
			st.drop(n.ID)
			return graph.SkipChildren
		case meta.GroupPublisher, meta.GroupSubscriber:
			if pid, ok := graph.ParentID(n.ID); ok && st.category(g, pid) == meta.Group {
				st.drop(n.ID)
				return graph.SkipChildren
			}
			st.endpoints = append(st.endpoints, n)
		case meta.Publisher, meta.Subscriber:
			st.endpoints = append(st.endpoints, n)
		case meta.Group:
			st.groups = append(st.groups, n)
		case meta.LaunchFile:
			st.launchFiles = append(st.launchFiles, n)
		case meta.Remap:
			st.remaps = append(st.remaps, n)
		}
		return nil
	})
}

func (st *run) drop(id string) {
	st.cs.Delete(id)
	st.view.remove(id)
}

// category returns the cached category of id, classifying it on a miss.
func (st *run) category(g graph.Graph, id string) meta.Category {
	if c, ok := st.cats[id]; ok {
		return c
	}
	n, err := g.GetNode(id)
	if err != nil {
		return meta.Undefined
	}
	c := meta.Classify(g, n)
	st.cats[id] = c
	return c
}

// ports returns the endpoints one level below each child of scope, split
// into publisher-like and subscriber-like.
func (st *run) ports(scope *graph.Node) (pubs, subs []*graph.Node) {
	children, err := st.view.ListChildren(scope.ID)
	if err != nil {
		st.rep.Skip(scope.ID, "list children: %v", err)
		return nil, nil
	}
	for _, c := range children {
		grand, err := graph.Children(st.view, c)
		if err != nil {
			st.rep.Skip(c, "list children: %v", err)
			continue
		}
		for _, e := range grand {
			switch cat := st.category(st.view, e.ID); {
			case cat.IsPublisher():
				pubs = append(pubs, e)
			case cat.IsSubscriber():
				subs = append(subs, e)
			}
		}
	}
	return pubs, subs
}

// synthesize creates one group-level port in group for every endpoint one
// level below the group's children.
func (st *run) synthesize(group *graph.Node) {
	groupName := meta.String(st.view, group, "name")
	pubs, subs := st.ports(group)
	for _, e := range append(pubs, subs...) {
		cat, prefix := meta.GroupSubscriber, "gs"
		if st.cats[e.ID].IsPublisher() {
			cat, prefix = meta.GroupPublisher, "gp"
		}
		local := meta.String(st.view, e, "name")
		name := local
		if !names.IsAbsolute(local) && groupName != "" {
			name = groupName + "/" + local
		}

		port := st.cs.Create(group.ID, prefix, st.protos[cat], st.view.taken)
		port.Attributes["name"] = name
		port.Attributes["nodeName"] = st.ownerName(e)
		st.view.add(port)
		st.cats[port.ID] = cat

		src := e.ID
		if s, ok := st.sources[src]; ok {
			src = s
		}
		st.sources[port.ID] = src
	}
}

// ownerName identifies the concrete node an endpoint belongs to. Group
// level endpoints carry it along in nodeName.
func (st *run) ownerName(e *graph.Node) string {
	c := st.cats[e.ID]
	if c == meta.GroupPublisher || c == meta.GroupSubscriber {
		if v := meta.String(st.view, e, "nodeName"); v != "" {
			return v
		}
	}
	owner, err := graph.Parent(st.view, e)
	if err != nil {
		return ""
	}
	if st.category(st.view, owner.ID) == meta.Test {
		return meta.String(st.view, owner, "testName")
	}
	return meta.String(st.view, owner, "name")
}

// resolveNames seeds every authored or retained endpoint with its
// namespaced name and folds the remap rules over them.
func (st *run) resolveNames() map[string]string {
	seeds := make(map[string]string, len(st.endpoints))
	for _, e := range st.endpoints {
		seeds[e.ID] = names.Resolve(st.view, e)
	}
	rules := make([]names.Rule, 0, len(st.remaps))
	for _, n := range st.remaps {
		scope, _ := graph.ParentID(n.ID)
		rules = append(rules, names.Rule{
			ID:    n.ID,
			From:  meta.String(st.view, n, "from"),
			To:    meta.String(st.view, n, "to"),
			Scope: scope,
		})
	}
	final, skipped := names.ApplyRemaps(rules, seeds)
	if skipped > 0 {
		st.rep.Skipped += skipped
		st.rep.Add(report.Info, "", "%d remap rules without a from name skipped", skipped)
	}
	return final
}

// finalName returns the resolved name of a port; synthesized ports take
// the name of the endpoint they aggregate.
func (st *run) finalName(final map[string]string, id string) (string, bool) {
	if src, ok := st.sources[id]; ok {
		id = src
	}
	name, ok := final[id]
	return name, ok
}

// connect links every publisher-like and subscriber-like port gathered at
// scope whose resolved names are equal.
func (st *run) connect(scope *graph.Node, final map[string]string) {
	pubs, subs := st.ports(scope)
	if len(pubs) == 0 || len(subs) == 0 {
		return
	}
	type port struct {
		id, name string
	}
	resolve := func(nodes []*graph.Node) []port {
		out := make([]port, 0, len(nodes))
		for _, n := range nodes {
			name, ok := st.finalName(final, n.ID)
			if !ok {
				st.rep.Skip(n.ID, "endpoint has no resolved name")
				continue
			}
			if name != "" {
				out = append(out, port{id: n.ID, name: name})
			}
		}
		return out
	}
	ps, ss := resolve(pubs), resolve(subs)

	for _, p := range ps {
		for _, s := range ss {
			if p.name != s.name {
				continue
			}
			parent, ok := graph.CommonAncestor(p.id, s.id)
			if !ok || !st.view.taken(parent) {
				st.rep.Skip(p.id, "no common ancestor with %s", s.id)
				continue
			}
			t := st.cs.Create(parent, "t", st.protos[meta.Topic], st.view.taken)
			t.Attributes["name"] = p.name
			t.Pointers = map[string]string{"src": p.id, "dst": s.id}
			st.view.add(t)
			st.cats[t.ID] = meta.Topic
			if parent != scope.ID {
				st.rep.Add(report.Info, t.ID, "%s and %s connected below their scope %q", p.id, s.id, scope.ID)
			}
		}
	}
}
