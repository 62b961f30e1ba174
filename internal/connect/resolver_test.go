package connect

import (
	"context"
	"testing"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(s *graph.MemoryStore, id string, c meta.Category, attrs map[string]any) {
	s.AddNode(&graph.Node{ID: id, Base: meta.PrototypeID(c), Attributes: attrs})
}

func named(name string) map[string]any { return map[string]any{"name": name} }

// byCategory lists the nodes of category c below id in pre-order.
func byCategory(t *testing.T, s *graph.MemoryStore, id string, c meta.Category) []*graph.Node {
	t.Helper()
	var out []*graph.Node
	require.NoError(t, graph.Walk(s, id, func(n *graph.Node) error {
		if meta.Classify(s, n) == c {
			out = append(out, n)
		}
		return nil
	}))
	return out
}

func resolve(t *testing.T, s *graph.MemoryStore) {
	t.Helper()
	_, err := NewResolver(s).Resolve(context.Background(), "/l")
	require.NoError(t, err)
}

func TestResolve_SingleTopicBetweenSiblings(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/a", meta.Node, named("A"))
	add(s, "/l/a/p", meta.Publisher, named("topicA"))
	add(s, "/l/b", meta.Node, named("B"))
	add(s, "/l/b/s", meta.Subscriber, named("topicA"))
	add(s, "/l/b/x", meta.Subscriber, named("other"))

	rep, err := NewResolver(s).Resolve(context.Background(), "/l")
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Deleted)
	assert.Equal(t, 1, rep.Created)

	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 1)
	assert.Equal(t, "/l/t1", topics[0].ID)
	assert.Equal(t, "topicA", topics[0].Attributes["name"])
	assert.Equal(t, map[string]string{"src": "/l/a/p", "dst": "/l/b/s"}, topics[0].Pointers)

	// Rerunning replaces the edge instead of adding a second one.
	rep, err = NewResolver(s).Resolve(context.Background(), "/l")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deleted)
	assert.Equal(t, 1, rep.Created)
	again := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, again, 1)
	assert.Equal(t, topics[0].ID, again[0].ID)
	assert.Equal(t, topics[0].Pointers, again[0].Pointers)
}

func TestResolve_GroupAggregation(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/g", meta.Group, named("sensors"))
	add(s, "/l/g/n", meta.Node, named("lidar"))
	add(s, "/l/g/n/p", meta.Publisher, named("scan"))
	add(s, "/l/g/n/abs", meta.Publisher, named("/tf"))
	add(s, "/l/m", meta.Node, named("mapper"))
	add(s, "/l/m/s", meta.Subscriber, named("sensors/scan"))
	add(s, "/l/m/tf", meta.Subscriber, named("tf"))

	resolve(t, s)

	ports := byCategory(t, s, "/l/g", meta.GroupPublisher)
	require.Len(t, ports, 2)
	assert.Equal(t, "/l/g/gp1", ports[0].ID)
	assert.Equal(t, "sensors/scan", ports[0].Attributes["name"])
	assert.Equal(t, "lidar", ports[0].Attributes["nodeName"])
	assert.Equal(t, "/tf", ports[1].Attributes["name"], "absolute local names are not prefixed")

	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 2)
	got := map[string]string{}
	for _, tp := range topics {
		assert.Equal(t, "/l", mustParent(tp.ID))
		got[tp.Attributes["name"].(string)] = tp.Pointers["src"] + "->" + tp.Pointers["dst"]
	}
	assert.Equal(t, map[string]string{
		"sensors/scan": "/l/g/gp1->/l/m/s",
		"tf":           "/l/g/gp2->/l/m/tf",
	}, got)

	// Group ports are regenerated, not accumulated.
	resolve(t, s)
	assert.Len(t, byCategory(t, s, "/l/g", meta.GroupPublisher), 2)
	assert.Len(t, byCategory(t, s, "/l", meta.Topic), 2)
}

func TestResolve_NestedGroupsPropagateNodeName(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/o", meta.Group, named("outer"))
	add(s, "/l/o/i", meta.Group, named("inner"))
	add(s, "/l/o/i/t", meta.Test, map[string]any{"testName": "probe", "name": "test_probe"})
	add(s, "/l/o/i/t/s", meta.Subscriber, named("status"))
	add(s, "/l/n", meta.Node, named("reporter"))
	add(s, "/l/n/p", meta.Publisher, named("outer/inner/status"))

	resolve(t, s)

	inner := byCategory(t, s, "/l/o/i", meta.GroupSubscriber)
	require.Len(t, inner, 1)
	assert.Equal(t, "inner/status", inner[0].Attributes["name"])
	assert.Equal(t, "probe", inner[0].Attributes["nodeName"])

	outer, err := graph.Children(s, "/l/o")
	require.NoError(t, err)
	var outerPorts []*graph.Node
	for _, n := range outer {
		if meta.Classify(s, n) == meta.GroupSubscriber {
			outerPorts = append(outerPorts, n)
		}
	}
	require.Len(t, outerPorts, 1)
	assert.Equal(t, "outer/inner/status", outerPorts[0].Attributes["name"])
	assert.Equal(t, "probe", outerPorts[0].Attributes["nodeName"])

	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 1)
	assert.Equal(t, "/l/n/p", topics[0].Pointers["src"])
	assert.Equal(t, outerPorts[0].ID, topics[0].Pointers["dst"])
}

func TestResolve_RemapRules(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/a", meta.Node, named("driver"))
	add(s, "/l/a/p", meta.Publisher, named("raw"))
	add(s, "/l/a/r", meta.Remap, map[string]any{"from": "raw", "to": "/laser/scan"})
	add(s, "/l/b", meta.Node, named("filter"))
	add(s, "/l/b/s", meta.Subscriber, named("scan_in"))
	add(s, "/l/b/r", meta.Remap, map[string]any{"from": "scan_in", "to": "laser/scan"})
	add(s, "/l/bad", meta.Remap, map[string]any{"to": "x"})

	rep, err := NewResolver(s).Resolve(context.Background(), "/l")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)

	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 1)
	assert.Equal(t, "laser/scan", topics[0].Attributes["name"])
}

func TestResolve_IncludePortsRetained(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/i", meta.Include, named("$(find base)/launch/base.launch"))
	add(s, "/l/i/gp", meta.GroupPublisher, map[string]any{"name": "odom", "nodeName": "base_driver"})
	add(s, "/l/n", meta.Node, named("localizer"))
	add(s, "/l/n/s", meta.Subscriber, named("odom"))

	resolve(t, s)

	_, err := s.GetNode("/l/i/gp")
	require.NoError(t, err, "include-level port is kept")

	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 1)
	assert.Equal(t, map[string]string{"src": "/l/i/gp", "dst": "/l/n/s"}, topics[0].Pointers)
}

func TestResolve_SameOwnerLoop(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/n", meta.Node, named("echo"))
	add(s, "/l/n/p", meta.Publisher, named("chatter"))
	add(s, "/l/n/s", meta.Subscriber, named("chatter"))

	rep, err := NewResolver(s).Resolve(context.Background(), "/l")
	require.NoError(t, err)

	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 1)
	assert.Equal(t, "/l/n", mustParent(topics[0].ID), "topic lives under the nearest common ancestor")
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, report.Info, rep.Diagnostics[0].Severity)
	assert.Equal(t, topics[0].ID, rep.Diagnostics[0].NodeID)
}

func TestResolve_GroupPortsOfOneGroupAlsoConnect(t *testing.T) {
	s := meta.NewProject("p")
	add(s, "/l", meta.LaunchFile, named("robot"))
	add(s, "/l/g", meta.Group, named("g"))
	add(s, "/l/g/a", meta.Node, named("A"))
	add(s, "/l/g/a/p", meta.Publisher, named("x"))
	add(s, "/l/g/b", meta.Node, named("B"))
	add(s, "/l/g/b/s", meta.Subscriber, named("x"))

	rep, err := NewResolver(s).Resolve(context.Background(), "/l")
	require.NoError(t, err)

	// The edge inside the group is drawn at the group scope; at the launch
	// file scope the group's own aggregated ports match each other and get a
	// second edge, reported as connected below their scope.
	topics := byCategory(t, s, "/l", meta.Topic)
	require.Len(t, topics, 2)
	assert.Equal(t, "/l/g/t1", topics[0].ID)
	assert.Equal(t, "g/x", topics[0].Attributes["name"])
	assert.Equal(t, map[string]string{"src": "/l/g/a/p", "dst": "/l/g/b/s"}, topics[0].Pointers)
	assert.Equal(t, "/l/g/t2", topics[1].ID)
	assert.Equal(t, "g/x", topics[1].Attributes["name"])
	assert.Equal(t, map[string]string{"src": "/l/g/gp1", "dst": "/l/g/gs1"}, topics[1].Pointers)

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, report.Info, rep.Diagnostics[0].Severity)
	assert.Equal(t, "/l/g/t2", rep.Diagnostics[0].NodeID)
}

func TestResolve_MissingPrototypes(t *testing.T) {
	s := graph.NewMemoryStore()
	s.AddNode(&graph.Node{ID: graph.RootID})
	_, err := NewResolver(s).Resolve(context.Background(), graph.RootID)
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func mustParent(id string) string {
	p, _ := graph.ParentID(id)
	return p
}
