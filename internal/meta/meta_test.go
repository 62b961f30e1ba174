package meta

import (
	"testing"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_StringAndLookup(t *testing.T) {
	for _, c := range All() {
		got, ok := Lookup(c.String())
		require.True(t, ok, "Lookup(%q)", c)
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "undefined", Undefined.String())
	assert.Equal(t, "undefined", Category(200).String())

	c, ok := Lookup("rosparam")
	assert.True(t, ok)
	assert.Equal(t, RosParam, c)
	c, ok = Lookup("rosparamBody")
	assert.True(t, ok)
	assert.Equal(t, RosParamBody, c)

	_, ok = Lookup("talker")
	assert.False(t, ok)
}

func TestCategory_Predicates(t *testing.T) {
	assert.True(t, Publisher.IsPublisher())
	assert.True(t, GroupPublisher.IsPublisher())
	assert.True(t, GroupSubscriber.IsSubscriber())
	assert.False(t, Topic.IsEndpoint())
	assert.True(t, Group.IsScope())
	assert.True(t, LaunchFile.IsScope())
	assert.False(t, Node.IsScope())
}

func TestClassify_WalksPrototypeChain(t *testing.T) {
	s := NewProject("demo")
	// Library template derived from the Node prototype, instance derived
	// from the template: two hops to a registered name.
	s.AddNode(&graph.Node{
		ID:         "/NodeLibrary/talker",
		Base:       PrototypeID(Node),
		Attributes: map[string]any{"name": "talker"},
	})
	s.AddNode(&graph.Node{ID: "/l", Base: PrototypeID(LaunchFile)})
	s.AddNode(&graph.Node{ID: "/l/n", Base: "/NodeLibrary/talker"})

	tests := []struct {
		id   string
		want Category
	}{
		{id: "/l", want: LaunchFile},
		{id: "/l/n", want: Node},
		{id: "/NodeLibrary/talker", want: Node},
		{id: PrototypeID(Group), want: Undefined}, // FCO is not a category
		{id: LibraryID(NodeLibrary), want: Undefined},
		{id: graph.RootID, want: Undefined},
	}
	for _, tt := range tests {
		n, err := s.GetNode(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, Classify(s, n), "Classify(%q)", tt.id)
	}
}

func TestClassify_CyclicChainIsUndefined(t *testing.T) {
	s := graph.NewMemoryStore()
	s.AddNode(&graph.Node{ID: graph.RootID})
	s.AddNode(&graph.Node{ID: "/a", Base: "/b", Attributes: map[string]any{"name": "a"}})
	s.AddNode(&graph.Node{ID: "/b", Base: "/a", Attributes: map[string]any{"name": "b"}})
	s.AddNode(&graph.Node{ID: "/x", Base: "/a"})

	n, err := s.GetNode("/x")
	require.NoError(t, err)
	assert.Equal(t, Undefined, Classify(s, n))
}

func TestClassify_MissingPrototypeIsUndefined(t *testing.T) {
	s := graph.NewMemoryStore()
	s.AddNode(&graph.Node{ID: graph.RootID})
	s.AddNode(&graph.Node{ID: "/x", Base: "/gone"})
	n, err := s.GetNode("/x")
	require.NoError(t, err)
	assert.Equal(t, Undefined, Classify(s, n))
}

func TestAttrSpec_Parse(t *testing.T) {
	required, ok := SpecFor(Node, "required")
	require.True(t, ok)
	assert.Equal(t, false, required.Parse("False"))
	assert.Equal(t, true, required.Parse(" true "))
	assert.Equal(t, "$(arg req)", required.Parse("$(arg req)"))

	timeout, ok := SpecFor(Machine, "timeout")
	require.True(t, ok)
	assert.Equal(t, 12.5, timeout.Parse("12.5"))
	assert.Equal(t, "soon", timeout.Parse("soon"))

	pkg, ok := SpecFor(Node, "pkg")
	require.True(t, ok)
	assert.Equal(t, "true", pkg.Parse("true"), "strings are never coerced")

	_, ok = SpecFor(Node, "nope")
	assert.False(t, ok)
}

func TestMarkupTags(t *testing.T) {
	assert.Equal(t, "arg", MarkupTag(Argument))
	assert.Equal(t, "", MarkupTag(Topic))
	c, ok := FromMarkupTag("rosparam")
	assert.True(t, ok)
	assert.Equal(t, RosParam, c)
	_, ok = FromMarkupTag("bogus")
	assert.False(t, ok)
}

func TestNewProject_Prototypes(t *testing.T) {
	s := NewProject("demo")
	protos, err := Prototypes(s)
	require.NoError(t, err)
	assert.Len(t, protos, len(All()))
	assert.Equal(t, PrototypeID(Publisher), protos[Publisher])

	for _, lib := range []string{NodeLibrary, TestLibrary, IncludeLibrary} {
		n, err := s.GetNode(LibraryID(lib))
		require.NoError(t, err)
		assert.Equal(t, lib, n.Attributes["name"])
	}
}

func TestAttr_IgnoresCategoryPrototypes(t *testing.T) {
	s := NewProject("demo")
	s.AddNode(&graph.Node{
		ID:         "/NodeLibrary/talker",
		Base:       PrototypeID(Node),
		Attributes: map[string]any{"pkg": "demo", "type": "talker.py"},
	})
	s.AddNode(&graph.Node{ID: "/n", Base: "/NodeLibrary/talker", Attributes: map[string]any{"respawn": true}})
	n, err := s.GetNode("/n")
	require.NoError(t, err)

	assert.Equal(t, "demo", String(s, n, "pkg"), "template values are inherited")
	assert.Equal(t, "true", String(s, n, "respawn"))
	_, ok := Attr(s, n, "name")
	assert.False(t, ok, "the prototype's name is not a default")
	assert.Equal(t, "Node", graph.String(s, n, "name"), "plain lookup still sees it")
}
