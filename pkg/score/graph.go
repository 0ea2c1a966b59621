package score

import "slices"

// ID addresses an object in a document's graph. IDs are never reused.
type ID int

// Kind discriminates the object variants stored in a [Graph].
type Kind int

const (
	KindRow Kind = iota + 1
	KindMeasure
	KindColumn
	KindNoteGroup
	KindRest
	KindAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindMeasure:
		return "measure"
	case KindColumn:
		return "column"
	case KindNoteGroup:
		return "notegroup"
	case KindRest:
		return "rest"
	case KindAnnotation:
		return "annotation"
	}
	return "unknown"
}

// Object is implemented by every node of the document tree.
type Object interface {
	ObjID() ID
	ObjKind() Kind
}

type node struct {
	id   ID
	kind Kind
}

func (n node) ObjID() ID     { return n.id }
func (n node) ObjKind() Kind { return n.kind }

// Graph is the object arena of a document. It stores the parent of every
// object plus two non-owning adjacency tables: anchor → anchored annotations,
// and link head → linked tails for tie and slur chains.
type Graph struct {
	next     ID
	objects  map[ID]Object
	parents  map[ID]ID
	anchored map[ID][]ID
	links    map[ID][]ID
	heads    map[ID]ID
}

func newGraph() *Graph {
	return &Graph{
		objects:  make(map[ID]Object),
		parents:  make(map[ID]ID),
		anchored: make(map[ID][]ID),
		links:    make(map[ID][]ID),
		heads:    make(map[ID]ID),
	}
}

func (g *Graph) alloc(kind Kind, parent ID) node {
	g.next++
	n := node{id: g.next, kind: kind}
	if parent != 0 {
		g.parents[n.id] = parent
	}
	return n
}

func (g *Graph) register(o Object) {
	g.objects[o.ObjID()] = o
}

// Object returns the object with the given id, or nil.
func (g *Graph) Object(id ID) Object {
	return g.objects[id]
}

// Parent returns the owner of id. The second result is false for rows and
// unknown ids.
func (g *Graph) Parent(id ID) (ID, bool) {
	p, ok := g.parents[id]
	return p, ok
}

// Len returns the number of registered objects.
func (g *Graph) Len() int {
	return len(g.objects)
}

func (g *Graph) anchor(anchor, annotation ID) {
	g.anchored[anchor] = append(g.anchored[anchor], annotation)
}

// Anchored returns the annotations anchored to id, in insertion order.
func (g *Graph) Anchored(id ID) []ID {
	return slices.Clone(g.anchored[id])
}

// Link records tail as part of the chain started by head. A tail belongs to
// at most one chain; linking it again moves it.
func (g *Graph) Link(head, tail ID) {
	if head == tail {
		return
	}
	if h, ok := g.heads[head]; ok {
		head = h
	}
	if old, ok := g.heads[tail]; ok {
		g.links[old] = slices.DeleteFunc(g.links[old], func(id ID) bool { return id == tail })
	}
	g.heads[tail] = head
	if !slices.Contains(g.links[head], tail) {
		g.links[head] = append(g.links[head], tail)
	}
}

// Links returns the tails of the chain headed by head.
func (g *Graph) Links(head ID) []ID {
	return slices.Clone(g.links[head])
}

// LinkHead returns the head of the chain id belongs to, or id itself.
func (g *Graph) LinkHead(id ID) ID {
	if h, ok := g.heads[id]; ok {
		return h
	}
	return id
}

// ClearLinks drops every chain. Chains are rebuilt by the arc resolver on
// each layout.
func (g *Graph) ClearLinks() {
	clear(g.links)
	clear(g.heads)
}
