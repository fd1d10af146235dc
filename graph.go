package vantage

// NodeID is a handle to a node in the compositor graph. The zero value is
// never a valid node.
type NodeID uint32

// graphNode is one arena entry: either the fixed source/sink/preview
// node or an inserted effect node.
type graphNode struct {
	id       NodeID
	label    string
	effect   bool
	kind     EffectKind
	settings EffectSettings
}

// edge is a directed image connection between two nodes.
type edge struct {
	from NodeID
	to   NodeID
}

// Graph is the compositor effect chain: a directed chain of effect nodes
// between a fixed source (the raw render) and a fixed sink (the final
// composited image). Topology is held as an explicit arena of nodes plus
// an edge list; insertion rewires the single edge feeding the sink, so
// the chain grows strictly in call order.
//
// Graph is not safe for concurrent use; like the rest of the session it
// must be driven from the single goroutine that owns the engine.
type Graph struct {
	nodes  map[NodeID]*graphNode
	edges  []edge
	order  []NodeID // inserted effect nodes, oldest first
	nextID NodeID

	source  NodeID
	sink    NodeID
	preview NodeID

	initialized bool
}

// NewGraph returns an uninitialized graph. Insert is a no-op until Init
// is called.
func NewGraph() *Graph {
	return &Graph{}
}

// Init clears any existing topology and creates the bare graph: source,
// sink, and preview nodes with the source wired directly to the sink.
// Calling Init again rebuilds from scratch, discarding inserted effects.
func (g *Graph) Init() {
	g.nodes = make(map[NodeID]*graphNode)
	g.edges = g.edges[:0]
	g.order = g.order[:0]
	g.nextID = 0

	g.source = g.addNode("source", false, 0, EffectSettings{})
	g.sink = g.addNode("sink", false, 0, EffectSettings{})
	g.preview = g.addNode("preview", false, 0, EffectSettings{})

	g.edges = append(g.edges, edge{from: g.source, to: g.sink})
	g.initialized = true
}

// Initialized reports whether Init has been called.
func (g *Graph) Initialized() bool {
	return g.initialized
}

// Source returns the handle of the raw-render source node.
func (g *Graph) Source() NodeID { return g.source }

// Sink returns the handle of the final composite sink node.
func (g *Graph) Sink() NodeID { return g.sink }

func (g *Graph) addNode(label string, effect bool, kind EffectKind, settings EffectSettings) NodeID {
	g.nextID++
	id := g.nextID
	g.nodes[id] = &graphNode{id: id, label: label, effect: effect, kind: kind, settings: settings}
	return id
}

// Insert adds an effect node at the tail of the chain: the edge currently
// feeding the sink is removed and replaced by previous-tail → new node →
// sink. Returns the new node's handle.
//
// If the graph has not been initialized, Insert is a no-op and returns
// (0, false) rather than failing hard, so effect toggles degrade
// gracefully before scene setup.
func (g *Graph) Insert(kind EffectKind, settings EffectSettings) (NodeID, bool) {
	if !g.initialized {
		return 0, false
	}

	id := g.addNode(kind.String(), true, kind, settings)

	tail := g.removeSinkEdge()
	g.edges = append(g.edges, edge{from: tail, to: id}, edge{from: id, to: g.sink})
	g.order = append(g.order, id)
	return id, true
}

// InsertDefault inserts an effect with its default parameter schema.
func (g *Graph) InsertDefault(kind EffectKind) (NodeID, bool) {
	return g.Insert(kind, defaultSettings(kind))
}

// removeSinkEdge removes and returns the origin of the edge feeding the
// sink's image input. The bare-graph invariant guarantees exactly one
// such edge exists.
func (g *Graph) removeSinkEdge() NodeID {
	for i, e := range g.edges {
		if e.to == g.sink {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return e.from
		}
	}
	return g.source
}

// Remove deletes an inserted effect node, splicing its upstream and
// downstream neighbors together. Removing the source, sink, or preview
// node is not allowed and reports false.
func (g *Graph) Remove(id NodeID) bool {
	n, ok := g.nodes[id]
	if !ok || !n.effect {
		return false
	}

	var from, to NodeID
	kept := g.edges[:0]
	for _, e := range g.edges {
		switch {
		case e.to == id:
			from = e.from
		case e.from == id:
			to = e.to
		default:
			kept = append(kept, e)
		}
	}
	g.edges = append(kept, edge{from: from, to: to})
	delete(g.nodes, id)

	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// Reset returns the graph to the bare state, discarding all inserted
// effects. No-op if the graph was never initialized.
func (g *Graph) Reset() {
	if !g.initialized {
		return
	}
	g.Init()
}

// Chain returns the effect nodes in render order by walking edges from
// the source to the sink. The returned slice is freshly allocated.
func (g *Graph) Chain() []Effect {
	if !g.initialized {
		return nil
	}
	chain := make([]Effect, 0, len(g.order))
	at := g.source
	for at != g.sink {
		next, ok := g.follow(at)
		if !ok {
			break
		}
		if n := g.nodes[next]; n != nil && n.effect {
			chain = append(chain, Effect{Kind: n.kind, Settings: n.settings})
		}
		at = next
	}
	return chain
}

// follow returns the node downstream of id.
func (g *Graph) follow(id NodeID) (NodeID, bool) {
	for _, e := range g.edges {
		if e.from == id {
			return e.to, true
		}
	}
	return 0, false
}

// Settings returns the parameters of an inserted effect node.
func (g *Graph) Settings(id NodeID) (EffectSettings, bool) {
	n, ok := g.nodes[id]
	if !ok || !n.effect {
		return EffectSettings{}, false
	}
	return n.settings, true
}

// SetSettings updates the parameters of an inserted effect node in place
// without changing the chain topology.
func (g *Graph) SetSettings(id NodeID, settings EffectSettings) bool {
	n, ok := g.nodes[id]
	if !ok || !n.effect {
		return false
	}
	n.settings = settings
	return true
}

// Len returns the number of inserted effect nodes.
func (g *Graph) Len() int {
	return len(g.order)
}
