// README: Undirected weighted multigraph with Dijkstra shortest path.
package citygraph

import (
	"container/heap"
	"math"
	"sort"
	"sync"

	"citycab/internal/types"
)

// Graph is safe for concurrent readers; AddEdge/AddLocation take the write lock.
type Graph struct {
	mu     sync.RWMutex
	adj    map[string][]Edge
	coords map[string]types.Point
	names  map[string]string
}

func New() *Graph {
	return &Graph{
		adj:    make(map[string][]Edge),
		coords: make(map[string]types.Point),
		names:  make(map[string]string),
	}
}

// AddEdge appends a bidirectional edge. Negative or NaN weights are ignored
// and reported as false.
func (g *Graph) AddEdge(from, to string, km float64) bool {
	if math.IsNaN(km) || km < 0 {
		return false
	}
	a, b := Normalize(from), Normalize(to)
	if a == "" || b == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remember(a, from)
	g.remember(b, to)
	g.adj[a] = append(g.adj[a], Edge{To: b, Weight: km})
	g.adj[b] = append(g.adj[b], Edge{To: a, Weight: km})
	return true
}

// AddLocation registers or overwrites coordinates for a location. It does
// not make the location part of the road graph.
func (g *Graph) AddLocation(name string, lat, lng float64) {
	key := Normalize(name)
	if key == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.remember(key, name)
	g.coords[key] = types.Point{Lat: lat, Lng: lng}
}

// LocationExists reports whether the location has at least one road.
func (g *Graph) LocationExists(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.adj[Normalize(name)]) > 0
}

// Coordinates returns the registered point for a location.
func (g *Graph) Coordinates(name string) (types.Point, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.coords[Normalize(name)]
	return p, ok
}

// DisplayName returns the first spelling seen for a location key, or the
// key itself when none was recorded.
func (g *Graph) DisplayName(name string) string {
	key := Normalize(name)
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.names[key]; ok {
		return n
	}
	return key
}

// Locations lists the display names of every location on the road graph.
func (g *Graph) Locations() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.adj))
	for key := range g.adj {
		out = append(out, g.names[key])
	}
	sort.Strings(out)
	return out
}

// ShortestPath returns the cheapest cumulative distance from src to dst and
// the keys along the way, both ends included. An unknown endpoint or a
// disconnected pair yields +Inf and a nil path.
func (g *Graph) ShortestPath(src, dst string) (float64, []string) {
	s, d := Normalize(src), Normalize(dst)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.adj[s]) == 0 || len(g.adj[d]) == 0 {
		return math.Inf(1), nil
	}

	dist := map[string]float64{s: 0}
	parent := make(map[string]string)
	settled := make(map[string]bool)

	pq := &frontier{}
	heap.Push(pq, &item{key: s, dist: 0})
	seq := 1

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*item)
		if settled[cur.key] {
			continue
		}
		settled[cur.key] = true
		if cur.key == d {
			break
		}
		for _, e := range g.adj[cur.key] {
			if settled[e.To] {
				continue
			}
			nd := cur.dist + e.Weight
			if old, ok := dist[e.To]; ok && old <= nd {
				continue
			}
			dist[e.To] = nd
			parent[e.To] = cur.key
			heap.Push(pq, &item{key: e.To, dist: nd, seq: seq})
			seq++
		}
	}

	total, ok := dist[d]
	if !ok {
		return math.Inf(1), nil
	}
	path := []string{d}
	for at := d; at != s; {
		at = parent[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return total, path
}

// HaversineDistance is the great-circle distance between two registered
// coordinates, independent of roads. +Inf when either is missing.
func (g *Graph) HaversineDistance(a, b string) float64 {
	g.mu.RLock()
	p, okA := g.coords[Normalize(a)]
	q, okB := g.coords[Normalize(b)]
	g.mu.RUnlock()
	if !okA || !okB {
		return math.Inf(1)
	}
	return greatCircleKm(p, q)
}

// remember keeps the first display spelling for a key. Must hold mu.
func (g *Graph) remember(key, display string) {
	if _, ok := g.names[key]; !ok {
		g.names[key] = display
	}
}

type item struct {
	key  string
	dist float64
	seq  int
}

// frontier is a min-heap on tentative distance; equal distances pop in
// push order.
type frontier []*item

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(*item)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return it
}
