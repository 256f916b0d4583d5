package paths

import "github.com/netcompose/netcompose/opt/topo"

// EnumerateSimple returns every simple path (no repeated nodes) from src to
// dst over t that crosses at most maxHops links. maxHops <= 0 means no bound
// beyond simplicity. Order is deterministic: depth-first with successors
// visited in ascending node ID order.
//
// This is scenario-building machinery: composition itself never computes
// paths, it receives them inside application path sets.
func EnumerateSimple(t *topo.Topology, src, dst int64, maxHops int) []Path {
	if maxHops <= 0 {
		maxHops = len(t.Nodes()) - 1
	}
	var (
		out     []Path
		walk    []int64
		visited = make(map[int64]bool)
	)
	var dfs func(node int64)
	dfs = func(node int64) {
		walk = append(walk, node)
		visited[node] = true
		defer func() {
			walk = walk[:len(walk)-1]
			visited[node] = false
		}()

		if node == dst {
			nodes := make([]int64, len(walk))
			copy(nodes, walk)
			out = append(out, Path{Nodes: nodes})
			return
		}
		if len(walk)-1 >= maxHops {
			return
		}
		for _, next := range t.Successors(node) {
			if visited[next] {
				continue
			}
			dfs(next)
		}
	}

	// Unknown endpoints and src==dst yield no paths. Every legal node has a
	// non-empty name (AddNode enforces it).
	if t.NodeName(src) == "" || t.NodeName(dst) == "" || src == dst {
		return nil
	}
	dfs(src)
	return out
}
