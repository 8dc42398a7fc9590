package matrix_test

import (
	"fmt"

	"github.com/depmatrix/depmatrix/pkg/graph"
	"github.com/depmatrix/depmatrix/pkg/matrix"
)

func Example() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "app"})
	_ = g.AddNode(graph.Node{ID: "core", Parent: "app"})
	_ = g.AddNode(graph.Node{ID: "util", Parent: "app"})
	_ = g.AddNode(graph.Node{ID: "core/db", Parent: "core"})
	_ = g.AddNode(graph.Node{ID: "core/api", Parent: "core"})
	_ = g.AddDependency("core/api", "core/db", 4)
	_ = g.AddDependency("core/db", "util", 1)

	b := matrix.NewBuilder(g, 0)
	cfg, opt, _ := matrix.Expand(matrix.Basic(g), "core", g.Clone(), 0)
	m, _, _ := b.Build(cfg, nil, opt)

	for i, from := range m.Nodes {
		for j, to := range m.Nodes {
			if w := m.Weight(i, j); w > 0 {
				fmt.Printf("%s -> %s: %d\n", from, to, w)
			}
		}
	}
	// Output:
	// core/db -> util: 1
	// core/api -> core/db: 4
}
