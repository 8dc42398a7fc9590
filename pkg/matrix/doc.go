// Package matrix derives Dependency Structure Matrices from a graph
// and a configuration.
//
// A [Configuration] is the canonical interactive state: the ordered
// list of currently-visible nodes, the set of expanded nodes, and an
// optional focus anchor with a direction kind. Configurations are
// produced by folding an action path (see the path package) and
// consumed by [Builder.Build], which turns them into an NxN weight
// grid over the visible nodes.
//
// # Weight aggregation
//
// A visible node may stand for a whole collapsed subtree, so the cell
// weight for (row i, column j) is the sum of reference-graph edge
// weights from every node in i's subtree to every node in j's subtree.
// The builder computes this in a single O(E) pass: each reference node
// is mapped to its nearest visible ancestor (its owner), then every
// edge contributes its weight to the owners' cell. Nothing is double
// counted and nothing is dropped, regardless of expansion depth.
//
// # The optimized graph side channel
//
// Expanding a node with very many children inserts synthetic grouping
// nodes into the optimized graph (see graph.Graph.InsertSyntheticGroup)
// so the visible node count stays manageable. This package is the only
// mutator of the optimized graph; the graph is threaded through
// [Expand] and [Builder.Build] as an explicit value so that the single
// writer is enforced by construction, not by convention.
package matrix
