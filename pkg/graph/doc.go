// Package graph holds the dependency graph that the matrix explorer
// operates on: a set of code entities (files, directories, namespaces)
// arranged in a hierarchy tree, plus weighted directed dependency edges
// between them.
//
// Two representations of the same graph coexist:
//
//   - The reference graph is authoritative and immutable for the whole
//     session. It is what graph ingestion produced and what all cell
//     weights are ultimately summed from.
//   - The optimized graph mirrors the reference graph but may gain
//     synthetic grouping nodes (see [Graph.InsertSyntheticGroup]) that
//     bound the number of simultaneously visible children when a node
//     with very many children is expanded.
//
// [Store] owns both representations. Every real node in the optimized
// graph maps back to the reference-graph node with the same ID;
// synthetic nodes exist only in the optimized graph.
//
// # Hierarchy
//
// Every node except the root has exactly one parent. The hierarchy is
// a finite-depth tree: directories contain files, namespaces contain
// types, and so on. Dependency edges are independent of the hierarchy
// and may connect any two nodes.
//
// # Serialization
//
// Graphs are exchanged as JSON documents:
//
//	{
//	  "nodes": [{"id": "a", "parent": "root"}, ...],
//	  "edges": [{"from": "a/x", "to": "b", "weight": 3}, ...]
//	}
//
// Use [ReadGraphFile] and [WriteGraphFile] for files, or
// [MarshalGraph] and [UnmarshalGraph] for raw bytes. Synthetic nodes
// are never serialized.
package graph
