// Package structure provides the intermediate representation of GROQ query
// result shapes.
//
// This package contains the node variants, their validating constructor, the
// content-addressed identity of lazy nodes and the cycle-safe analyses over the
// structure graph. It imports nothing internal: the interpreter builds
// structures, the lowering pass consumes them.
//
// Key design constraints:
//   - Structure is a sealed interface; consumers switch exhaustively over the
//     variants declared here.
//   - Nodes are immutable once built and may be shared by several parents.
//   - The graph is acyclic except through Lazy nodes. A Lazy node is identified
//     by its HashInput alone, never by pointer identity, and its producer is
//     never called during construction.
//   - Every whole-structure analysis carries a visited set keyed by lazy
//     identity and returns a conservative default when it meets a cycle.
package structure
