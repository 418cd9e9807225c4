// # Description
//
// Package cfg provides functionality to generate and analyze Control Flow
// Graphs (CFG) for lowered Structured Text instruction sequences.
//
// ## Control Flow Graph (CFG)
//
// A CFG is a representation, using graph notation, of all paths that might be
// traversed through a program during its execution. In this package:
//
//   - Each node is a single IR instruction (or, after coalescing, a basic
//     block: a straight-line run of instructions without jumps).
//   - The directed edges represent jumps in the control flow.
//
// ## Package Functionality
//
//  1. CFG Construction: `Build` turns a flat instruction list into an
//     instruction-level graph; `BuildBlocks` coalesces it into basic blocks.
//  2. Post-Dominance: `PostDominators` computes per-node post-dominance sets
//     over the graph extended with a virtual exit.
//  3. Control Dependence: `ControlDeps` derives the control-dependence
//     relation from post-dominance frontiers: which branch decides whether
//     each instruction executes.
package cfg
