// Package repl provides the interactive shell for keyden-cli.
//
// The loop forwards protocol lines to the server one at a time and
// handles a few things locally:
//
//   - repl.go: prompt, line loop, local commands, selection tracking
//   - completer.go: prefix matching for help hints
//   - history.go: deduplicated, capped history persistence
//
// The prompt shows the selected database, derived from the server's
// own create/use/drop responses rather than client-side guessing.
//
// @design DS-0602
package repl
