// Package textserver provides the TCP data-plane server for Keyden.
//
// It speaks the line-oriented text protocol: one command per line, one
// response per line, newline framed with CRLF tolerated. Each
// connection runs its own dispatcher session on a dedicated goroutine.
//
// Supported commands (see internal/protocol):
//   - create, use, drop
//   - SET, GET, DEL
//   - exit
//
// @req RQ-0303
// @design DS-0301
package textserver
