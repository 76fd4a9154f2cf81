// Package connection provides server connections for keyden-cli.
//
// Two transports cover the whole server surface:
//
//   - text.go: line-oriented TCP client for the data plane
//   - http.go: JSON client for the admin HTTP server
//   - manager.go: resolves settings into shared clients
//
// The text client holds one connection and one session; commands and
// responses alternate one line at a time. The admin client is
// stateless and builds a request per call.
//
// @design DS-0602
package connection
