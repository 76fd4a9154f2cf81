// Package ident generates prefixed, sortable identifiers.
//
// Identifiers are lowercase ULIDs with a short prefix naming what they
// identify ("cn" for connections, "rq" for requests, "sn" for snapshots).
// ULIDs sort lexicographically by creation time, which keeps log output
// and snapshot directories naturally ordered.
package ident

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Well-known prefixes.
const (
	Connection = "cn"
	Request    = "rq"
	Snapshot   = "sn"
)

// New returns a new identifier of the form "<prefix>_<ulid>".
//
// The ULID is lowercased. Generation cannot fail with crypto/rand as the
// entropy source short of the OS entropy pool being broken; that case
// falls back to a timestamp-only identifier rather than returning an error
// to every caller that just needs a log handle.
func New(prefix string) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + strings.ToLower(id.String())
}

// HasPrefix reports whether id carries the given prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
