// Package protocol implements the line-oriented text command protocol.
//
// One command per line. Database management commands are lowercase and
// whitespace-separated; key-value commands are uppercase with
// parenthesized, double-quoted arguments:
//
//	create <name> [<user> <pass>]
//	use <name> [<user> <pass>]
//	drop <name> [<user> <pass>]
//	SET("key","value"[,"<n><unit>"])
//	GET("key")
//	DEL("key")
//	exit
//
// @req RQ-0302
// @design DS-0301
package protocol

import (
	"time"
)

// Kind identifies a parsed command. Values match the wire spelling.
type Kind string

// Command kinds.
const (
	KindCreate Kind = "create"
	KindUse    Kind = "use"
	KindDrop   Kind = "drop"
	KindSet    Kind = "SET"
	KindGet    Kind = "GET"
	KindDel    Kind = "DEL"
	KindExit   Kind = "exit"
)

// Command is one parsed request line.
type Command struct {
	Kind Kind

	// Management commands (create/use/drop).
	Database string
	Username string
	Password string
	HasCreds bool

	// Key-value commands (SET/GET/DEL).
	Key    string
	Value  string
	TTL    time.Duration
	HasTTL bool
}

// IsManagement reports whether the command targets the database registry.
func (c Command) IsManagement() bool {
	switch c.Kind {
	case KindCreate, KindUse, KindDrop:
		return true
	}
	return false
}

// IsKeyValue reports whether the command targets the selected keyspace.
func (c Command) IsKeyValue() bool {
	switch c.Kind {
	case KindSet, KindGet, KindDel:
		return true
	}
	return false
}
