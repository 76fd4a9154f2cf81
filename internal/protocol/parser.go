package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/keydenlabs/keyden/internal/core/domain"
)

// Protocol limits to prevent unbounded requests.
const (
	// MaxKeyLength limits a single key (512B).
	MaxKeyLength = 512

	// MaxValueLength limits a single value (64KB).
	MaxValueLength = 64 * 1024

	// MaxLineLength limits a full request line: the value cap plus key
	// and syntax headroom (68KB).
	MaxLineLength = MaxValueLength + MaxKeyLength + 3584
)

// Parse turns one request line into a Command. It never mutates state; a
// failure reports the offending token and the expected form through
// domain.ErrParse.
func Parse(line string) (Command, error) {
	if len(line) > MaxLineLength {
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("line exceeds %d bytes", MaxLineLength))
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, domain.ErrParse.WithDetails("empty command")
	}

	// Key-value commands carry their arguments in parentheses, so they
	// cannot be split on whitespace.
	for _, kind := range []Kind{KindSet, KindGet, KindDel} {
		if strings.HasPrefix(trimmed, string(kind)) {
			return parseKeyValue(kind, trimmed)
		}
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case string(KindCreate):
		return parseManagement(KindCreate, fields)
	case string(KindUse):
		return parseManagement(KindUse, fields)
	case string(KindDrop):
		return parseManagement(KindDrop, fields)
	case string(KindExit):
		if len(fields) != 1 {
			return Command{}, domain.ErrParse.WithDetails("exit takes no arguments")
		}
		return Command{Kind: KindExit}, nil
	default:
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("unknown command %q", fields[0]))
	}
}

// parseManagement handles create/use/drop: the database name alone, or the
// name followed by a username and password.
func parseManagement(kind Kind, fields []string) (Command, error) {
	switch len(fields) {
	case 2:
		return Command{Kind: kind, Database: fields[1]}, nil
	case 4:
		return Command{
			Kind:     kind,
			Database: fields[1],
			Username: fields[2],
			Password: fields[3],
			HasCreds: true,
		}, nil
	case 1:
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("%s requires a database name", kind))
	case 3:
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("%s with credentials requires both a username and a password", kind))
	default:
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("%s takes a database name and optional credentials", kind))
	}
}

// parseKeyValue handles SET/GET/DEL: the command word, an opening
// parenthesis, double-quoted comma-separated arguments and a closing
// parenthesis ending the line.
func parseKeyValue(kind Kind, trimmed string) (Command, error) {
	rest := trimmed[len(kind):]
	if len(rest) == 0 || rest[0] != '(' {
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("expected '(' after %s", kind))
	}
	if rest[len(rest)-1] != ')' {
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("%s command must end with ')'", kind))
	}

	args, err := splitQuotedArgs(rest[1 : len(rest)-1])
	if err != nil {
		return Command{}, err
	}

	switch kind {
	case KindGet, KindDel:
		if len(args) != 1 {
			return Command{}, domain.ErrParse.WithDetails(
				fmt.Sprintf("%s takes exactly 1 quoted argument", kind))
		}
	case KindSet:
		if len(args) != 2 && len(args) != 3 {
			return Command{}, domain.ErrParse.WithDetails(
				"SET takes a key, a value and an optional TTL")
		}
	}

	key := args[0]
	if len(key) > MaxKeyLength {
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("key exceeds %d bytes", MaxKeyLength))
	}

	cmd := Command{Kind: kind, Key: key}
	if kind != KindSet {
		return cmd, nil
	}

	if len(args[1]) > MaxValueLength {
		return Command{}, domain.ErrParse.WithDetails(
			fmt.Sprintf("value exceeds %d bytes", MaxValueLength))
	}
	cmd.Value = args[1]

	if len(args) == 3 {
		ttl, err := parseTTL(args[2])
		if err != nil {
			return Command{}, err
		}
		cmd.TTL = ttl
		cmd.HasTTL = true
	}
	return cmd, nil
}

// splitQuotedArgs scans a comma-separated list of double-quoted strings.
// Commas, spaces and parentheses are legal inside the quotes; embedded
// quotes are not representable. An empty list is valid and returns nil.
func splitQuotedArgs(s string) ([]string, error) {
	var args []string
	i, n := 0, len(s)

	for {
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			if len(args) == 0 {
				return nil, nil
			}
			return nil, domain.ErrParse.WithDetails("expected a quoted argument after ','")
		}
		if s[i] != '"' {
			return nil, domain.ErrParse.WithDetails(
				fmt.Sprintf("arguments must be double-quoted, found %q", s[i]))
		}
		i++

		start := i
		for i < n && s[i] != '"' {
			i++
		}
		if i >= n {
			return nil, domain.ErrParse.WithDetails("unbalanced quotes")
		}
		args = append(args, s[start:i])
		i++

		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			return args, nil
		}
		if s[i] != ',' {
			return nil, domain.ErrParse.WithDetails(
				fmt.Sprintf("unexpected %q after quoted argument", s[i]))
		}
		i++
	}
}

// parseTTL parses "<n><unit>" where n is a non-negative base-10 integer
// and unit is s (seconds), m (minutes) or d (days).
func parseTTL(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, domain.ErrParse.WithDetails(
			fmt.Sprintf("TTL %q must be <number><unit>", s))
	}

	num, unit := s[:len(s)-1], s[len(s)-1]

	var unitDur time.Duration
	switch unit {
	case 's':
		unitDur = time.Second
	case 'm':
		unitDur = time.Minute
	case 'd':
		unitDur = 24 * time.Hour
	default:
		return 0, domain.ErrParse.WithDetails(
			fmt.Sprintf("unknown TTL unit %q, want s, m or d", unit))
	}

	for j := 0; j < len(num); j++ {
		if num[j] < '0' || num[j] > '9' {
			return 0, domain.ErrParse.WithDetails(
				fmt.Sprintf("TTL %q must be a non-negative integer with a unit", s))
		}
	}

	v, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, domain.ErrParse.WithDetails(fmt.Sprintf("TTL %q out of range", s))
	}
	if v > math.MaxInt64/int64(unitDur) {
		return 0, domain.ErrParse.WithDetails(fmt.Sprintf("TTL %q out of range", s))
	}

	return time.Duration(v) * unitDur, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
