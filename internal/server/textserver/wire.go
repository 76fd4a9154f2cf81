package textserver

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/core/service"
	"github.com/keydenlabs/keyden/internal/protocol"
)

// errLineTooLong marks a request line over the protocol cap.
var errLineTooLong = errors.New("textserver: line exceeds protocol limit")

// readLine reads one newline-terminated line of at most maxLen raw
// bytes. The trailing LF and an optional CR are stripped.
func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		buf = append(buf, frag...)
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			if len(buf) > maxLen {
				return "", errLineTooLong
			}
			continue
		}
		return "", err
	}

	if len(buf) > maxLen {
		return "", errLineTooLong
	}

	buf = buf[:len(buf)-1]
	if len(buf) > 0 && buf[len(buf)-1] == '\r' {
		buf = buf[:len(buf)-1]
	}
	return string(buf), nil
}

// writeLine writes one response line.
func writeLine(w *bufio.Writer, s string) error {
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// renderOutcome turns a dispatcher outcome into its wire line.
func renderOutcome(out service.Outcome) string {
	if out.Err != nil {
		return renderError(out.Err)
	}

	switch out.Kind {
	case protocol.KindCreate:
		return "Database '" + out.Database + "' created"
	case protocol.KindUse:
		return "Using database '" + out.Database + "'"
	case protocol.KindDrop:
		return "Database '" + out.Database + "' deleted"
	case protocol.KindSet:
		return "OK"
	case protocol.KindGet:
		if out.HasValue {
			return out.Value
		}
		return "(nil)"
	case protocol.KindDel:
		if out.HasValue {
			return "OK"
		}
		return "(nil)"
	case protocol.KindExit:
		return "bye"
	default:
		return renderError(domain.ErrParse.WithDetails(
			fmt.Sprintf("unknown command kind %q", out.Kind)))
	}
}

// renderError formats an error as "ERR <code> <message>". Domain error
// details ride along after the message so parse errors can name the
// offending token.
func renderError(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		if de.Details != "" {
			return "ERR " + de.Code + " " + de.Message + ": " + de.Details
		}
		return "ERR " + de.Code + " " + de.Message
	}
	return "ERR " + err.Error()
}
