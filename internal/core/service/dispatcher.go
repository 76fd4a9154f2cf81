package service

import (
	"context"

	"github.com/keydenlabs/keyden/internal/core/domain"
	"github.com/keydenlabs/keyden/internal/protocol"
	"github.com/keydenlabs/keyden/internal/storage"
)

// Session is one connection's dispatcher state: nothing selected until a
// create or use succeeds, then a grant to exactly one keyspace.
//
// @design DS-0103
type Session struct {
	id       string
	selected *storage.Instance
}

// NewSession creates an unselected session.
func NewSession(id string) *Session {
	return &Session{id: id}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Selected returns the granted keyspace handle, if any.
func (s *Session) Selected() (*storage.Instance, bool) {
	return s.selected, s.selected != nil
}

// SelectedName returns the selected database name, or "" when unselected.
func (s *Session) SelectedName() string {
	if s.selected == nil {
		return ""
	}
	return s.selected.Name()
}

// Outcome is the structured result of one dispatched command. The
// connection layer owns rendering it to wire text.
//
// @design DS-0301
type Outcome struct {
	Kind     protocol.Kind
	Database string // management success: the database acted on
	Value    string // GET hit payload
	HasValue bool   // GET hit, or DEL physically removed
	Closed   bool   // exit: close after responding
	Err      error  // nil on success
}

// Dispatcher executes parsed commands against a session. Each command is
// its own atomic unit; a failed command never moves the session state.
//
// @req RQ-0103
// @design DS-0103
type Dispatcher struct {
	databases *DatabaseService
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(databases *DatabaseService) *Dispatcher {
	return &Dispatcher{databases: databases}
}

// Dispatch runs one command through the session state machine.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, cmd protocol.Command) Outcome {
	switch cmd.Kind {
	case protocol.KindCreate:
		return d.create(ctx, sess, cmd)
	case protocol.KindUse:
		return d.use(ctx, sess, cmd)
	case protocol.KindDrop:
		return d.drop(ctx, sess, cmd)
	case protocol.KindSet, protocol.KindGet, protocol.KindDel:
		return d.keyValue(sess, cmd)
	case protocol.KindExit:
		return Outcome{Kind: cmd.Kind, Closed: true}
	default:
		return Outcome{Kind: cmd.Kind, Err: domain.ErrParse.WithDetails("unknown command")}
	}
}

// create registers a database and, on success, selects it: the creator
// supplied the credentials, so the grant is authenticated by construction.
func (d *Dispatcher) create(ctx context.Context, sess *Session, cmd protocol.Command) Outcome {
	inst, err := d.databases.Create(ctx, &CreateDatabaseRequest{
		Name:            cmd.Database,
		Username:        cmd.Username,
		Password:        cmd.Password,
		WithCredentials: cmd.HasCreds,
	})
	if err != nil {
		return Outcome{Kind: cmd.Kind, Err: err}
	}

	sess.selected = inst
	return Outcome{Kind: cmd.Kind, Database: inst.Name()}
}

// use re-resolves and re-authenticates regardless of the current
// selection; on success it replaces the grant.
func (d *Dispatcher) use(ctx context.Context, sess *Session, cmd protocol.Command) Outcome {
	inst, err := d.databases.Select(ctx, &SelectDatabaseRequest{
		Name:     cmd.Database,
		Username: cmd.Username,
		Password: cmd.Password,
	})
	if err != nil {
		return Outcome{Kind: cmd.Kind, Err: err}
	}

	sess.selected = inst
	return Outcome{Kind: cmd.Kind, Database: inst.Name()}
}

// drop removes a database after its own credential check. Dropping the
// session's own selection clears it; any other session holding the grant
// keeps its detached handle.
func (d *Dispatcher) drop(ctx context.Context, sess *Session, cmd protocol.Command) Outcome {
	removed, err := d.databases.Drop(ctx, &DropDatabaseRequest{
		Name:     cmd.Database,
		Username: cmd.Username,
		Password: cmd.Password,
	})
	if err != nil {
		return Outcome{Kind: cmd.Kind, Err: err}
	}

	if sess.selected == removed {
		sess.selected = nil
	}
	return Outcome{Kind: cmd.Kind, Database: removed.Name()}
}

// keyValue routes SET/GET/DEL to the selected keyspace. Auth was
// established at selection time; key operations never re-check it.
func (d *Dispatcher) keyValue(sess *Session, cmd protocol.Command) Outcome {
	inst, ok := sess.Selected()
	if !ok {
		return Outcome{Kind: cmd.Kind, Err: domain.ErrNoDatabaseSelected}
	}

	switch cmd.Kind {
	case protocol.KindSet:
		var err error
		if cmd.HasTTL {
			err = inst.SetWithTTL(cmd.Key, cmd.Value, cmd.TTL)
		} else {
			err = inst.Set(cmd.Key, cmd.Value)
		}
		if err != nil {
			return Outcome{Kind: cmd.Kind, Err: err}
		}
		return Outcome{Kind: cmd.Kind}

	case protocol.KindGet:
		value, found := inst.Get(cmd.Key)
		return Outcome{Kind: cmd.Kind, Value: value, HasValue: found}

	default: // protocol.KindDel
		removed, err := inst.Delete(cmd.Key)
		if err != nil {
			return Outcome{Kind: cmd.Kind, Err: err}
		}
		return Outcome{Kind: cmd.Kind, HasValue: removed}
	}
}
