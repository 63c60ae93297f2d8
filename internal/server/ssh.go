package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tilemask/internal/autotile"
	"tilemask/internal/report"
	"tilemask/internal/world"
)

// errUsage marks command lines that did not parse.
var errUsage = errors.New("usage")

const usage = `Commands:
  list                          List maps
  show   <map>                  Variant index per cell
  masks  <map>                  Neighbor mask per cell
  kinds  <map>                  Tile kind per cell
  set    <map> <x> <y> <kind>   Place a tile (y grows north, 0 is the bottom row)
  clear  <map> <x> <y>          Remove a tile
  rules  [name]                 List rule tables, or print one`

// SSHServer wraps the SSH listener and serves inspector commands.
type SSHServer struct {
	world   *world.World
	addr    string
	hostKey string
	tracer  trace.Tracer
}

// NewSSHServer creates a new SSH server bound to the given address.
func NewSSHServer(addr, hostKey string, w *world.World, tracer trace.Tracer) *SSHServer {
	return &SSHServer{
		world:   w,
		addr:    addr,
		hostKey: hostKey,
		tracer:  tracer,
	}
}

// Start begins listening for SSH connections.
func (s *SSHServer) Start() error {
	server := &ssh.Server{
		Addr: s.addr,
		Handler: func(sess ssh.Session) {
			s.handleSession(sess)
		},
	}

	if err := server.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}

	log.Printf("SSH server listening on %s", s.addr)
	return server.ListenAndServe()
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	id := uuid.NewString()
	args := sess.Command()

	log.Printf("Session %s: %s ran %q", id, sess.User(), args)
	defer log.Printf("Session %s: closed", id)

	if err := s.Exec(sess.Context(), sess, args); err != nil {
		fmt.Fprintf(sess.Stderr(), "error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintln(sess.Stderr(), usage)
		}
		sess.Exit(1)
		return
	}
	sess.Exit(0)
}

// Exec runs one inspector command and writes its output to out.
func (s *SSHServer) Exec(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(out, usage)
		return err
	}

	ctx, span := s.tracer.Start(ctx, "inspector."+args[0],
		trace.WithAttributes(attribute.StringSlice("inspector.args", args)))
	defer span.End()

	err := s.dispatch(ctx, out, args[0], args[1:])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *SSHServer) dispatch(_ context.Context, out io.Writer, cmd string, args []string) error {
	switch cmd {
	case "help":
		_, err := fmt.Fprintln(out, usage)
		return err

	case "list":
		for _, name := range s.world.Names() {
			snap, err := s.world.Snapshot(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%dx%d)\n", name, snap.Width, snap.Height)
		}
		return nil

	case "show", "masks", "kinds":
		if len(args) != 1 {
			return fmt.Errorf("%s needs a map name: %w", cmd, errUsage)
		}
		snap, err := s.world.Snapshot(args[0])
		if err != nil {
			return err
		}
		switch cmd {
		case "show":
			return report.WriteVariants(out, snap)
		case "masks":
			return report.WriteMasks(out, snap)
		}
		return report.WriteKinds(out, snap)

	case "set", "clear":
		want := 3
		if cmd == "set" {
			want = 4
		}
		if len(args) != want {
			return fmt.Errorf("%s takes %d arguments: %w", cmd, want, errUsage)
		}
		p, err := parsePosition(args[1], args[2])
		if err != nil {
			return err
		}
		var refreshed []autotile.Position
		if cmd == "set" {
			refreshed, err = s.world.Set(args[0], p, autotile.Kind(args[3]))
		} else {
			refreshed, err = s.world.Clear(args[0], p)
		}
		if err != nil {
			return err
		}
		return writeRefreshed(out, refreshed)

	case "rules":
		reg := s.world.Rules()
		if len(args) == 0 {
			for _, name := range reg.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}
		t, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		return report.WriteRules(out, t)
	}

	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func parsePosition(xs, ys string) (autotile.Position, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return autotile.Position{}, fmt.Errorf("bad x %q: %w", xs, errUsage)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return autotile.Position{}, fmt.Errorf("bad y %q: %w", ys, errUsage)
	}
	return autotile.Position{X: x, Y: y}, nil
}

func writeRefreshed(out io.Writer, ps []autotile.Position) error {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	_, err := fmt.Fprintf(out, "refreshed %d: %s\n", len(ps), strings.Join(parts, " "))
	return err
}
