package actuate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/replay-director/replay-director/director"
)

// steam64Base is the SteamID64 of account id 0 in the public universe.
const steam64Base = 76561197960265728

const defaultNetConTimeout = 5 * time.Second

// AccountID converts a SteamID64 participant id to a 32-bit account id.
func AccountID(steamID string) (uint64, error) {
	id, err := strconv.ParseUint(steamID, 10, 64)
	if err != nil || id <= steam64Base {
		return 0, fmt.Errorf("%q: %w", steamID, ErrNoAccountID)
	}
	return id - steam64Base, nil
}

// NetCon drives the delayed replay client through its NetCon console.
// The connection is opened lazily and re-dialled after a write failure.
type NetCon struct {
	cfg    NetConConfig
	dialer net.Dialer

	mu   sync.Mutex
	conn net.Conn
}

// NewNetCon creates a NetCon actuator; no connection is made until first use.
func NewNetCon(cfg NetConConfig) *NetCon {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultNetConTimeout
	}
	return &NetCon{cfg: cfg}
}

// SwitchTo spectates the target by account id, then sends the follow-up
// commands (camera mode, lock).
func (n *NetCon) SwitchTo(ctx context.Context, target director.Target) error {
	account, err := AccountID(target.ParticipantID)
	if err != nil {
		return err
	}
	cmds := append([]string{fmt.Sprintf("spec_player_by_accountid %d", account)}, n.cfg.FollowCommands...)
	return n.Send(ctx, cmds...)
}

// Send writes console commands, one per line.
func (n *NetCon) Send(ctx context.Context, cmds ...string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	conn, err := n.connectLocked(ctx)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(n.deadline(ctx)); err != nil {
		n.closeLocked()
		return fmt.Errorf("netcon: %w", err)
	}
	for _, cmd := range cmds {
		if _, err := io.WriteString(conn, cmd+"\n"); err != nil {
			n.closeLocked()
			return fmt.Errorf("netcon write %q: %w", cmd, err)
		}
		logrus.Debugf("[NetCon] Sent: %s", cmd)
	}
	return nil
}

// Close drops the console connection.
func (n *NetCon) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closeLocked()
}

func (n *NetCon) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(n.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (n *NetCon) connectLocked(ctx context.Context) (net.Conn, error) {
	if n.conn != nil {
		return n.conn, nil
	}
	conn, err := dialConsole(ctx, &n.dialer, n.cfg)
	if err != nil {
		return nil, err
	}
	n.conn = conn
	go n.drain(conn)
	logrus.Infof("[NetCon] Connected to %s", n.cfg.Address)
	return conn, nil
}

// drain discards console output so the peer never blocks on a full buffer,
// and forgets the connection once the peer closes it.
func (n *NetCon) drain(conn net.Conn) {
	_, _ = io.Copy(io.Discard, conn)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == conn {
		_ = conn.Close()
		n.conn = nil
		logrus.Warnf("[NetCon] Connection to %s closed by peer", n.cfg.Address)
	}
}

func (n *NetCon) closeLocked() error {
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

func dialConsole(ctx context.Context, dialer *net.Dialer, cfg NetConConfig) (net.Conn, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultNetConTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := dialer.DialContext(dctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("netcon dial %s: %w", cfg.Address, err)
	}
	if cfg.Password == "" {
		return conn, nil
	}
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("netcon: %w", err)
	}
	if _, err := io.WriteString(conn, "PASS "+cfg.Password+"\n"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("netcon auth: %w", err)
	}
	return conn, nil
}

// Probe connects, authenticates, sends `echo NETCON_OK` and returns whatever
// the console printed within wait.
func Probe(ctx context.Context, cfg NetConConfig, wait time.Duration) (string, error) {
	var dialer net.Dialer
	conn, err := dialConsole(ctx, &dialer, cfg)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	if _, err := io.WriteString(conn, "echo NETCON_OK\n"); err != nil {
		return "", fmt.Errorf("netcon write: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return "", fmt.Errorf("netcon: %w", err)
	}
	var out bytes.Buffer
	_, err = io.Copy(&out, conn)
	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		return out.String(), fmt.Errorf("netcon read: %w", err)
	}
	return out.String(), nil
}
