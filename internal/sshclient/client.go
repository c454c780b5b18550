// Package sshclient opens interactive shells and runs commands on instances
// using the connection details returned by the daemon's ssh_info call.
package sshclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
)

// DefaultTimeout bounds the TCP connect and SSH handshake.
const DefaultTimeout = 30 * time.Second

// Streams are the local ends of a remote session.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Client connects to a single instance.
type Client struct {
	addr   string
	config *ssh.ClientConfig
	log    zerolog.Logger
}

// New builds a client from connection details. The private key is expected
// base64 encoded, as delivered by the daemon.
func New(info v1alpha1.SSHInfo, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(info.Host) == "" {
		return nil, fmt.Errorf("ssh host is required")
	}
	if info.Username == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	key, err := base64.StdEncoding.DecodeString(info.PrivKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	port := info.Port
	if port == 0 {
		port = 22
	}

	return &Client{
		addr: net.JoinHostPort(info.Host, strconv.Itoa(port)),
		config: &ssh.ClientConfig{
			User: info.Username,
			Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
			// Instance host keys are generated at launch and never published.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         timeout,
		},
		log: log,
	}, nil
}

// Addr returns the host:port the client connects to.
func (c *Client) Addr() string { return c.addr }

// Shell opens a login shell. When In is a terminal it is put in raw mode
// and a pty of the same size is requested.
func (c *Client) Shell(ctx context.Context, s Streams) error {
	return c.session(ctx, s, func(sess *ssh.Session) error {
		if err := sess.Shell(); err != nil {
			return fmt.Errorf("failed to start shell: %w", err)
		}
		return sess.Wait()
	})
}

// Exec runs args on the instance. A non-empty workDir is entered first.
func (c *Client) Exec(ctx context.Context, args []string, workDir string, s Streams) error {
	cmd := Command(args, workDir)
	c.log.Debug().Str("addr", c.addr).Str("command", cmd).Msg("running remote command")
	return c.session(ctx, s, func(sess *ssh.Session) error {
		return sess.Run(cmd)
	})
}

func (c *Client) session(ctx context.Context, s Streams, run func(*ssh.Session) error) error {
	c.log.Debug().Str("addr", c.addr).Str("user", c.config.User).Msg("connecting")
	client, err := ssh.Dial("tcp", c.addr, c.config)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	defer client.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = client.Close()
		case <-done:
		}
	}()

	sess, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer sess.Close()

	sess.Stdin = s.In
	sess.Stdout = s.Out
	sess.Stderr = s.Err

	if f, ok := s.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		restore, err := requestPty(sess, int(f.Fd()))
		if err != nil {
			return err
		}
		defer restore()
	}

	return remoteExit(run(sess))
}

func requestPty(sess *ssh.Session, fd int) (func(), error) {
	width, height, err := term.GetSize(fd)
	if err != nil {
		width, height = 80, 24
	}
	termType := os.Getenv("TERM")
	if termType == "" {
		termType = "xterm-256color"
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty(termType, height, width, modes); err != nil {
		return nil, fmt.Errorf("failed to request pty: %w", err)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set terminal raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, oldState) }, nil
}

// remoteExit passes a remote command's exit status through as ours.
func remoteExit(err error) error {
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitcode.Exit(exitcode.Code(exitErr.ExitStatus()), err)
	}
	return err
}

// Command joins args into a single shell command line, each argument
// quoted, prefixed with a cd into workDir when given.
func Command(args []string, workDir string) string {
	var b strings.Builder
	if workDir != "" {
		b.WriteString("cd ")
		b.WriteString(shellEscape(workDir))
		b.WriteString(" && ")
	}
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(shellEscape(arg))
	}
	return b.String()
}

func shellEscape(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
