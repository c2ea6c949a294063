package player

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/log"
	"github.com/samber/lo"
)

// Escalation waits of Terminate.
const (
	QuitWait      = 1 * time.Second
	TerminateWait = 3 * time.Second
	KillWait      = 2 * time.Second
)

// TerminateLimit bounds a whole Terminate run.
const TerminateLimit = QuitWait + TerminateWait + KillWait + time.Second

const (
	lineBuffer   = 256
	maxLineBytes = 1 << 20
)

var logger = log.For("player")

// Decoder launches the decoder binary with a fixed argument list followed by the target.
type Decoder struct {
	Binary string
	Args   []string
	// Dir is the working directory of launched processes. Empty means the current one.
	Dir string
}

// Launch starts the decoder on target. Any failure wraps ErrLaunch.
func (d Decoder) Launch(target string) (Process, error) {
	safe, err := sanitizeTarget(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	args := make([]string, 0, len(d.Args)+1)
	args = append(args, d.Args...)
	args = append(args, safe)

	cmd := exec.Command(d.Binary, args...)
	cmd.Dir = d.Dir
	cmd.SysProcAttr = sysProcAttr()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin: %v", ErrLaunch, err)
	}

	// stdout and stderr share one pipe so their lines stay in emission order
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	p := &process{
		cmd:       cmd,
		stdin:     stdin,
		dir:       d.Dir,
		lines:     make(chan string, lineBuffer),
		exited:    make(chan struct{}),
		abandoned: make(chan struct{}),
	}

	logger.Infof("launched %s (pid %d) on %s", d.Binary, cmd.Process.Pid, safe)

	go p.reap(pw)
	go p.read(pr)

	return p, nil
}

type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	dir   string

	lines     chan string
	exited    chan struct{} // closed once the process has been reaped
	abandoned chan struct{} // closed when termination starts; undelivered lines are dropped

	mu      sync.Mutex // guards stdin and status
	status  Exit
	abandon sync.Once
}

// reap waits for the process and closes the write end of the output pipe after the copy
// goroutines of exec have finished, so the reader sees every byte before EOF.
func (p *process) reap(pw *io.PipeWriter) {
	err := p.cmd.Wait()

	status := Exit{Code: p.cmd.ProcessState.ExitCode()}
	if status.Code < 0 {
		status.Crashed = true
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		logger.Warnf("wait pid %d: %v", p.PID(), err)
	}

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()

	logger.Infof("pid %d exited with code %d", p.PID(), status.Code)

	_ = pw.Close()
	close(p.exited)
}

func (p *process) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	scanner.Split(ScanLines)

	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "?")

		select {
		case p.lines <- line:
		case <-p.abandoned:
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Warnf("read pid %d: %v", p.PID(), err)
		// keep the pipe flowing so Wait can return
		_, _ = io.Copy(io.Discard, r)
	}

	<-p.exited
	close(p.lines)
}

func (p *process) Lines() <-chan string { return p.lines }
func (p *process) PID() int             { return p.cmd.Process.Pid }
func (p *process) Dir() string          { return p.dir }

func (p *process) Send(cmd string) error {
	select {
	case <-p.exited:
		return fmt.Errorf("send %q: process exited", cmd)
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	logger.Tracef("-> %s", cmd)

	if _, err := io.WriteString(p.stdin, cmd+"\n"); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	return nil
}

func (p *process) ExitStatus() Exit {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status
}

func (p *process) ChildPID() (int, bool) {
	return childPID(p.PID())
}

// Terminate tries quit, then SIGTERM, then SIGKILL, each stage only if the previous one did not end
// the process within its wait.
func (p *process) Terminate(ctx context.Context) error {
	p.abandon.Do(func() { close(p.abandoned) })

	stages := []struct {
		name string
		act  func() error
		wait time.Duration
	}{
		{"quit", func() error { return p.Send("quit") }, QuitWait},
		{"terminate", func() error { return terminateProcess(p.cmd) }, TerminateWait},
		{"kill", func() error { return killProcess(p.cmd) }, KillWait},
	}

	for _, stage := range stages {
		select {
		case <-p.exited:
			return nil
		default:
		}

		if err := stage.act(); err != nil {
			logger.Debugf("%s pid %d: %v", stage.name, p.PID(), err)
		}

		timer := time.NewTimer(stage.wait)
		select {
		case <-p.exited:
			timer.Stop()
			logger.Debugf("pid %d ended after %s", p.PID(), stage.name)
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("pid %d survived kill", p.PID())
}

// childPID reads the first child of pid from procfs. Platforms without it report false.
func childPID(pid int) (int, bool) {
	path := filepath.Join("/proc", strconv.Itoa(pid), "task", strconv.Itoa(pid), "children")

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, false
	}

	child, err := strconv.Atoi(fields[0])
	return child, err == nil
}

// ScanLines is a bufio.SplitFunc that ends lines at \n, \r\n or a bare \r. The decoder rewrites
// its status line in place with \r, and each rewrite is a line of its own.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	switch {
	case i < 0:
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	case data[i] == '\n':
		return i + 1, data[:i], nil
	case i+1 < len(data):
		return i + 1 + lo.Ternary(data[i+1] == '\n', 1, 0), data[:i], nil
	case atEOF:
		return i + 1, data[:i], nil
	default:
		// a \r at the end of the buffer may be the first half of \r\n
		return 0, nil, nil
	}
}

var targetSchemes = []string{"http", "https", "mms", "mmsh", "mmst", "rtsp", "rtmp", "pcp", "file"}

// sanitizeTarget rejects targets the decoder would read as options or that carry control characters.
func sanitizeTarget(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", errors.New("empty target")
	}

	if strings.ContainsAny(t, "\x00\n\r") {
		return "", errors.New("control characters in target")
	}

	if strings.HasPrefix(t, "-") {
		return "", fmt.Errorf("target %q looks like an option", t)
	}

	if strings.Contains(t, "://") {
		u, err := url.Parse(t)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		if !lo.Contains(targetSchemes, strings.ToLower(u.Scheme)) {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return t, nil
	}

	return filepath.Clean(t), nil
}
