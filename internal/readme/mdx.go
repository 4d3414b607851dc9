package readme

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReadyMessage is the first line a parse server prints once it accepts requests.
const ReadyMessage = "MDX server is listening on port"

const maxErrorBody = 64 << 10

var (
	// ErrInvalidMDX is returned when the server rejects a document.
	ErrInvalidMDX = errors.New("invalid MDX")
	// ErrServerStart is returned when the parse server does not announce itself.
	ErrServerStart = errors.New("failed starting MDX server")
	// ErrClosed is returned by Verify after Close.
	ErrClosed = errors.New("MDX server closed")
)

// MDXOptions configures an MDXServer.
type MDXOptions struct {
	// Addr is the URL documents are POSTed to.
	Addr string
	// Command starts the server. When empty, Addr must already be served.
	Command []string
	// Timeout bounds server start-up and every request.
	Timeout time.Duration
	Logger  *zap.Logger
}

// MDXServer is an owned handle to an MDX parse server. The process, if any,
// is started on the first Verify and stopped by Close. It is safe for
// concurrent use.
type MDXServer struct {
	opts   MDXOptions
	log    *zap.Logger
	client *http.Client

	mu      sync.Mutex
	cmd     *exec.Cmd
	drained chan struct{}
	closed  bool
}

// NewMDXServer returns a handle; nothing is started yet.
func NewMDXServer(opts MDXOptions) *MDXServer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &MDXServer{
		opts:   opts,
		log:    log,
		client: &http.Client{Transport: &http.Transport{}},
	}
}

// Verify POSTs text to the server. A non-200 answer is reported as
// ErrInvalidMDX carrying the response body.
func (s *MDXServer) Verify(ctx context.Context, text string) error {
	err := s.ensureStarted()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.Addr, strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("building MDX request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to MDX server %s: %w", s.opts.Addr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("reading MDX server response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrInvalidMDX, strings.TrimSpace(string(body)))
	}

	return nil
}

func (s *MDXServer) ensureStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.cmd != nil || len(s.opts.Command) == 0 {
		return nil
	}

	return s.start()
}

// start runs the configured command and waits for its ready line. Called with mu held.
func (s *MDXServer) start() error {
	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerStart, err)
	}

	cmd := exec.Command(s.opts.Command[0], s.opts.Command[1:]...)
	cmd.Stdout = w

	err = cmd.Start()
	w.Close()

	if err != nil {
		r.Close()
		return fmt.Errorf("%w: %w", ErrServerStart, err)
	}

	reader := bufio.NewReader(r)
	lines := make(chan string, 1)

	go func() {
		line, _ := reader.ReadString('\n')
		lines <- line
	}()

	timer := time.NewTimer(s.opts.Timeout)
	defer timer.Stop()

	var line string

	select {
	case line = <-lines:
	case <-timer.C:
		stop(cmd)
		// The reader sees EOF once the process is gone.
		<-lines
		r.Close()

		return fmt.Errorf("%w: no output within %s", ErrServerStart, s.opts.Timeout)
	}

	if !strings.Contains(line, ReadyMessage) {
		stop(cmd)
		r.Close()

		return fmt.Errorf("%w: stdout: %s", ErrServerStart, strings.TrimSpace(line))
	}

	s.cmd = cmd
	s.drained = make(chan struct{})

	// Keep reading so the server never blocks on a full pipe.
	go func(done chan<- struct{}) {
		defer close(done)
		defer r.Close()

		_, _ = io.Copy(io.Discard, reader)
	}(s.drained)

	s.log.Info("started MDX server", zap.Strings("command", s.opts.Command), zap.Int("pid", cmd.Process.Pid))

	return nil
}

// Close terminates the server process, if one was started, and releases
// idle connections. Verify fails with ErrClosed afterwards.
func (s *MDXServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.client.CloseIdleConnections()

	if s.cmd == nil {
		return nil
	}

	stop(s.cmd)
	<-s.drained
	s.log.Info("stopped MDX server", zap.Int("pid", s.cmd.Process.Pid))
	s.cmd = nil

	return nil
}

func stop(cmd *exec.Cmd) {
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
}

var _ Verifier = (*MDXServer)(nil)
