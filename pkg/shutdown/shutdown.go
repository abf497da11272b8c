package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Manager coordinates graceful shutdown. Registered functions run in LIFO
// order, each bounded by the manager's timeout.
type Manager struct {
	funcs   []func(context.Context) error
	mu      sync.Mutex
	timeout time.Duration
	done    chan struct{}
	once    sync.Once
}

// New creates a shutdown manager
func New(timeout time.Duration) *Manager {
	return &Manager{
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Register adds a shutdown function; functions run in reverse order
func (m *Manager) Register(fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, fn)
}

// Done returns a channel closed when shutdown begins
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until SIGTERM/SIGINT, then runs the registered functions
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	fmt.Printf("\nReceived signal: %v, shutting down\n", sig)

	m.once.Do(func() { close(m.done) })
	m.Shutdown()
}

// Shutdown executes all registered shutdown functions in LIFO order
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for i := len(m.funcs) - 1; i >= 0; i-- {
		if err := m.funcs[i](ctx); err != nil {
			fmt.Printf("shutdown step %d failed: %v\n", i, err)
		}
	}
}

// StopHTTPServer wraps an http.Server shutdown as a registered function
func StopHTTPServer(server interface{ Shutdown(context.Context) error }, name string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop %s server: %w", name, err)
		}
		return nil
	}
}

// CloseResource wraps an io.Closer as a registered function
func CloseResource(closer interface{ Close() error }, name string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", name, err)
		}
		return nil
	}
}
