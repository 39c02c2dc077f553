package commands

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/okra-platform/dtogen/internal/config"
)

type mockConfigLoader struct {
	mock.Mock
}

func (m *mockConfigLoader) LoadConfig() (*config.Config, string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*config.Config), args.String(1), args.Error(2)
}

type mockSignalNotifier struct {
	mock.Mock
	mu       sync.Mutex
	channels []chan<- os.Signal
}

func (m *mockSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	m.Called(c, sig)
	m.mu.Lock()
	m.channels = append(m.channels, c)
	m.mu.Unlock()
}

func (m *mockSignalNotifier) Stop(c chan<- os.Signal) {
	m.Called(c)
}

// send delivers sig to every registered channel
func (m *mockSignalNotifier) send(sig os.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.channels {
		c <- sig
	}
}

func (m *mockSignalNotifier) registered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels) > 0
}

// recordingOutput collects everything printed
type recordingOutput struct {
	mu    sync.Mutex
	lines []string
}

func (o *recordingOutput) Printf(format string, args ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *recordingOutput) Println(args ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, fmt.Sprintln(args...))
}

func (o *recordingOutput) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "")
}

type mockFileSystem struct {
	osFileSystem
	writeFileErr error
	writes       []string
}

func (m *mockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if m.writeFileErr != nil {
		return m.writeFileErr
	}
	m.writes = append(m.writes, name)
	return m.osFileSystem.WriteFile(name, data, perm)
}
