package commands

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/dtogen/internal/build"
	"github.com/okra-platform/dtogen/internal/config"
)

// Test plan:
// 1. Test config loading errors
// 2. Test session errors are returned
// 3. Test SIGINT stops the session cleanly
// 4. Test build results are printed through onBuild

type fakeRunner struct {
	run func(ctx context.Context) error
}

func (r *fakeRunner) Run(ctx context.Context) error {
	return r.run(ctx)
}

func newTestWatchCommand(loader ConfigLoader, notifier SignalNotifier, runner Runner, onBuild *func(*build.Artifacts, error)) (*WatchCommand, *recordingOutput) {
	out := &recordingOutput{}
	return NewWatchCommandWithDeps(&WatchDependencies{
		ConfigLoader: loader,
		SessionFactory: func(_ *config.Config, _ string, _ zerolog.Logger, fn func(*build.Artifacts, error)) Runner {
			if onBuild != nil {
				*onBuild = fn
			}
			return runner
		},
		SignalNotifier: notifier,
		Output:         out,
		Logger:         zerolog.Nop(),
	}), out
}

func newNotifier() *mockSignalNotifier {
	n := &mockSignalNotifier{}
	n.On("Notify", mock.Anything, []os.Signal{syscall.SIGINT, syscall.SIGTERM}).Return()
	n.On("Stop", mock.Anything).Return()
	return n
}

func TestWatchCommand_ConfigError(t *testing.T) {
	// Test: config errors are wrapped and no session starts
	loader := &mockConfigLoader{}
	loader.On("LoadConfig").Return(nil, "", errors.New("no config"))

	runner := &fakeRunner{run: func(context.Context) error {
		t.Fatal("session must not run")
		return nil
	}}
	cmd, _ := newTestWatchCommand(loader, newNotifier(), runner, nil)

	err := cmd.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestWatchCommand_SessionError(t *testing.T) {
	// Test: an initial build failure is returned
	loader := &mockConfigLoader{}
	loader.On("LoadConfig").Return(&config.Config{}, "/project", nil)
	notifier := newNotifier()

	runner := &fakeRunner{run: func(context.Context) error {
		return errors.New("initial build failed: invalid schema")
	}}
	cmd, _ := newTestWatchCommand(loader, notifier, runner, nil)

	err := cmd.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial build failed")
	notifier.AssertCalled(t, "Stop", mock.Anything)
}

func TestWatchCommand_Signal(t *testing.T) {
	// Test: SIGINT cancels the session and Execute returns nil
	loader := &mockConfigLoader{}
	loader.On("LoadConfig").Return(&config.Config{}, "/project", nil)
	notifier := newNotifier()

	runner := &fakeRunner{run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	cmd, out := newTestWatchCommand(loader, notifier, runner, nil)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute(context.Background())
	}()

	require.Eventually(t, notifier.registered, time.Second, 10*time.Millisecond)
	notifier.send(syscall.SIGINT)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after SIGINT")
	}
	assert.Contains(t, out.String(), "Watching /project")
	assert.Contains(t, out.String(), "Stopping...")
	notifier.AssertExpectations(t)
}

func TestWatchCommand_ReportsBuilds(t *testing.T) {
	// Test: build results are printed
	loader := &mockConfigLoader{}
	loader.On("LoadConfig").Return(&config.Config{}, "/project", nil)

	var onBuild func(*build.Artifacts, error)
	runner := &fakeRunner{run: func(context.Context) error {
		onBuild(&build.Artifacts{
			Files:     []string{"a.swift", "b.swift"},
			BuildInfo: build.BuildInfo{DTOCount: 1},
		}, nil)
		onBuild(nil, errors.New("unknown type Person"))
		return nil
	}}
	cmd, out := newTestWatchCommand(loader, newNotifier(), runner, &onBuild)

	require.NoError(t, cmd.Execute(context.Background()))
	assert.Contains(t, out.String(), "Generated 2 files for 1 DTOs")
	assert.Contains(t, out.String(), "Build failed: unknown type Person")
}
