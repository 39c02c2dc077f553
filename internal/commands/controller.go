// Package commands contains the CLI commands for the application
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/okra-platform/dtogen/internal/config"
)

type Flags struct {
	LogLevel string
}

// Controller wires CLI actions to their commands
type Controller struct {
	Flags  *Flags
	Logger zerolog.Logger
}

func (c *Controller) Init(ctx context.Context, opts InitOptions) error {
	return NewInitCommand().Run(ctx, opts)
}

func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	return NewGenerateCommand(c.Logger).Execute(ctx, opts)
}

func (c *Controller) Watch(ctx context.Context) error {
	return NewWatchCommand(c.Logger).Execute(ctx)
}

func (c *Controller) Decode(ctx context.Context, opts DecodeOptions) error {
	return NewDecodeCommand(c.Logger).Execute(ctx, opts)
}

// Interfaces for dependency injection
type ConfigLoader interface {
	LoadConfig() (*config.Config, string, error)
}

type SignalNotifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type Output interface {
	Printf(format string, args ...interface{})
	Println(args ...interface{})
}

// Default implementations
type defaultConfigLoader struct{}

func (l *defaultConfigLoader) LoadConfig() (*config.Config, string, error) {
	return config.LoadConfig()
}

type defaultSignalNotifier struct{}

func (n *defaultSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (n *defaultSignalNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

type writerOutput struct {
	w io.Writer
}

func (o *writerOutput) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format, args...)
}

func (o *writerOutput) Println(args ...interface{}) {
	fmt.Fprintln(o.w, args...)
}

func defaultOutput() Output {
	return &writerOutput{w: os.Stdout}
}

// withInterrupt returns a context cancelled on SIGINT or SIGTERM
func withInterrupt(ctx context.Context, notifier SignalNotifier, out Output) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	notifier.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			out.Println("\nStopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		notifier.Stop(sigChan)
		cancel()
	}
}
