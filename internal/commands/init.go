package commands

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/okra-platform/dtogen/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

const schemaTemplate = "templates/schema.dto.graphql"

type InitOptions struct {
	// Dir is the project directory; empty means the working directory
	Dir         string
	Name        string
	Schema      string
	SupportObjC bool
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
	Getwd() (string, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *osFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

type InitCommand struct {
	filesystem  FileSystem
	templatesFS fs.FS
	output      Output
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand() *InitCommand {
	return &InitCommand{
		filesystem:  &osFileSystem{},
		templatesFS: templatesFS,
		output:      defaultOutput(),
	}
}

func (ic *InitCommand) Run(ctx context.Context, opts InitOptions) error {
	return ic.RunWithOptions(ctx, opts)
}

// RunWithOptions prompts for anything opts leaves open, then writes
// dtogen.json and an example schema
func (ic *InitCommand) RunWithOptions(ctx context.Context, opts InitOptions, programOpts ...tea.ProgramOption) error {
	dir := opts.Dir
	if dir == "" {
		wd, err := ic.filesystem.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get current directory")
		}
		dir = wd
	}

	for _, name := range config.FileNames {
		if _, err := ic.filesystem.Stat(filepath.Join(dir, name)); err == nil {
			err := errors.Newf("%s already exists in %s", name, dir)
			return errors.WithHint(err, "edit the existing config or remove it first")
		}
	}

	options := &opts
	switch {
	case ic.testOptions != nil:
		options = ic.testOptions
	case opts.Name == "":
		prompted, err := ic.promptInitOptions(opts, programOpts...)
		if err != nil {
			return errors.Wrap(err, "failed to get init options")
		}
		options = prompted
	}

	cfg := config.Config{
		Name:        options.Name,
		Schema:      options.Schema,
		SupportObjC: options.SupportObjC,
	}
	cfg.ApplyDefaults()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	configPath := filepath.Join(dir, config.FileNames[0])
	if err := ic.filesystem.WriteFile(configPath, append(data, '\n'), 0644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	schemaPath := config.Resolve(dir, cfg.Schema)
	created, err := ic.writeExampleSchema(schemaPath, cfg.Name)
	if err != nil {
		return err
	}

	ic.output.Printf("Created %s\n", configPath)
	if created {
		ic.output.Printf("Created %s\n", schemaPath)
	}
	ic.output.Println("Run 'dtogen generate' to generate marshalling code.")
	return nil
}

// writeExampleSchema leaves an existing schema untouched
func (ic *InitCommand) writeExampleSchema(path, name string) (bool, error) {
	if _, err := ic.filesystem.Stat(path); err == nil {
		return false, nil
	}

	raw, err := fs.ReadFile(ic.templatesFS, schemaTemplate)
	if err != nil {
		return false, errors.Wrap(err, "failed to read schema template")
	}
	tmpl, err := template.New("schema").Parse(string(raw))
	if err != nil {
		return false, errors.Wrap(err, "failed to parse schema template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Name string }{Name: moduleName(name)}); err != nil {
		return false, errors.Wrap(err, "failed to render schema template")
	}

	if err := ic.filesystem.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.Wrap(err, "failed to create schema directory")
	}
	if err := ic.filesystem.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return false, errors.Wrap(err, "failed to write example schema")
	}
	return true, nil
}

// moduleName turns a project name such as "my-app" into "MyApp"
func moduleName(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	}) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

func (ic *InitCommand) promptInitOptions(defaults InitOptions, opts ...tea.ProgramOption) (*InitOptions, error) {
	options := defaults
	if options.Schema == "" {
		options.Schema = "./schema.dto.graphql"
	}

	form := ic.createInitForm(&options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return &options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Description("Used as the module name in the example schema").
				Value(&options.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("project name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Schema path").
				Description("Where the DTO schema lives, relative to the project").
				Value(&options.Schema).
				Validate(func(s string) error {
					if !strings.HasSuffix(s, ".graphql") {
						return errors.New("schema path must end in .graphql")
					}
					return nil
				}),

			huh.NewConfirm().
				Title("Objective-C interop").
				Description("Expose marshalling helpers to Objective-C").
				Value(&options.SupportObjC),
		),
	)
}
