package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/okra-platform/dtogen/internal/build"
	"github.com/okra-platform/dtogen/internal/config"
	"github.com/okra-platform/dtogen/internal/dto"
	"github.com/okra-platform/dtogen/internal/schema"
	"github.com/okra-platform/dtogen/internal/wire"
)

// ErrAbsent is returned when a payload would unmarshal to nil
var ErrAbsent = errors.New("payload does not unmarshal")

type DecodeOptions struct {
	// Type is the DTO the payload is decoded as
	Type string
	// Array decodes a JSON array of Type
	Array bool
	// Path of the payload file, "-" for stdin
	Path string
}

// SchemaLoader parses and resolves the project schema
type SchemaLoader interface {
	Load() (*schema.Schema, *dto.Catalog, string, error)
}

type SchemaLoaderFactory func(cfg *config.Config, projectRoot string, logger zerolog.Logger) SchemaLoader

// DecodeDependencies holds all external dependencies for the decode command
type DecodeDependencies struct {
	ConfigLoader  ConfigLoader
	LoaderFactory SchemaLoaderFactory
	Stdin         io.Reader
	Output        Output
	Logger        zerolog.Logger
}

// DecodeCommand runs a JSON payload through the same rules the generated
// initializers apply and prints the normalized result
type DecodeCommand struct {
	deps *DecodeDependencies
}

func NewDecodeCommand(logger zerolog.Logger) *DecodeCommand {
	return NewDecodeCommandWithDeps(&DecodeDependencies{
		ConfigLoader: &defaultConfigLoader{},
		LoaderFactory: func(cfg *config.Config, projectRoot string, logger zerolog.Logger) SchemaLoader {
			return build.NewBuilder(cfg, projectRoot, logger)
		},
		Stdin:  os.Stdin,
		Output: defaultOutput(),
		Logger: logger,
	})
}

func NewDecodeCommandWithDeps(deps *DecodeDependencies) *DecodeCommand {
	return &DecodeCommand{deps: deps}
}

func (dc *DecodeCommand) Execute(ctx context.Context, opts DecodeOptions) error {
	if opts.Type == "" {
		return errors.WithHint(errors.New("no dto type given"), "pass --type <Name>")
	}

	cfg, projectRoot, err := dc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	_, catalog, _, err := dc.deps.LoaderFactory(cfg, projectRoot, dc.deps.Logger).Load()
	if err != nil {
		return err
	}

	payload, err := dc.readPayload(opts.Path)
	if err != nil {
		return err
	}

	decoder := wire.NewDecoder(catalog)
	var result any
	if opts.Array {
		records, ok, err := decoder.DecodeArray(opts.Type, payload)
		if err != nil {
			return err
		}
		if !ok {
			return dc.absent(opts)
		}
		encoded := make([]map[string]any, 0, len(records))
		for _, r := range records {
			m, err := decoder.Encode(r)
			if err != nil {
				return err
			}
			encoded = append(encoded, m)
		}
		dc.deps.Logger.Debug().Int("records", len(records)).Msg("decoded array")
		result = encoded
	} else {
		record, ok, err := decoder.Decode(opts.Type, payload)
		if err != nil {
			return err
		}
		if !ok {
			return dc.absent(opts)
		}
		dc.deps.Logger.Debug().Str("type", record.Type).Msg("decoded record")
		m, err := decoder.Encode(record)
		if err != nil {
			return err
		}
		result = m
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}
	dc.deps.Output.Println(string(data))
	return nil
}

func (dc *DecodeCommand) absent(opts DecodeOptions) error {
	dc.deps.Logger.Warn().Str("type", opts.Type).Bool("array", opts.Array).Msg("absent")
	return errors.Wrapf(ErrAbsent, "as %s", opts.Type)
}

func (dc *DecodeCommand) readPayload(path string) (any, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(dc.deps.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read payload")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "failed to parse payload")
	}
	return v, nil
}
