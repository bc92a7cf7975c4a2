package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec decodes and encodes the declared-state document for one
// serialization format. The rest of the system only ever sees Config.
type Codec interface {
	Name() string
	Decode(data []byte, v any) error
	Encode(v any) ([]byte, error)
}

// CodecForPath picks a codec from the file extension. TOML is the default
// for extensionless paths.
func CodecForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return TOMLCodec{}, nil
	case ".yaml", ".yml":
		return YAMLCodec{}, nil
	case ".json":
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// CodecForFormat picks a codec from an explicit format name, used by the
// find commands' --format flag.
func CodecForFormat(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "toml":
		return TOMLCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

type TOMLCodec struct{}

func (TOMLCodec) Name() string { return "toml" }

func (TOMLCodec) Decode(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

func (TOMLCodec) Encode(v any) ([]byte, error) {
	return toml.Marshal(v)
}

type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Decode(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func (YAMLCodec) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}
