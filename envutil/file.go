package envutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFileType is returned when the file extension is not recognized.
var ErrUnknownFileType = errors.New("env file doesn't have a known file suffix")

// envFile is the shape of both supported formats: a top-level "env" object
// of string keys and string values.
//
//	env:
//	  LITECOLLECTIONS_PAGE_SIZE: "512"
//	  LITECOLLECTIONS_SYNCHRONOUS: "OFF"
type envFile struct {
	Env map[string]string `json:"env" yaml:"env"`
}

// LoadEnvFile reads a .yaml, .yml or .json env file and returns its entries.
func LoadEnvFile(path string) (map[string]string, error) {
	bts, err := os.ReadFile(path) // #nosec G304 -- path is the intended file to load
	if err != nil {
		return nil, err
	}

	out := &envFile{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(bts, out)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(bts, out)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, filepath.Base(path))
	}

	if err != nil {
		return nil, err
	}

	return out.Env, nil
}
