package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/yaml"
)

// LoadFile reads and compiles a schema file. The format is chosen by
// extension: .cue, .json, .yaml or .yml.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Load(path, data)
}

// Load compiles schema source. filename selects the format and is used in
// error positions.
func Load(filename string, data []byte) (*Schema, error) {
	v, err := build(filename, data)
	if err != nil {
		return nil, err
	}
	return Compile(v)
}

func build(filename string, data []byte) (cue.Value, error) {
	ctx := cuecontext.New()

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".cue":
		v := ctx.CompileBytes(data, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		return v, nil

	case ".json":
		expr, err := json.Extract(filename, data)
		if err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		v := ctx.BuildExpr(expr)
		if err := v.Err(); err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		return v, nil

	case ".yaml", ".yml":
		file, err := yaml.Extract(filename, data)
		if err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		v := ctx.BuildFile(file)
		if err := v.Err(); err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		return v, nil

	default:
		return cue.Value{}, &CompileError{Field: "file", Message: fmt.Sprintf("unsupported schema format %q (want .cue, .json, .yaml or .yml)", ext)}
	}
}
