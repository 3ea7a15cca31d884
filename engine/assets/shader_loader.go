package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadShader reads a GLSL source file from dir.
func LoadShader(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", name, err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("load shader %q: file is empty", name)
	}
	return string(b), nil
}

// ShaderPair is the source of one vertex + fragment program.
type ShaderPair struct {
	Vertex   string
	Fragment string
}

// LoadShaderPair reads the vertex and fragment sources of one program.
func LoadShaderPair(dir, vertex, fragment string) (ShaderPair, error) {
	vs, err := LoadShader(dir, vertex)
	if err != nil {
		return ShaderPair{}, err
	}
	fs, err := LoadShader(dir, fragment)
	if err != nil {
		return ShaderPair{}, err
	}
	return ShaderPair{Vertex: vs, Fragment: fs}, nil
}
