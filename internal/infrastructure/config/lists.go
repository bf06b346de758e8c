package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phishsense/phishsense/internal/domain/service"
)

// LoadLists returns the detection lists. An empty path yields the built-in
// defaults; a file replaces only the lists it names.
func LoadLists(path string) (service.Lists, error) {
	if path == "" {
		return service.DefaultLists(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return service.Lists{}, fmt.Errorf("read detection lists: %w", err)
	}
	return ParseLists(data)
}

// ParseLists decodes a YAML detection list document. Unknown keys are rejected.
func ParseLists(data []byte) (service.Lists, error) {
	var lists service.Lists
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lists); err != nil && !errors.Is(err, io.EOF) {
		return service.Lists{}, fmt.Errorf("parse detection lists: %w", err)
	}
	return lists.Normalize(), nil
}
