package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	mkerrors "github.com/alexisbeaulieu97/motionkit/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Parse loads a scene file from disk, validates it, and returns the resulting model.
func Parse(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mkerrors.NewParseError(path, 0, err)
	}
	return ParseBytes(path, data)
}

// ParseBytes decodes and validates a scene document. Name is used in error messages.
func ParseBytes(name string, data []byte) (*Scene, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var scene Scene
	if err := decoder.Decode(&scene); err != nil {
		return nil, mkerrors.NewParseError(name, extractLine(err), err)
	}

	if err := ValidateScene(&scene); err != nil {
		return nil, err
	}

	return &scene, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
