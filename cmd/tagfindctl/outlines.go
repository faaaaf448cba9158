package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// outline is one entry of an outline file.
type outline struct {
	Ref  string   `yaml:"ref" tagfind:"ref"`
	Name string   `yaml:"name" tagfind:"name"`
	Tags []string `yaml:"tags" tagfind:"tags"`
}

type outlineFile struct {
	Outlines []outline `yaml:"outlines"`
}

// loadOutlines reads an outline file: either a top-level list or an
// "outlines" key holding one.
func loadOutlines(path string) ([]outline, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []outline
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return list, nil
	}

	var f outlineFile
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f.Outlines, nil
}
