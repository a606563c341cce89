// Package filecatalog implements the catalog collaborators on top of a
// YAML package index. It backs the CLI and is handy for fixtures.
package filecatalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/parcel/internal/core/catalog"
)

// File is the on-disk layout of catalog.yaml.
//
//	include:
//	  - repos/*.yaml
//	installed:
//	  - id: com.example.tool
//	    version: 1.0
//	    install_date: 2026-01-02T15:04:05Z
//	packages:
//	  - id: com.example.tool
//	    version: 1.1
//	    repo: https://repo.example.com/
//	provisional:
//	  - package: com.example.new
//	    version: 0.1
//	queue:
//	  com.example.tool: upgrades
type File struct {
	// Include lists glob patterns, relative to the file, of fragments
	// merged into this one.
	Include     []string                      `yaml:"include"`
	Installed   []catalog.Package             `yaml:"installed"`
	Packages    []catalog.Package             `yaml:"packages"`
	Provisional []catalog.ProvisionalPackage  `yaml:"provisional"`
	Queue       map[string]catalog.QueueState `yaml:"queue"`
}

func readFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	return f, nil
}

// loadFile reads path and every fragment its include patterns match.
// Fragments are read concurrently and merged in match order; their own
// include lists are ignored.
func loadFile(ctx context.Context, path string) (File, error) {
	root, err := readFile(path)
	if err != nil {
		return File{}, err
	}

	dir := filepath.Dir(path)

	var fragments []string
	for _, pattern := range root.Include {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return File{}, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		fragments = append(fragments, matches...)
	}

	parts := make([]File, len(fragments))
	g, gctx := errgroup.WithContext(ctx)
	for i, fragment := range fragments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := readFile(fragment)
			if err != nil {
				return err
			}
			parts[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return File{}, err
	}

	for _, part := range parts {
		root.Installed = append(root.Installed, part.Installed...)
		root.Packages = append(root.Packages, part.Packages...)
		root.Provisional = append(root.Provisional, part.Provisional...)
		for id, state := range part.Queue {
			if root.Queue == nil {
				root.Queue = make(map[string]catalog.QueueState)
			}
			root.Queue[id] = state
		}
	}

	return root, nil
}
