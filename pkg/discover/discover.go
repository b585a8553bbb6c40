// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package discover finds the source files a conversion run will rewrite.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultExtensions is used when Options.Extensions is empty
var DefaultExtensions = []string{".cs"}

// 📁 File is a discovered source file
type File struct {
	// Path is the root joined with RelPath
	Path string
	// RelPath is slash-separated and relative to the root
	RelPath string
}

// 🔧 Options controls which files are discovered
type Options struct {
	Extensions []string // matched exactly against filepath.Ext
	Ignore     []string // doublestar globs against RelPath
}

// 🔍 Files walks root and returns every regular file with a wanted extension
// that no ignore glob matches. The walk finishes before Files returns, so the
// result never reflects writes made while processing it.
func Files(ctx context.Context, root string, opts Options) ([]File, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("reading root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", root)
	}

	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	// WalkDir does not descend into a root that is itself a symlink
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, errors.Errorf("resolving root %s: %w", root, err)
	}

	var files []File
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == walkRoot {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignored(opts.Ignore, rel) {
				logger.Debug().Str("dir", rel).Msg("directory ignored by pattern")
				return filepath.SkipDir
			}
			return nil
		}

		if !slices.Contains(extensions, filepath.Ext(path)) || !isRegularFile(path, d) {
			return nil
		}

		if ignored(opts.Ignore, rel) {
			logger.Debug().Str("file", rel).Msg("file ignored by pattern")
			return nil
		}

		files = append(files, File{Path: filepath.Join(root, filepath.FromSlash(rel)), RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	logger.Debug().Str("root", root).Int("files", len(files)).Msg("discovered files")

	return files, nil
}

// isRegularFile accepts regular files and symlinks that resolve to one.
// Symlinked directories are not followed.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func ignored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
