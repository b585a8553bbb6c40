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

package operation

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/jdconv/pkg/config"
	"github.com/walteh/jdconv/pkg/log"
	"github.com/walteh/jdconv/pkg/status"
	"github.com/walteh/jdconv/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is a single run over a source tree
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 StatusManager reads and writes files and records their outcome
type StatusManager interface {
	status.FileManager
	status.StatusReporter
	Summarize(ctx context.Context) status.Summary
}

// 🔧 Options contains everything an operation needs
type Options struct {
	// Root is the directory that is walked
	Root string
	// Config carries extensions, ignore globs, extra rules and write flags
	Config *config.Config
	// Converter defaults to the Javadoc rules plus Config's extra rules
	Converter *text.Converter
	// StatusMgr defaults to a status.Manager rooted at Root
	StatusMgr StatusManager
	// Logger defaults to a logger that discards console output
	Logger *log.Logger
}

// 🏗️ BaseOperation holds the resolved options shared by operations
type BaseOperation struct {
	Options
}

// 🏭 NewBaseOperation validates opts and fills in defaults
func NewBaseOperation(opts Options) (BaseOperation, error) {
	if opts.Root == "" {
		return BaseOperation{}, errors.Errorf("root is required")
	}

	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return BaseOperation{}, errors.Errorf("validating config: %w", err)
	}

	if opts.Converter == nil {
		conv, err := text.NewJavadocConverter(opts.Config.TextRules()...)
		if err != nil {
			return BaseOperation{}, errors.Errorf("creating converter: %w", err)
		}
		opts.Converter = conv
	}

	if opts.StatusMgr == nil {
		opts.StatusMgr = status.New(opts.Root, status.Options{
			Atomic: opts.Config.Atomic,
			Backup: opts.Config.Backup,
		})
	}

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, zerolog.Nop())
	}

	return BaseOperation{Options: opts}, nil
}
