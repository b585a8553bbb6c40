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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/jdconv/pkg/discover"
	"github.com/walteh/jdconv/pkg/log"
	"github.com/walteh/jdconv/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📦 NewConvertOperation creates the operation that rewrites every matching
// file under opts.Root
func NewConvertOperation(opts Options) (Operation, error) {
	base, err := NewBaseOperation(opts)
	if err != nil {
		return nil, err
	}
	return &convertOperation{BaseOperation: base}, nil
}

// 📦 convertOperation implements the convert operation
type convertOperation struct {
	BaseOperation
}

// 🏃 Execute discovers the files and converts each of them
func (op *convertOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	files, err := discover.Files(ctx, op.Root, discover.Options{
		Extensions: op.Config.Extensions,
		Ignore:     op.Config.Ignore,
	})
	if err != nil {
		return errors.Errorf("discovering files: %w", err)
	}

	header := fmt.Sprintf("converting %d files in %s", len(files), op.Root)
	if op.Config.DryRun {
		header += " (dry run)"
	}
	op.Logger.Header(header)

	if len(files) == 0 {
		op.Logger.Infof("no %s files found", strings.Join(op.Config.Extensions, ", "))
	}
	if op.Config.DryRun && (op.Config.Backup || op.Config.Atomic) {
		op.Logger.Warningf("backup and atomic writes are skipped on a dry run")
	}

	op.StatusMgr.StartOperation(ctx, len(files))
	defer op.StatusMgr.FinishOperation(ctx)

	runner := NewRunner(logger, op.Config.Jobs)
	runErr := runner.ForEach(ctx, len(files), func(ctx context.Context, i int) error {
		return op.processFile(ctx, files[i])
	})

	summary := op.StatusMgr.Summarize(ctx)
	op.Logger.Summary(log.RunSummary{
		Root:         op.Root,
		Total:        len(files),
		Converted:    summary.Converted,
		Unchanged:    summary.Unchanged,
		Failed:       summary.Failed,
		Replacements: summary.Replacements,
		DryRun:       op.Config.DryRun,
	})

	return runErr
}

// 📄 processFile reads, converts and writes back a single file
func (op *convertOperation) processFile(ctx context.Context, file discover.File) error {
	content, err := op.StatusMgr.ReadFile(ctx, file.RelPath)
	if err != nil {
		return op.fail(ctx, file, err)
	}

	result, err := op.Converter.Convert(ctx, file.RelPath, bytes.NewReader(content))
	if err != nil {
		return op.fail(ctx, file, err)
	}

	info := status.FileInfo{
		Path:         file.RelPath,
		Status:       status.StatusUnchanged,
		Replacements: result.ReplacementCount,
	}

	if result.WasModified {
		info.Status = status.StatusConverted

		if op.Config.DryRun {
			op.Logger.Diff(file.RelPath, lineDiff(string(result.OriginalContent), string(result.ModifiedContent)))
		} else if err := op.StatusMgr.WriteFile(ctx, file.RelPath, result.ModifiedContent); err != nil {
			op.restore(ctx, file)
			return op.fail(ctx, file, err)
		}
	}

	op.StatusMgr.TrackFile(ctx, info)
	op.Logger.LogFileOperation(ctx, log.FileOperation{
		Path:         file.RelPath,
		Status:       info.Status.String(),
		Replacements: info.Replacements,
		IsModified:   result.WasModified,
		DryRun:       op.Config.DryRun,
	})
	op.StatusMgr.UpdateProgress(ctx)

	return nil
}

// ⏪ restore puts the backup back after a failed write, leaving no .bak behind
func (op *convertOperation) restore(ctx context.Context, file discover.File) {
	if !op.Config.Backup {
		return
	}
	if err := op.StatusMgr.RestoreFile(ctx, file.RelPath); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", file.RelPath).Msg("restoring backup after failed write")
		return
	}
	zerolog.Ctx(ctx).Debug().Str("path", file.RelPath).Msg("restored backup after failed write")
}

// ❌ fail records a failed file and wraps err
func (op *convertOperation) fail(ctx context.Context, file discover.File, err error) error {
	op.StatusMgr.TrackFile(ctx, status.FileInfo{
		Path:   file.RelPath,
		Status: status.StatusFailed,
		Error:  err,
	})
	op.Logger.LogFileOperation(ctx, log.FileOperation{
		Path:     file.RelPath,
		Status:   status.StatusFailed.String(),
		IsFailed: true,
		DryRun:   op.Config.DryRun,
	})
	op.StatusMgr.UpdateProgress(ctx)
	op.Logger.Errorf("%s: %v", file.RelPath, err)

	return errors.Errorf("processing %s: %w", file.Path, err)
}
