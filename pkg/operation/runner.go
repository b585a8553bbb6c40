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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner executes one task per index, sequentially or with bounded parallelism
type Runner struct {
	logger *zerolog.Logger
	jobs   int
}

// 🏗️ NewRunner creates a new runner. jobs <= 1 runs tasks one after another.
func NewRunner(logger *zerolog.Logger, jobs int) *Runner {
	if jobs < 1 {
		jobs = 1
	}
	return &Runner{
		logger: logger,
		jobs:   jobs,
	}
}

// 🏃 ForEach calls fn for every index in [0, n). The first error stops the run
// and is returned.
func (r *Runner) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if r.jobs == 1 {
		return r.runSync(ctx, n, fn)
	}
	return r.runAsync(ctx, n, fn)
}

// 🔄 runSync runs tasks in index order
func (r *Runner) runSync(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	r.logger.Debug().Int("tasks", n).Msg("running sequentially")

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("operation cancelled: %w", err)
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// ⚡ runAsync runs up to r.jobs tasks at once; the first failure cancels the rest
func (r *Runner) runAsync(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	r.logger.Debug().Int("tasks", n).Int("jobs", r.jobs).Msg("running in parallel")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Errorf("operation cancelled: %w", err)
	}
	return nil
}
