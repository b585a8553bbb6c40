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
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/jdconv/pkg/config"
	"github.com/walteh/jdconv/pkg/log"
	"github.com/walteh/jdconv/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const (
	finderSource = "    /**\n     * Finds {@link Foo.Bar}.\n     * @param id the key\n     */\n    public Bar Find(int id);\n"
	finderWant   = "    /// <summary>\n    /// Finds <see cref=\"Foo.Bar\"/>.\n    /// <param name=\"id\">the key</param>\n    /// </summary>\n    public Bar Find(int id);\n"
	plainSource  = "public class Plain {}\n"
)

// 🧪 testEnv bundles what a convert run needs in a test
type testEnv struct {
	ctx     context.Context
	root    string
	console *bytes.Buffer
	logger  *log.Logger
}

// 🧪 createTestEnv writes files into a temp root and builds a context logger
func createTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()

	color.NoColor = true
	pterm.DisableColor()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	zlog := zerolog.New(zerolog.NewTestWriter(t))
	console := &bytes.Buffer{}

	return &testEnv{
		ctx:     zlog.WithContext(context.Background()),
		root:    root,
		console: console,
		logger:  log.New(console, zlog),
	}
}

func (e *testEnv) read(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(content)
}

func TestConvertOperation(t *testing.T) {
	env := createTestEnv(t, map[string]string{
		"src/Finder.cs": finderSource,
		"src/Plain.cs":  plainSource,
		"src/notes.txt": finderSource,
		"obj/Gen.cs":    finderSource,
		"src/deep/A.cs": "/** Top level. */\n",
	})

	cfg := config.Default()
	cfg.Ignore = []string{"obj/**"}
	mgr := status.New(env.root, status.Options{})

	op, err := NewConvertOperation(Options{
		Root:      env.root,
		Config:    cfg,
		StatusMgr: mgr,
		Logger:    env.logger,
	})
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	assert.Equal(t, finderWant, env.read(t, "src/Finder.cs"))
	assert.Equal(t, plainSource, env.read(t, "src/Plain.cs"))
	assert.Equal(t, "/// <summary> Top level. */\n", env.read(t, "src/deep/A.cs"))
	assert.Equal(t, finderSource, env.read(t, "src/notes.txt"), "other extensions are left alone")
	assert.Equal(t, finderSource, env.read(t, "obj/Gen.cs"), "ignored files are left alone")

	files := mgr.ListFiles(env.ctx)
	require.Len(t, files, 3)
	assert.Equal(t, "src/Finder.cs", files[0].Path)
	assert.Equal(t, status.StatusConverted, files[0].Status)
	assert.Equal(t, 6, files[0].Replacements)
	assert.Equal(t, "src/Plain.cs", files[1].Path)
	assert.Equal(t, status.StatusUnchanged, files[1].Status)
	assert.Equal(t, "src/deep/A.cs", files[2].Path)
	assert.Equal(t, status.StatusConverted, files[2].Status)

	out := env.console.String()
	assert.Contains(t, out, "converting 3 files in "+env.root)
	assert.Contains(t, out, "src/Finder.cs")
	assert.Contains(t, out, "converted 2 of 3 files (7 replacements, 1 unchanged)")
	assert.NotContains(t, out, "obj/Gen.cs")
}

func TestConvertOperation_DryRun(t *testing.T) {
	env := createTestEnv(t, map[string]string{
		"Finder.cs": finderSource,
		"Plain.cs":  plainSource,
	})

	cfg := config.Default()
	cfg.DryRun = true

	op, err := NewConvertOperation(Options{Root: env.root, Config: cfg, Logger: env.logger})
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	assert.Equal(t, finderSource, env.read(t, "Finder.cs"), "dry run must not write")
	assert.Equal(t, plainSource, env.read(t, "Plain.cs"))

	out := env.console.String()
	assert.Contains(t, out, "(dry run)")
	assert.Contains(t, out, "DIFF")
	assert.Contains(t, out, "-    /**\n")
	assert.Contains(t, out, "+    /// <summary>\n")
	assert.NotContains(t, out, "    public Bar Find(int id);", "unchanged lines are not part of the diff")
	assert.Contains(t, out, "would convert 1 of 2 files (6 replacements, 1 unchanged)")
}

func TestConvertOperation_ParallelMatchesSequential(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 25; i++ {
		files[fmt.Sprintf("pkg%d/File%d.cs", i%4, i)] = finderSource
		files[fmt.Sprintf("pkg%d/Plain%d.cs", i%4, i)] = plainSource
	}

	seq := createTestEnv(t, files)
	par := createTestEnv(t, files)

	for _, run := range []struct {
		env  *testEnv
		jobs int
	}{{seq, 1}, {par, 8}} {
		cfg := config.Default()
		cfg.Jobs = run.jobs
		op, err := NewConvertOperation(Options{Root: run.env.root, Config: cfg, Logger: run.env.logger})
		require.NoError(t, err)
		require.NoError(t, op.Execute(run.env.ctx), "jobs=%d", run.jobs)
	}

	for name := range files {
		assert.Equal(t, seq.read(t, name), par.read(t, name), "file %s", name)
	}
	assert.Equal(t, finderWant, par.read(t, "pkg0/File0.cs"))
}

func TestConvertOperation_WriteModes(t *testing.T) {
	tests := []struct {
		name       string
		atomic     bool
		backup     bool
		wantBackup bool
	}{
		{name: "in_place"},
		{name: "atomic", atomic: true},
		{name: "backup", backup: true, wantBackup: true},
		{name: "atomic_backup", atomic: true, backup: true, wantBackup: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := createTestEnv(t, map[string]string{"Finder.cs": finderSource})

			cfg := config.Default()
			cfg.Atomic = tt.atomic
			cfg.Backup = tt.backup

			op, err := NewConvertOperation(Options{Root: env.root, Config: cfg, Logger: env.logger})
			require.NoError(t, err)
			require.NoError(t, op.Execute(env.ctx))

			assert.Equal(t, finderWant, env.read(t, "Finder.cs"))

			_, err = os.Stat(filepath.Join(env.root, "Finder.cs.bak"))
			if tt.wantBackup {
				require.NoError(t, err)
				assert.Equal(t, finderSource, env.read(t, "Finder.cs.bak"))
			} else {
				assert.True(t, os.IsNotExist(err), "no backup expected")
			}
		})
	}
}

func TestConvertOperation_ExtraRulesAndCRLF(t *testing.T) {
	env := createTestEnv(t, map[string]string{
		"Lit.cs":    "    /**\r\n     * Returns {@literal null}.\r\n     */\r\n",
		"Lit.java":  "// {@literal null}\n",
		"other.txt": "{@literal null}\n",
	})

	cfg := config.Default()
	cfg.Extensions = []string{".cs", ".java"}
	cfg.Rules = []config.Rule{{
		Name:    "literal",
		Pattern: `\{@literal ([^}]+)\}`,
		Replace: "<c>${1}</c>",
		File:    "**/*.cs",
	}}

	op, err := NewConvertOperation(Options{Root: env.root, Config: cfg, Logger: env.logger})
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	assert.Equal(t, "    /// <summary>\r\n    /// Returns <c>null</c>.\r\n    /// </summary>\r\n", env.read(t, "Lit.cs"))
	assert.Equal(t, "// {@literal null}\n", env.read(t, "Lit.java"), "rule glob limits the extra rule to .cs files")
	assert.Equal(t, "{@literal null}\n", env.read(t, "other.txt"))
}

func TestConvertOperation_NoFiles(t *testing.T) {
	env := createTestEnv(t, map[string]string{"README.md": "/** docs */\n"})

	cfg := config.Default()
	cfg.DryRun = true
	cfg.Backup = true

	op, err := NewConvertOperation(Options{Root: env.root, Config: cfg, Logger: env.logger})
	require.NoError(t, err)
	require.NoError(t, op.Execute(env.ctx))

	out := env.console.String()
	assert.Contains(t, out, "no .cs files found")
	assert.Contains(t, out, "backup and atomic writes are skipped on a dry run")
	assert.Contains(t, out, "would convert 0 of 0 files")
}

func TestConvertOperation_Errors(t *testing.T) {
	t.Run("missing_root", func(t *testing.T) {
		env := createTestEnv(t, nil)
		op, err := NewConvertOperation(Options{Root: filepath.Join(env.root, "nope"), Logger: env.logger})
		require.NoError(t, err)

		err = op.Execute(env.ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "discovering files")
		assert.Empty(t, env.console.String(), "nothing is printed before discovery succeeds")
	})

	t.Run("empty_root", func(t *testing.T) {
		_, err := NewConvertOperation(Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root is required")
	})

	t.Run("invalid_config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Jobs = -2
		_, err := NewConvertOperation(Options{Root: t.TempDir(), Config: cfg})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jobs must not be negative")
	})
}

// 🔧 failingStatus wraps a real manager and fails writes on demand
type failingStatus struct {
	*status.Manager
	mock.Mock
}

func (f *failingStatus) WriteFile(ctx context.Context, path string, content []byte) error {
	args := f.Called(path)
	if err := args.Error(0); err != nil {
		return err
	}
	return f.Manager.WriteFile(ctx, path, content)
}

// 🔧 truncatingWrite backs up and clobbers the file the way an interrupted write would
func truncatingWrite(t *testing.T, f *failingStatus, root string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		path := args.String(0)
		require.NoError(t, f.BackupFile(context.Background(), path))
		require.NoError(t, os.WriteFile(filepath.Join(root, path), []byte("    /// <sum"), 0644))
	}
}

func TestConvertOperation_WriteFailureAborts(t *testing.T) {
	env := createTestEnv(t, map[string]string{
		"A.cs": finderSource,
		"B.cs": finderSource,
	})

	diskFull := errors.New("disk full")
	mgr := &failingStatus{Manager: status.New(env.root, status.Options{})}
	mgr.On("WriteFile", "A.cs").Return(diskFull).Once()

	op, err := NewConvertOperation(Options{Root: env.root, StatusMgr: mgr, Logger: env.logger})
	require.NoError(t, err)

	err = op.Execute(env.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "processing "+filepath.Join(env.root, "A.cs"))

	mgr.AssertExpectations(t)
	mgr.AssertNotCalled(t, "WriteFile", "B.cs")

	info, err := mgr.GetFileInfo(env.ctx, "A.cs")
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, info.Status)
	assert.ErrorIs(t, info.Error, diskFull)

	_, err = mgr.GetFileInfo(env.ctx, "B.cs")
	assert.Error(t, err, "B.cs should never be processed")

	assert.Equal(t, finderSource, env.read(t, "A.cs"))
	assert.Equal(t, finderSource, env.read(t, "B.cs"))
	assert.Contains(t, env.console.String(), "A.cs: disk full")
	assert.Contains(t, env.console.String(), "converted 0 of 2 files (0 replacements, 0 unchanged), 1 failed")
}

func TestLineDiff(t *testing.T) {
	before := "/**\n * Foo\n */\nclass A {}\n"
	after := "/// <summary>\n/// Foo\n/// </summary>\nclass A {}\n"

	diff := lineDiff(before, after)
	for _, want := range []string{"-/**\n", "- * Foo\n", "- */\n", "+/// <summary>\n", "+/// Foo\n", "+/// </summary>\n"} {
		assert.Contains(t, diff, want)
	}
	assert.NotContains(t, diff, "class A")
	assert.Empty(t, lineDiff(before, before))
}

func TestConvertOperation_WriteFailureRestoresBackup(t *testing.T) {
	diskFull := errors.New("disk full")

	t.Run("backup_restored", func(t *testing.T) {
		env := createTestEnv(t, map[string]string{"A.cs": finderSource})

		cfg := config.Default()
		cfg.Backup = true
		mgr := &failingStatus{Manager: status.New(env.root, status.Options{Backup: true})}
		mgr.On("WriteFile", "A.cs").Return(diskFull).Run(truncatingWrite(t, mgr, env.root)).Once()

		op, err := NewConvertOperation(Options{Root: env.root, Config: cfg, StatusMgr: mgr, Logger: env.logger})
		require.NoError(t, err)

		err = op.Execute(env.ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, diskFull)
		mgr.AssertExpectations(t)

		assert.Equal(t, finderSource, env.read(t, "A.cs"), "original content is restored")
		_, err = os.Stat(filepath.Join(env.root, "A.cs.bak"))
		assert.True(t, os.IsNotExist(err), "backup is consumed by the restore")
	})

	t.Run("missing_backup_keeps_write_error", func(t *testing.T) {
		env := createTestEnv(t, map[string]string{"A.cs": finderSource})

		cfg := config.Default()
		cfg.Backup = true
		mgr := &failingStatus{Manager: status.New(env.root, status.Options{Backup: true})}
		mgr.On("WriteFile", "A.cs").Return(diskFull).Once()

		op, err := NewConvertOperation(Options{Root: env.root, Config: cfg, StatusMgr: mgr, Logger: env.logger})
		require.NoError(t, err)

		err = op.Execute(env.ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, diskFull)
		assert.NotContains(t, err.Error(), "backup file does not exist")
		assert.Equal(t, finderSource, env.read(t, "A.cs"))
	})
}
