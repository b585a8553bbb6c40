/*
Package status writes converted files back to disk and tracks what happened to each one.

	      +-------------+
	      |   Manager   |
	      +------+------+
	             |
	   +---------+---------+
	   |                   |
	+--+--------+     +----+-----+
	| FileManager|    | Reporter |
	| (read/write|    | (status, |
	|  backup)   |    | progress)|
	+------------+    +----------+

🎯 Purpose:
  - Read a file, and overwrite it at the same path with its converted content
  - Optionally write through a temp file and rename (Options.Atomic)
  - Optionally keep a copy of the original as <path>.bak (Options.Backup)
  - Track a FileStatus per file and summarize a run

The default write is a plain in-place overwrite. A crash in the middle of it
can leave a truncated file; use Options.Atomic when that matters.

🔍 Example:

	mgr := status.New(root, status.Options{Backup: true})

	content, err := mgr.ReadFile(ctx, "src/Foo.cs")
	// ...convert...
	err = mgr.WriteFile(ctx, "src/Foo.cs", converted)

	mgr.TrackFile(ctx, status.FileInfo{Path: "src/Foo.cs", Status: status.StatusConverted})
	summary := mgr.Summarize(ctx)
*/
package status
