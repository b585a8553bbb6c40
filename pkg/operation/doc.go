/*
Package operation implements the convert run over a source tree.

	+-------------+
	|  discover   |
	| (walk root) |
	+------+------+
	       |
	+------+------+
	|    text     |
	|  (convert)  |
	+------+------+
	       |
	+------+------+
	|   status    |
	| (write/log) |
	+------+------+

🔄 Flow:
1. Collect the matching files under the root
2. Convert each file with the ordered rule set
3. Write changed files back through the status manager (or print a diff on a dry run)
4. Print one line per file and a final summary

Files are handled one at a time unless Config.Jobs is above 1, in which case
a bounded errgroup processes them in parallel. Either way the first error
stops the run and is returned.

🔍 Example:

	op, err := operation.NewConvertOperation(operation.Options{Root: dir})
	if err != nil {
		return err
	}
	err = op.Execute(ctx)
*/
package operation
