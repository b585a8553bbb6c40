// Package config loads the optional jdconv configuration file.
//
// 	            +-------------+
// 	            |   Config    |
// 	            +------+------+
// 	                   |
// 	      +------------+------------+
// 	      |            |            |
// 	+-----+----+ +-----+----+ +-----+----+
// 	|   HCL    | |   YAML   | |   JSON   |
// 	+----------+ +----------+ +----------+
//
// The parser is picked from the file extension (.hcl, .yaml/.yml, .json).
// Unknown fields are rejected by all three formats.
//
// Without a config file jdconv converts every .cs file under the root with the
// built-in Javadoc rules, one file at a time, overwriting in place.
//
// 🔍 Example (HCL):
//
// 	extensions = default_extensions
// 	ignore     = ["**/obj/**", "**/bin/**"]
// 	jobs       = 4
//
// 	rule "literal" {
// 	  pattern = "\\{@literal ([^}]+)\\}"
// 	  replace = "<c>$${1}</c>"
// 	  file    = "src/**/*.cs"
// 	}
//
// Note the $$ in replace: a bare ${1} would be read as HCL interpolation.
//
// 🔍 Example (YAML):
//
// 	extensions: [".cs"]
// 	backup: true
// 	rules:
// 	  - name: literal
// 	    pattern: '\{@literal ([^}]+)\}'
// 	    replace: '<c>${1}</c>'
package config
