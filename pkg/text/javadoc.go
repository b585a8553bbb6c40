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

package text

// JavadocRules returns the ordered rules that turn Javadoc comments into C#
// XML doc comments. Later rules expect the open and close markers to already
// be in summary form, and the single {@code} rule expects the paired rule to
// have run first.
func JavadocRules() []Rule {
	return []Rule{
		// /**, /*
		{Name: "doc-open", Pattern: `/\*\*\n`, Replace: "/// <summary>\n"},
		{Name: "block-open", Pattern: `/\*\n`, Replace: "/// <summary>\n"},

		// */
		{Name: "block-close", Pattern: `([ ]+) \*/\n`, Replace: "${1}/// </summary>\n"},

		// /** ... */, /**
		// a one-line doc closes its own summary; the open tag alone would
		// leave "/// <summary> text" with no matching close
		{Name: "inline-doc", Pattern: `([ ]+)/\*\*(.+)\*/\n`, Replace: "${1}/// <summary>${2}</summary>\n"},
		{Name: "doc-open-inline", Pattern: `/\*\* `, Replace: "/// <summary> "},

		// * , *
		{Name: "continuation", Pattern: `([ ]+) \* `, Replace: "${1}/// "},
		{Name: "bare-continuation", Pattern: ` \*\n`, Replace: "///\n"},

		{Name: "code-pair", Pattern: `\{@code ([^}]+)\}(.+)\{@code ([^}]+)\}`, Replace: "<code> ${1}</code>${2}<code> ${3}</code>"},
		{Name: "code", Pattern: `\{@code ([^}]+)\}`, Replace: "<code> ${1}</code>"},

		{Name: "para", Pattern: `<p>`, Replace: "<para />"},

		// no <pre> equivalent, keep the text and drop the tags
		{Name: "pre-open", Pattern: `<pre>`, Replace: ""},
		{Name: "pre-close", Pattern: `</pre>`, Replace: ""},

		{Name: "link", Pattern: `\{@link ([^}]+)\}`, Replace: `<see cref="${1}"/>`},

		{Name: "param", Pattern: `@param ([^ \n]+) (.+)\n`, Replace: "<param name=\"${1}\">${2}</param>\n"},
		{Name: "param-bare", Pattern: `@param ([^ \n]+)\n`, Replace: "<param name=\"${1}\"></param>\n"},
	}
}
