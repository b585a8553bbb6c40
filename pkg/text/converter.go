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

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Result contains the outcome of converting one file's content
type Result struct {
	// WasModified indicates the converted content differs from the original
	WasModified bool

	// ReplacementCount is the total number of matches replaced across all rules
	ReplacementCount int

	// RuleCounts lists, in rule order, every rule that replaced at least one match
	RuleCounts []RuleCount

	OriginalContent []byte
	ModifiedContent []byte
}

// Converter applies an ordered rule set to file content
type Converter struct {
	rules []compiledRule
}

// NewConverter compiles the given rules in order
func NewConverter(rules []Rule) (*Converter, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}
	return &Converter{rules: compiled}, nil
}

// NewJavadocConverter builds a converter from JavadocRules followed by extra
func NewJavadocConverter(extra ...Rule) (*Converter, error) {
	rules := append(JavadocRules(), extra...)
	return NewConverter(rules)
}

// Rules returns the rules the converter applies, in order
func (c *Converter) Rules() []Rule {
	rules := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		rules = append(rules, r.Rule)
	}
	return rules
}

// Convert reads all of content and applies every rule that applies to path.
// path is the slash-separated path used for FileGlob matching and may be empty.
func (c *Converter) Convert(ctx context.Context, path string, content io.Reader) (*Result, error) {
	original, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &Result{
		OriginalContent: original,
	}

	converted, counts := c.convert(ctx, path, string(original))
	for _, rc := range counts {
		result.ReplacementCount += rc.Count
	}
	result.RuleCounts = counts
	result.ModifiedContent = []byte(converted)
	result.WasModified = converted != string(original)

	return result, nil
}

// ConvertString converts content that is not tied to a file
func (c *Converter) ConvertString(content string) string {
	converted, _ := c.convert(context.Background(), "", content)
	return converted
}

func (c *Converter) convert(ctx context.Context, path string, content string) (string, []RuleCount) {
	logger := zerolog.Ctx(ctx)

	crlf := isCRLF(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var counts []RuleCount
	for _, rule := range c.rules {
		if !rule.appliesTo(path) {
			continue
		}

		matches := len(rule.re.FindAllStringIndex(content, -1))
		if matches == 0 {
			continue
		}

		content = rule.re.ReplaceAllString(content, rule.Replace)
		counts = append(counts, RuleCount{Name: rule.Name, Count: matches})

		logger.Trace().Str("file", path).Str("rule", rule.Name).Int("matches", matches).Msg("applied rule")
	}

	if crlf {
		content = strings.ReplaceAll(content, "\n", "\r\n")
	}

	return content, counts
}

// isCRLF reports whether every line break in content is \r\n
func isCRLF(content string) bool {
	lf := strings.Count(content, "\n")
	return lf > 0 && lf == strings.Count(content, "\r\n")
}
