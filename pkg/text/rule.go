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
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Rule is a single regular expression substitution applied to a whole file
type Rule struct {
	// Name identifies the rule in logs and counts
	Name string

	// Pattern is an RE2 regular expression
	Pattern string

	// Replace is a regexp expansion template (${1}, ${2}, ...)
	Replace string

	// FileGlob limits the rule to files whose relative path matches it
	FileGlob string
}

// RuleCount is the number of matches a rule replaced
type RuleCount struct {
	Name  string
	Count int
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// appliesTo reports whether the rule should run for the given relative path
func (r compiledRule) appliesTo(path string) bool {
	if r.FileGlob == "" {
		return true
	}
	if path == "" {
		return false
	}
	ok, err := doublestar.Match(r.FileGlob, path)
	return err == nil && ok
}

// ValidateRules checks that every rule has a pattern that compiles and a valid file glob
func ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.Pattern == "" {
			return errors.Errorf("rule %d (%s): pattern is required", i, rule.Name)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return errors.Errorf("rule %d (%s): compiling pattern: %w", i, rule.Name, err)
		}
		if rule.FileGlob != "" && !doublestar.ValidatePattern(rule.FileGlob) {
			return errors.Errorf("rule %d (%s): invalid file glob %q", i, rule.Name, rule.FileGlob)
		}
	}
	return nil
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		compiled = append(compiled, compiledRule{
			Rule: rule,
			re:   regexp.MustCompile(rule.Pattern),
		})
	}
	return compiled, nil
}
