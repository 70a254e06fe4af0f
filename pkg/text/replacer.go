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

	"gitlab.com/tozd/go/errors"
)

// 🔄 ReplacementRule is a single pattern-driven rewrite over a text buffer.
//
// Exactly one of Template or Func produces the replacement. Template is expanded
// with regexp.Expand semantics (${1}, ${name}); Func is called once per match
// when the substitution depends on what was captured.
type ReplacementRule struct {
	// Name identifies the rule in results and logs
	Name string

	// Pattern is the trigger
	Pattern *regexp.Regexp

	// Template is the static replacement
	Template string

	// Func computes the replacement from the match
	Func func(m Match) string

	// Limit caps the number of leftmost matches replaced, <= 0 replaces all
	Limit int
}

// 🎯 Match is one occurrence of a rule's pattern in the source text
type Match struct {
	re  *regexp.Regexp
	src string
	idx []int
}

// Text returns the whole match.
func (m Match) Text() string {
	return m.src[m.idx[0]:m.idx[1]]
}

// Group returns capture group i, or "" when the group did not take part in the match.
func (m Match) Group(i int) string {
	if !m.Has(i) {
		return ""
	}
	return m.src[m.idx[2*i]:m.idx[2*i+1]]
}

// Has reports whether capture group i took part in the match.
func (m Match) Has(i int) bool {
	if i < 0 || 2*i+1 >= len(m.idx) {
		return false
	}
	return m.idx[2*i] >= 0
}

// Named returns the named capture group, or "" when it is absent.
func (m Match) Named(name string) string {
	i := m.re.SubexpIndex(name)
	if i < 0 {
		return ""
	}
	return m.Group(i)
}

// Apply runs the rule over content and returns the new content and the number of matches replaced.
func (r ReplacementRule) Apply(content string) (string, int) {
	if r.Pattern == nil {
		return content, 0
	}

	n := -1
	if r.Limit > 0 {
		n = r.Limit
	}

	matches := r.Pattern.FindAllStringSubmatchIndex(content, n)
	if len(matches) == 0 {
		return content, 0
	}

	out := make([]byte, 0, len(content))
	last := 0
	for _, idx := range matches {
		out = append(out, content[last:idx[0]]...)
		if r.Func != nil {
			out = append(out, r.Func(Match{re: r.Pattern, src: content, idx: idx})...)
		} else {
			out = r.Pattern.ExpandString(out, r.Template, content, idx)
		}
		last = idx[1]
	}
	out = append(out, content[last:]...)

	return string(out), len(matches)
}

// ValidateRules checks that every rule has a pattern and at most one way to build its replacement.
func ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.Pattern == nil {
			return errors.Errorf("rule %d (%s): pattern is required", i, rule.Name)
		}
		if rule.Func != nil && rule.Template != "" {
			return errors.Errorf("rule %d (%s): template and func are mutually exclusive", i, rule.Name)
		}
	}
	return nil
}
