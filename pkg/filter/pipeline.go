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

package filter

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/phpdoxfilter/pkg/config"
	"github.com/walteh/phpdoxfilter/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// RuleHit records how many rewrites a rule made.
type RuleHit struct {
	Rule  string
	Count int
}

// 📄 Result is the outcome of filtering one file
type Result struct {
	Path    string
	Text    string
	Skipped *Skip
	Hits    []RuleHit
}

// Filter is the gatekeeper plus the ordered rule set.
type Filter struct {
	gate  *Gatekeeper
	rules []Rule
}

// New builds a Filter from cfg, which must come from config.Default or
// config.LoadConfig. A nil cfg means the defaults.
func New(cfg *config.Config) (*Filter, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	all := DefaultRules(cfg)

	var patterns []text.ReplacementRule
	known := make(map[string]bool, len(all))
	for _, r := range all {
		known[r.Name()] = true
		if rr, ok := r.(regexpRule); ok {
			patterns = append(patterns, rr.rule)
		}
	}
	if err := text.ValidateRules(patterns); err != nil {
		return nil, errors.Errorf("building rules: %w", err)
	}

	for _, name := range cfg.DisabledRules {
		if !known[name] {
			return nil, errors.Errorf("disabled_rules: unknown rule %q", name)
		}
	}

	rules := make([]Rule, 0, len(all))
	for _, r := range all {
		if !cfg.IsRuleDisabled(r.Name()) {
			rules = append(rules, r)
		}
	}

	return &Filter{
		gate:  NewGatekeeper(cfg),
		rules: rules,
	}, nil
}

// Rules returns the names of the active rules in the order they run.
func (f *Filter) Rules() []string {
	names := make([]string, len(f.rules))
	for i, r := range f.rules {
		names[i] = r.Name()
	}
	return names
}

// Run filters one file. A skipped file has an empty Text and a non-nil Skipped.
func (f *Filter) Run(ctx context.Context, path, content string) *Result {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()

	if skip := f.gate.Check(path, content); skip != nil {
		logger.Debug().Str("reason", string(skip.Reason)).Msg("file skipped")
		return &Result{Path: path, Skipped: skip}
	}

	buf := &Buffer{Path: path, Text: content}
	result := &Result{Path: path}
	for _, rule := range f.rules {
		n := rule.Apply(buf)
		if n == 0 {
			continue
		}
		result.Hits = append(result.Hits, RuleHit{Rule: rule.Name(), Count: n})
		logger.Debug().Str("rule", rule.Name()).Int("hits", n).Msg("rule applied")
	}

	result.Text = buf.Text
	return result
}
