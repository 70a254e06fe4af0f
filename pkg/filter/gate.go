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
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/phpdoxfilter/pkg/config"
)

// 🚦 SkipReason categorizes why a file was excluded
type SkipReason string

const (
	SkipLocalization SkipReason = "localization"
	SkipCLIScript    SkipReason = "cli-script"
	SkipFrontEnd     SkipReason = "front-end"
	SkipExcluded     SkipReason = "excluded"
)

// Skip describes a rejected file.
type Skip struct {
	Reason  SkipReason
	Message string
}

// Gatekeeper decides whether a file is worth rewriting at all.
type Gatekeeper struct {
	localization *regexp.Regexp
	cliScript    *regexp.Regexp
	frontEnd     *regexp.Regexp
	excludes     []string
	cliConstant  string
}

// NewGatekeeper builds the predicates from cfg.
func NewGatekeeper(cfg *config.Config) *Gatekeeper {
	return &Gatekeeper{
		localization: regexp.MustCompile(`/` + regexp.QuoteMeta(cfg.LocalizationDir) + `/[a-z_]*/`),
		cliScript:    regexp.MustCompile(`define.*?` + regexp.QuoteMeta(cfg.CLIConstant) + `.*?true`),
		frontEnd:     regexp.MustCompile(`(?m)^[ \t]*require(?:_once)?\b[^\n]*?[/'"]` + regexp.QuoteMeta(cfg.ConfigModule)),
		excludes:     cfg.ExcludePatterns,
		cliConstant:  cfg.CLIConstant,
	}
}

// Check returns the first predicate that rejects the file, or nil when it is eligible.
// Predicates are evaluated in priority order: localization, CLI script, front-end
// script, then configured exclusions.
func (g *Gatekeeper) Check(path, text string) *Skip {
	slashed := filepath.ToSlash(path)

	if g.localization.MatchString(rooted(slashed)) {
		return &Skip{Reason: SkipLocalization, Message: "skipping lang file. Not suitable for APIs"}
	}

	if g.cliScript.MatchString(text) {
		return &Skip{Reason: SkipCLIScript, Message: fmt.Sprintf("skipping %s. Not suitable for APIs", g.cliConstant)}
	}

	if g.frontEnd.MatchString(text) {
		return &Skip{Reason: SkipFrontEnd, Message: "skipping front-end script. Not suitable for APIs"}
	}

	for _, pattern := range g.excludes {
		// patterns are validated by config.Validate, a bad one simply never matches
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return &Skip{Reason: SkipExcluded, Message: fmt.Sprintf("skipping excluded file (matches %s)", pattern)}
		}
	}

	return nil
}

// rooted makes a relative path start with a separator so its first segment can match.
func rooted(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
