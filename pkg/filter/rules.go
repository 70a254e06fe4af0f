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
	"regexp"
	"strings"

	"github.com/walteh/phpdoxfilter/pkg/config"
	"github.com/walteh/phpdoxfilter/pkg/text"
)

// Buffer is the text of one file as it moves through the pipeline.
type Buffer struct {
	Path string
	Text string
}

// 🧩 Rule is a single rewrite step. Apply rewrites buf in place and returns
// the number of rewrites made, zero when its trigger is absent.
type Rule interface {
	Name() string
	Apply(buf *Buffer) int
}

// Rule names, in pipeline order.
const (
	RuleFileTag        = "file-tag"
	RuleStripName      = "strip-name"
	RuleVarType        = "var-type"
	RuleRetval         = "retval"
	RuleNamespace      = "namespace"
	RuleStripBackslash = "strip-backslash"
	RuleCommentScope   = "comment-scope"
	RuleFileGroup      = "file-group"
	RuleIngroup        = "ingroup"
	RuleAccess         = "access"
	RuleTracker        = "tracker"
	RuleExternalURL    = "externalurl"
	RuleInlineLink     = "inline-link"
	RuleTrait          = "trait"
)

var (
	docBlock   = regexp.MustCompile(`(?s)/\*\*.*?\*/`)
	fileTag    = regexp.MustCompile(`@file\b`)
	packageTag = regexp.MustCompile(`@package[ \t]+([^\n]*?)[ \t]*(?:\*/|\n|$)`)
	phpOpen    = regexp.MustCompile(`(?m)^<\?php[^\n]*(?:\n|$)`)
	urlTarget  = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*://|mailto:)`)

	// @var/@global type description */ [modifiers] $name...;
	varAnnotation = regexp.MustCompile(`@(?:var|global)\s+(?P<type>[^\s*]\S*)(?P<lead>\s+)(?P<desc>(?:[^*]|\*+[^*/])*?)(?P<close>\*+/\s+)(?P<mods>(?:(?:var|global|public|protected|private|static|readonly)\s+)*)(?P<decl>\$[^;]+;)`)
)

// DefaultRules returns the full rule set in pipeline order.
func DefaultRules(cfg *config.Config) []Rule {
	return []Rule{
		fileTagRule{},
		regexpRule{text.ReplacementRule{
			Name:    RuleStripName,
			Pattern: regexp.MustCompile(`@name\b[^\n]*`),
		}},
		regexpRule{text.ReplacementRule{
			Name:     RuleVarType,
			Pattern:  varAnnotation,
			Template: "${lead}${desc}${close}${mods}${type} ${decl}",
		}},
		regexpRule{text.ReplacementRule{
			Name:     RuleRetval,
			Pattern:  regexp.MustCompile(`@return(\s+)`),
			Template: "@retval${1}",
		}},
		regexpRule{text.ReplacementRule{
			Name:    RuleNamespace,
			Pattern: regexp.MustCompile(`\bnamespace[ \t]+([^;\n]+?)[ \t]*;`),
			Func: func(m text.Match) string {
				return m.Text() + " /** @namespace " + scoped(m.Group(1)) + " &nbsp;*/"
			},
		}},
		regexpRule{text.ReplacementRule{
			Name:     RuleStripBackslash,
			Pattern:  regexp.MustCompile(`(\s+|\|)\\`),
			Template: "${1}",
		}},
		regexpRule{text.ReplacementRule{
			Name:    RuleCommentScope,
			Pattern: regexp.MustCompile(`(//|\*)([^\n\\]*)(\\[^\n]*)`),
			Func: func(m text.Match) string {
				return m.Group(1) + m.Group(2) + scoped(m.Group(3))
			},
		}},
		fileGroupRule{},
		regexpRule{text.ReplacementRule{
			Name:     RuleIngroup,
			Pattern:  regexp.MustCompile(`@package[ \t]+([^\n]*)`),
			Template: "@ingroup ${1}",
		}},
		regexpRule{text.ReplacementRule{
			Name:     RuleAccess,
			Pattern:  regexp.MustCompile(`@access\s+(private|protected|public)\b`),
			Template: "@${1}",
		}},
		trackerRule(cfg),
		regexpRule{text.ReplacementRule{
			Name:     RuleExternalURL,
			Pattern:  regexp.MustCompile(`(\*\s+)@link(\s+\S+)`),
			Template: "${1}@externalurl${2}",
		}},
		regexpRule{text.ReplacementRule{
			Name:    RuleInlineLink,
			Pattern: regexp.MustCompile(`\{@link[ \t]+([^\s}]+)(?:[ \t]+([^}\n]*?))?[ \t]*\}`),
			Func:    inlineLink,
		}},
		regexpRule{text.ReplacementRule{
			Name:     RuleTrait,
			Pattern:  regexp.MustCompile(`(?m)^([ \t]*)trait\s+(\S+\s*)\{`),
			Template: "${1}interface trait_${2}{",
		}},
	}
}

// regexpRule adapts a plain pattern replacement to the Rule interface.
type regexpRule struct {
	rule text.ReplacementRule
}

func (r regexpRule) Name() string { return r.rule.Name }

func (r regexpRule) Apply(buf *Buffer) int {
	out, n := r.rule.Apply(buf.Text)
	buf.Text = out
	return n
}

// fileTagRule attributes global-scope content to the file by adding @file to the
// first doc block, unless that block already carries one. The tag goes at the end
// of the opening line, or straight after the opener when the block is a one-liner.
type fileTagRule struct{}

func (fileTagRule) Name() string { return RuleFileTag }

func (fileTagRule) Apply(buf *Buffer) int {
	loc := docBlock.FindStringIndex(buf.Text)
	if loc == nil {
		return 0
	}
	block := buf.Text[loc[0]:loc[1]]
	if fileTag.MatchString(block) {
		return 0
	}

	tag := " @file " + buf.Path
	at := loc[0] + len("/**")
	if nl := strings.IndexByte(block, '\n'); nl >= 0 {
		at = loc[0] + nl
	} else if !strings.HasPrefix(buf.Text[at:], " ") {
		tag += " "
	}

	buf.Text = buf.Text[:at] + tag + buf.Text[at:]
	return 1
}

// fileGroupRule wraps the whole file in an @addtogroup keyed by the @package of
// the file doc block, then drops that @package so the file is not grouped twice.
type fileGroupRule struct{}

func (fileGroupRule) Name() string { return RuleFileGroup }

func (fileGroupRule) Apply(buf *Buffer) int {
	src := buf.Text

	var block []int
	for _, loc := range docBlock.FindAllStringIndex(src, -1) {
		if fileTag.MatchString(src[loc[0]:loc[1]]) {
			block = loc
			break
		}
	}
	if block == nil {
		return 0
	}

	m := packageTag.FindStringSubmatchIndex(src[block[0]:block[1]])
	if m == nil {
		return 0
	}
	pkg := strings.TrimSpace(src[block[0]+m[2] : block[0]+m[3]])
	if pkg == "" {
		return 0
	}

	// drop "@package <value>" but keep the line and the block terminator
	src = src[:block[0]+m[0]] + src[block[0]+m[3]:]

	begin := fmt.Sprintf("/** @addtogroup %s %s\n * @{\n */\n", pkg, pkg)
	if loc := phpOpen.FindStringIndex(src); loc != nil {
		opener := src[loc[0]:loc[1]]
		if !strings.HasSuffix(opener, "\n") {
			opener += "\n"
		}
		src = src[:loc[0]] + opener + begin + src[loc[1]:]
	} else {
		src = begin + src
	}

	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	buf.Text = src + "/** @} */\n"
	return 1
}

// trackerRule links issue tracker codes that are not already part of a URL path.
func trackerRule(cfg *config.Config) Rule {
	keys := cfg.TrackerPrefixes
	if len(keys) == 0 {
		keys = config.DefaultTrackerPrefixes
	}
	prefixes := make([]string, len(keys))
	for i, p := range keys {
		prefixes[i] = regexp.QuoteMeta(p)
	}
	url := cfg.TrackerURL

	return regexpRule{text.ReplacementRule{
		Name:    RuleTracker,
		Pattern: regexp.MustCompile(`([^/])((?:` + strings.Join(prefixes, "|") + `)-\d+)\b`),
		Func: func(m text.Match) string {
			code := m.Group(2)
			return m.Group(1) + `<a class="el" href="` + url + code + `">` + code + `</a>`
		},
	}}
}

// inlineLink renders {@link target label} as an HTML anchor for URLs and as a
// Doxygen @link ... @endlink pair for symbol references.
func inlineLink(m text.Match) string {
	target := m.Group(1)
	label := strings.TrimSpace(m.Group(2))

	if urlTarget.MatchString(target) {
		if label == "" {
			label = target
		}
		return `<a class="el externalurl" href="` + target + `">` + label + `</a>`
	}

	if label == "" {
		return "@link " + target + " @endlink"
	}
	return "@link " + target + " " + label + " @endlink"
}

// scoped turns a PHP namespace path into Doxygen's scope notation.
func scoped(s string) string {
	return strings.ReplaceAll(s, `\`, "::")
}
