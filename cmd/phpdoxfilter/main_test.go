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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libSource = `<?php
/**
 * Library.
 *
 * @file
 */

/**
 * Count things.
 * @return int
 */
function count_things() {}
`

func disableColor(t *testing.T) {
	t.Helper()
	color.NoColor = true
	pterm.DisableStyling()
	t.Cleanup(func() {
		color.NoColor = false
		pterm.EnableStyling()
	})
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating dir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing file")
	return path
}

func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), code
}

func TestRootCmd_Filter(t *testing.T) {
	disableColor(t)
	dir := t.TempDir()
	lib := writeFile(t, filepath.Join(dir, "lib", "things.php"), libSource)

	stdout, stderr, code := execute(t, lib)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Equal(t, strings.Replace(libSource, "@return", "@retval", 1), stdout)
}

func TestRootCmd_Skips(t *testing.T) {
	disableColor(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		content string
		notice  string
	}{
		{
			name:    "localization_file",
			path:    filepath.Join(dir, "lang", "en", "moodle.php"),
			content: libSource,
			notice:  "skipping lang file. Not suitable for APIs",
		},
		{
			name:    "cli_script",
			path:    filepath.Join(dir, "admin", "cli", "cron.php"),
			content: "<?php\ndefine('CLI_SCRIPT', true);\n",
			notice:  "skipping CLI_SCRIPT. Not suitable for APIs",
		},
		{
			name:    "front_end_script",
			path:    filepath.Join(dir, "index.php"),
			content: "<?php\nrequire_once(__DIR__ . '/config.php');\n",
			notice:  "skipping front-end script. Not suitable for APIs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeFile(t, tt.path, tt.content)

			stdout, stderr, code := execute(t, tt.path)

			assert.Equal(t, 0, code, "skips are not errors")
			assert.Empty(t, stdout)
			assert.Equal(t, tt.path+":0: notice: "+tt.notice+"\n", stderr)
		})
	}
}

func TestRootCmd_Config(t *testing.T) {
	disableColor(t)
	dir := t.TempDir()
	lib := writeFile(t, filepath.Join(dir, "lib", "things.php"), libSource)

	t.Run("disabled_rule", func(t *testing.T) {
		cfg := writeFile(t, filepath.Join(dir, "filter.yaml"), "disabled_rules:\n  - retval\n")

		stdout, _, code := execute(t, "--config", cfg, lib)

		assert.Equal(t, 0, code)
		assert.Equal(t, libSource, stdout)
	})

	t.Run("excluded_path", func(t *testing.T) {
		pattern := filepath.ToSlash(dir) + "/lib/*.php"
		cfg := writeFile(t, filepath.Join(dir, "filter.json"), `{"exclude_patterns": ["`+pattern+`"]}`)

		stdout, stderr, code := execute(t, "-c", cfg, lib)

		assert.Equal(t, 0, code)
		assert.Empty(t, stdout)
		assert.Equal(t, lib+":0: notice: skipping excluded file (matches "+pattern+")\n", stderr)
	})

	t.Run("invalid_config", func(t *testing.T) {
		cfg := writeFile(t, filepath.Join(dir, "bad.yaml"), "disabled_rules:\n  - nope\n")

		stdout, stderr, code := execute(t, "--config", cfg, lib)

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "unknown rule")
	})
}

func TestRootCmd_Errors(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{
			name:        "missing_file",
			args:        []string{filepath.Join(t.TempDir(), "missing.php")},
			errContains: "reading",
		},
		{
			name:        "no_arguments",
			args:        []string{},
			errContains: "accepts 1 arg",
		},
		{
			name:        "too_many_arguments",
			args:        []string{"a.php", "b.php"},
			errContains: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := execute(t, tt.args...)

			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.errContains)
		})
	}
}

func TestRootCmd_Debug(t *testing.T) {
	disableColor(t)
	dir := t.TempDir()
	lib := writeFile(t, filepath.Join(dir, "lib", "things.php"), libSource)

	stdout, stderr, code := execute(t, "--debug", lib)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "@retval int")
	assert.Contains(t, stderr, "rule applied")
	assert.Contains(t, stderr, "rule=retval")
}

func TestExplainCmd(t *testing.T) {
	disableColor(t)
	dir := t.TempDir()
	lib := writeFile(t, filepath.Join(dir, "lib", "things.php"), libSource)
	lang := writeFile(t, filepath.Join(dir, "lang", "en", "things.php"), libSource)

	stdout, _, code := execute(t, "explain", "--jobs", "2", lib, lang)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "explaining 2 files")
	assert.Contains(t, stdout, "retval")
	assert.Contains(t, stdout, "skipping lang file")
	assert.Contains(t, stdout, "2 files, 1 skipped, 0 failed")

	// reports follow argument order
	assert.Less(t, strings.Index(stdout, lib), strings.Index(stdout, lang))
}

func TestExplainCmd_MissingFile(t *testing.T) {
	disableColor(t)
	dir := t.TempDir()
	lib := writeFile(t, filepath.Join(dir, "lib", "things.php"), libSource)

	stdout, stderr, code := execute(t, "explain", lib, filepath.Join(dir, "missing.php"))

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "2 files, 0 skipped, 1 failed")
	assert.Contains(t, stderr, "1 of 2 files could not be read")
}

func TestVersionCmd(t *testing.T) {
	stdout, _, code := execute(t, "version")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "phpdoxfilter version info")
	assert.Contains(t, stdout, "Go:")
}

func TestFormatVersion(t *testing.T) {
	out := FormatVersion(&VersionInfo{
		Version:   "v1.2.3",
		GoVersion: "go1.23.5",
		Platform:  "linux/amd64",
		Revision:  "abc123",
		Time:      "2025-01-01T00:00:00Z",
		Modified:  true,
	})

	assert.Equal(t, `🚀 phpdoxfilter version info:
Version:   v1.2.3
Revision:  abc123 (modified)
Built:     2025-01-01T00:00:00Z
Go:        go1.23.5
Platform:  linux/amd64
`, out)
}
