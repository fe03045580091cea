// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"regexp"
	"strconv"
)

// logSettingKey identifies one of the log-related TOML keys that
// updateLogSettingsInTOML rewrites in place.
type logSettingKey struct {
	key   string
	value string
}

var logSettingKeyPattern = func(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*#?[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=.*$`)
}

// updateLogSettingsInTOML rewrites logLevel, logPath, logMaxSize and
// logMaxBackups in content, in place, whether they currently appear live
// or commented out. It never appends a new section: every key is expected
// to already exist somewhere in content (as shipped by the default
// generated config), and only its value line is replaced. This keeps a
// user's surrounding comments and section ordering untouched.
//
// Called from Config.SetLogSettings, the persistence half of the
// `wikiprism config set-log` command.
func updateLogSettingsInTOML(content string, logLevel string, logPath string, maxSize int, maxBackups int) string {
	settings := []logSettingKey{
		{key: "logLevel", value: fmt.Sprintf("logLevel = %q", logLevel)},
		{key: "logPath", value: fmt.Sprintf("logPath = %q", logPath)},
		{key: "logMaxSize", value: "logMaxSize = " + strconv.Itoa(maxSize)},
		{key: "logMaxBackups", value: "logMaxBackups = " + strconv.Itoa(maxBackups)},
	}

	for _, setting := range settings {
		pattern := logSettingKeyPattern(setting.key)
		if pattern.MatchString(content) {
			content = pattern.ReplaceAllString(content, setting.value)
		}
	}

	return content
}
