// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"io"
)

// Option modifies the settings of a logger.
type Option func(s *settings)

// SetLevel sets the minimum level logged, info by default.
func SetLevel(level Level) Option {
	return func(s *settings) {
		s.level = &level
	}
}

// SetCaller sets the caller details appended to each line,
// none by default.
func SetCaller(caller Caller) Option {
	return func(s *settings) {
		s.caller = &caller
	}
}

// SetFormat sets the line format, FormatConsole by default.
func SetFormat(format Format) Option {
	return func(s *settings) {
		s.format = &format
	}
}

// SetWriter sets the destination of the lines, os.Stdout by default.
// Child loggers share the writer of their parent unless set.
func SetWriter(writer io.Writer) Option {
	return func(s *settings) {
		s.writer = writer
	}
}

// AddContext appends a value to the context key, creating the key
// after the existing ones if needed.
func AddContext(key, value string) Option {
	return func(s *settings) {
		for i := range s.context {
			if s.context[i].key == key {
				s.context[i].values = append(s.context[i].values, value)
				return
			}
		}
		s.context = append(s.context, contextKeyValues{key: key, values: []string{value}})
	}
}
