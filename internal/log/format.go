// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"errors"
	"fmt"
)

// Format is the format of the log lines.
type Format uint8

const (
	// FormatConsole writes plain text lines.
	FormatConsole Format = iota
	// FormatColoured writes text lines with the level coloured.
	FormatColoured
)

// ErrFormatNotValid is returned when parsing an unknown format.
var ErrFormatNotValid = errors.New("log format is not valid")

// ParseFormat parses console or coloured.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "console":
		return FormatConsole, nil
	case "coloured", "colored":
		return FormatColoured, nil
	default:
		return FormatConsole, fmt.Errorf("%w: %s", ErrFormatNotValid, s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatConsole:
		return "console"
	case FormatColoured:
		return "coloured"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}
