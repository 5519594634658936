// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Caller is the set of caller details appended to each log line.
type Caller uint8

// Caller details, combined with a bitwise or.
const (
	CallerFile Caller = 1 << iota
	CallerLine
	CallerFunc
)

// CallerNone appends no caller detail.
const CallerNone Caller = 0

var callerNames = [...]struct {
	caller Caller
	name   string
}{
	{caller: CallerFile, name: "file"},
	{caller: CallerLine, name: "line"},
	{caller: CallerFunc, name: "func"},
}

// ErrCallerNotValid is returned when parsing an unknown caller detail.
var ErrCallerNotValid = errors.New("caller detail is not valid")

// ParseCaller parses a comma separated list of caller details among
// file, line and func. An empty string or none gives CallerNone.
func ParseCaller(s string) (caller Caller, err error) {
	if s == "" || s == "none" {
		return CallerNone, nil
	}

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		found := false
		for _, detail := range callerNames {
			if detail.name == field {
				caller |= detail.caller
				found = true
				break
			}
		}
		if !found {
			return CallerNone, fmt.Errorf("%w: %s", ErrCallerNotValid, field)
		}
	}
	return caller, nil
}

func (c Caller) String() string {
	if c == CallerNone {
		return "none"
	}
	names := make([]string, 0, len(callerNames))
	for _, detail := range callerNames {
		if c&detail.caller != 0 {
			names = append(names, detail.name)
		}
	}
	return strings.Join(names, ",")
}

// details returns the caller details of the function logging, which
// is depth frames above this call.
func (c Caller) details(depth int) string {
	if c == CallerNone {
		return ""
	}

	pc, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		return "error"
	}

	var fields []string
	if c&CallerFile != 0 {
		fields = append(fields, filepath.Base(file))
	}
	if c&CallerLine != 0 {
		fields = append(fields, "L"+strconv.Itoa(line))
	}
	if c&CallerFunc != 0 {
		if details := runtime.FuncForPC(pc); details != nil {
			fields = append(fields, strings.TrimLeft(filepath.Ext(details.Name()), "."))
		}
	}
	return strings.Join(fields, ":")
}
