package main

import (
	"fmt"
	"strings"
)

// DebugOverlay collects status fields shown in the window title.
type DebugOverlay struct {
	fields []string
}

func (do *DebugOverlay) Add(format string, args ...any) {
	do.fields = append(do.fields, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.fields = do.fields[:0]
}

func (do *DebugOverlay) Text() string {
	return strings.Join(do.fields, " | ")
}
