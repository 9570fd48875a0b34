package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Version is the release version, set with -ldflags "-X".
var Version = "dev"

// HasVersionFlag reports whether args request the version.
func HasVersionFlag(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-version" || a == "-v" {
			return true
		}
	}
	return false
}

// PrintVersion writes the version, module build info and Go runtime.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "medboot %s\n", Version)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				fmt.Fprintf(out, "revision: %s\n", s.Value)
			}
		}
	}
	fmt.Fprintf(out, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
