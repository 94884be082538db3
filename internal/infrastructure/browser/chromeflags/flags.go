// Package chromeflags parses user supplied Chromium command line switches.
package chromeflags

import "strings"

type Flag struct {
	Name  string
	Value string
}

// Split turns "--profile-directory=Default" into its name and value.
func Split(arg string) (string, string) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	name, value, _ := strings.Cut(arg, "=")
	return name, value
}

// Parse splits every argument and drops empty ones.
func Parse(args []string) []Flag {
	out := make([]Flag, 0, len(args))
	for _, arg := range args {
		name, value := Split(arg)
		if name == "" {
			continue
		}
		out = append(out, Flag{Name: name, Value: value})
	}
	return out
}

// String renders a flag back into "--name" or "--name=value".
func (f Flag) String() string {
	if f.Value == "" {
		return "--" + f.Name
	}
	return "--" + f.Name + "=" + f.Value
}
