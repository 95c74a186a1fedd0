package sysinfo

import (
	"runtime"
	"strings"

	"github.com/crashkit/crashkit/pkg/util"
	"github.com/pkg/errors"
)

// runInventory shells out to the platform inventory command. The command is
// an opaque collaborator; only its list-format output is parsed here. Tests
// swap this out.
var runInventory = func(query ...string) (string, error) {
	args := append(query, "/format:list")
	result, err := util.RunCommand("wmic", args...)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", errors.Errorf("wmic exited %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result.Stdout, nil
}

// GPUInfo returns one row per video controller. Off Windows, or when the
// inventory command fails, it returns no rows rather than an error; the
// summary simply omits the section.
func GPUInfo() []map[string]string {
	if !util.IsWindows() {
		return []map[string]string{}
	}

	out, err := runInventory("path", "Win32_VideoController", "get", "Name,DriverVersion,DriverDate")
	if err != nil {
		return []map[string]string{}
	}
	return ParseList(out)
}

// OSInfo returns basic OS facts. Off Windows it falls back to runtime
// information so summaries stay populated in development environments.
func OSInfo() map[string]string {
	if !util.IsWindows() {
		return map[string]string{
			"platform": runtime.GOOS,
			"arch":     runtime.GOARCH,
		}
	}

	out, err := runInventory("os", "get", "Caption,Version,BuildNumber")
	if err != nil {
		return map[string]string{}
	}

	rows := ParseList(out)
	if len(rows) == 0 {
		return map[string]string{}
	}
	return rows[0]
}

// ParseList parses the inventory command's list output: blocks of Key=Value
// lines separated by blank lines, one block per object.
func ParseList(text string) []map[string]string {
	items := []map[string]string{}
	current := map[string]string{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				items = append(items, current)
				current = map[string]string{}
			}
			continue
		}
		if !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		current[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	if len(current) > 0 {
		items = append(items, current)
	}

	return items
}
