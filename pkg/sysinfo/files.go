package sysinfo

import (
	"encoding/csv"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/crashkit/crashkit/pkg/util"
)

// SysInfo is the parsed form of a systeminfo-style text snapshot found
// inside a bundle.
type SysInfo struct {
	Path string                 `json:"path"`
	Data map[string]interface{} `json:"data"`
}

// Field returns a named value from the snapshot; repeated keys yield their
// first value.
func (s *SysInfo) Field(key string) string {
	switch v := s.Data[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []interface{}:
		// repeated keys come back from a JSON round trip as []interface{}
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// MemoryCSV is a memory inventory snapshot, rows keyed by the CSV header.
type MemoryCSV struct {
	Path string              `json:"path"`
	Rows []map[string]string `json:"rows"`
}

// LoadSysInfo finds the newest sysinfo.txt anywhere inside the bundle and
// parses it. Returns nil when the bundle carries none.
func LoadSysInfo(bundleDir string) *SysInfo {
	path := findLatestNamed(bundleDir, "sysinfo.txt")
	if path == "" {
		return nil
	}

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil
	}

	text := util.DecodeText(raw)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return &SysInfo{Path: path, Data: parseSysInfoText(text)}
}

// parseSysInfoText parses "Key: Value" lines. Indented continuation lines
// fold into the previous key; repeated keys collect into a list.
func parseSysInfoText(text string) map[string]interface{} {
	data := map[string]interface{}{}
	currentKey := ""

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if idx := strings.Index(line, ":"); idx >= 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])
			if key == "" {
				continue
			}

			if existing, ok := data[key]; ok {
				switch v := existing.(type) {
				case []string:
					data[key] = append(v, value)
				case string:
					data[key] = []string{v, value}
				}
			} else {
				data[key] = value
			}
			currentKey = key
			continue
		}

		if currentKey == "" {
			continue
		}
		extra := strings.TrimSpace(line)
		if extra == "" {
			continue
		}
		switch v := data[currentKey].(type) {
		case []string:
			v[len(v)-1] = strings.TrimSpace(v[len(v)-1] + " " + extra)
			data[currentKey] = v
		case string:
			data[currentKey] = strings.TrimSpace(v + " " + extra)
		}
	}

	return data
}

// LoadMemoryCSV finds the newest memory.csv anywhere inside the bundle and
// reads it as header-keyed rows. Returns nil when absent or malformed.
func LoadMemoryCSV(bundleDir string) *MemoryCSV {
	path := findLatestNamed(bundleDir, "memory.csv")
	if path == "" {
		return nil
	}

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil
	}

	reader := csv.NewReader(strings.NewReader(util.DecodeText(raw)))
	header, err := reader.Read()
	if err != nil {
		return nil
	}

	rows := []map[string]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil
		}

		row := map[string]string{}
		for i, field := range record {
			if i < len(header) {
				row[strings.TrimSpace(header[i])] = field
			}
		}
		rows = append(rows, row)
	}

	return &MemoryCSV{Path: path, Rows: rows}
}

// findLatestNamed walks the bundle for files with the given name
// (case-insensitive) and returns the most recently modified one.
func findLatestNamed(bundleDir string, filename string) string {
	latest := ""
	var latestMod int64

	filepath.Walk(bundleDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.EqualFold(info.Name(), filename) {
			return nil
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = path
			latestMod = mod
		}
		return nil
	})

	return latest
}

