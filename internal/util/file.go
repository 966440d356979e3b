package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/natefinch/atomic"
)

// ParseInt parses the (whitespace padded) content of a sysfs-like file
func ParseInt(text string) (int, error) {
	text = strings.TrimSpace(text)
	if len(text) <= 0 {
		return -1, fmt.Errorf("value is empty")
	}
	return strconv.Atoi(text)
}

// ExpandPath resolves a leading "~" to the home directory of the current user
func ExpandPath(path string) (string, error) {
	return homedir.Expand(path)
}

// WriteJSONAtomic serializes value as indented json and replaces the file at path
// atomically, so readers never observe a partially written file
func WriteJSONAtomic(path string, value interface{}) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
