package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewCode returns a new URL-safe code for a stored item. Codes are
// random v4 UUIDs, so they carry no information about the content and
// never collide in practice.
func NewCode() string {
	return uuid.New().String()
}

// ParseLink splits a public file name of the form "<code>.<ext>" into
// its code and lowercase extension. It rejects anything containing a
// path separator or dot-dot sequence. Callers must use this before
// joining the name onto the cache directory; it is the only thing
// standing between a request path and the filesystem.
func ParseLink(name string) (code, ext string, err error) {
	if name == "" {
		return "", "", fmt.Errorf("file name is empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", "", fmt.Errorf("file name %s contains path traversal characters", name)
	}
	index := strings.LastIndex(name, ".")
	if index < 1 || index == len(name)-1 {
		return "", "", fmt.Errorf("file name %s has no extension", name)
	}
	return name[:index], strings.ToLower(name[index+1:]), nil
}

// ExtensionOf returns the lowercase extension of filename, without
// the leading dot, or "" if there is none.
func ExtensionOf(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// IsAllowedExtension returns true if ext appears in allowed. Pass
// constants.AllowedExtensions unless config overrides the list.
func IsAllowedExtension(allowed []string, ext string) bool {
	return StringListContains(allowed, strings.ToLower(ext))
}

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	for i := range list {
		if list[i] == item {
			return true
		}
	}
	return false
}

// FileExists returns true if the file at path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileSize returns the size of the file at path, or zero if the file
// does not exist or cannot be statted.
func FileSize(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return stat.Size()
}

// ExpandTilde expands a leading ~ in dirName to the current user's
// home directory.
func ExpandTilde(dirName string) (string, error) {
	if !strings.HasPrefix(dirName, "~") {
		return dirName, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(dirName[1:], string(os.PathSeparator))), nil
}
