package util_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/medialoom/media-services/constants"
	"github.com/medialoom/media-services/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := util.NewCode()
		assert.False(t, seen[code])
		seen[code] = true
		assert.False(t, strings.ContainsAny(code, `/\. `))
	}
}

func TestParseLink(t *testing.T) {
	code, ext, err := util.ParseLink("abc123.MP4")
	assert.Nil(t, err)
	assert.Equal(t, "abc123", code)
	assert.Equal(t, "mp4", ext)

	code, ext, err = util.ParseLink("my.file.pdf")
	assert.Nil(t, err)
	assert.Equal(t, "my.file", code)
	assert.Equal(t, "pdf", ext)
}

func TestParseLinkRejections(t *testing.T) {
	badNames := []string{
		"",
		"noextension",
		".hidden",
		"trailingdot.",
		"../../etc/passwd",
		"..",
		"dir/file.jpg",
		`dir\file.jpg`,
		"a..b.jpg",
	}
	for _, name := range badNames {
		_, _, err := util.ParseLink(name)
		assert.NotNil(t, err, "expected error for %q", name)
	}
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "jpg", util.ExtensionOf("photo.JPG"))
	assert.Equal(t, "gz", util.ExtensionOf("archive.tar.gz"))
	assert.Equal(t, "", util.ExtensionOf("noext"))
}

func TestIsAllowedExtension(t *testing.T) {
	assert.True(t, util.IsAllowedExtension(constants.AllowedExtensions, "mp4"))
	assert.True(t, util.IsAllowedExtension(constants.AllowedExtensions, "JPG"))
	assert.False(t, util.IsAllowedExtension(constants.AllowedExtensions, "exe"))
	assert.False(t, util.IsAllowedExtension(constants.AllowedExtensions, ""))
}

func TestStringListContains(t *testing.T) {
	list := []string{"apple", "orange", "banana"}
	assert.True(t, util.StringListContains(list, "orange"))
	assert.False(t, util.StringListContains(list, "wedgewood"))
	assert.False(t, util.StringListContains(nil, "apple"))
}

func TestFileExistsAndSize(t *testing.T) {
	f := filepath.Join(t.TempDir(), "sample.txt")
	assert.False(t, util.FileExists(f))
	assert.EqualValues(t, 0, util.FileSize(f))

	require.Nil(t, os.WriteFile(f, []byte("twelve bytes"), 0644))
	assert.True(t, util.FileExists(f))
	assert.EqualValues(t, 12, util.FileSize(f))
}

func TestExpandTilde(t *testing.T) {
	expanded, err := util.ExpandTilde("~/tmp")
	assert.Nil(t, err)
	assert.True(t, len(expanded) > 4)
	assert.True(t, strings.HasSuffix(expanded, "tmp"))

	expanded, err = util.ExpandTilde("/nothing/to/expand")
	assert.Nil(t, err)
	assert.Equal(t, "/nothing/to/expand", expanded)
}
