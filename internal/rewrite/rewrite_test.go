package rewrite_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/frontmatter"
	"notekeeper/internal/fs"
	"notekeeper/internal/rewrite"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func seedNote(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "seed note")

	return path
}

func readNote(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "read note back")

	return string(data)
}

// Contract: an update that changes nothing never touches the file.
func Test_Apply_Skips_Write_When_Content_Unchanged(t *testing.T) {
	t.Parallel()

	path := seedNote(t, "---\nitem: true\npath: shelf-a\n---\nbody\n")

	fsys := fs.NewInjected(fs.NewReal())
	updater := rewrite.NewUpdater(fsys, testLogger())

	err := updater.Apply(path, frontmatter.Update{{Key: "path", Value: "shelf-a"}})
	require.NoError(t, err, "no-op update should succeed")

	assert.Zero(t, fsys.Writes(), "no write should reach the filesystem")
	assert.Equal(t, "---\nitem: true\npath: shelf-a\n---\nbody\n", readNote(t, path), "file should be byte-identical")
}

// Contract: documents without a valid marker pair are rejected untouched.
func Test_Apply_Returns_FormatError_And_Leaves_File_When_Markers_Missing(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
	}{
		{name: "no frontmatter at all", content: "# Just a heading\n\nbody text\n"},
		{name: "opening marker only", content: "---\nitem: true\nno closing line\n"},
		{name: "marker not on first line", content: "\n---\nitem: true\n---\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := seedNote(t, tc.content)
			updater := rewrite.NewUpdater(fs.NewReal(), testLogger())

			err := updater.Apply(path, frontmatter.Update{{Key: "path", Value: "x"}})

			var formatErr *frontmatter.FormatError

			require.ErrorAs(t, err, &formatErr, "Apply should return a FormatError")
			assert.Equal(t, tc.content, readNote(t, path), "file bytes must be unchanged")
		})
	}
}

func Test_Apply_Returns_ParseError_And_Leaves_File_When_Block_Malformed(t *testing.T) {
	t.Parallel()

	content := "---\na: [unclosed\n---\nbody\n"
	path := seedNote(t, content)

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "a", Value: 1}})

	var parseErr *frontmatter.ParseError

	require.ErrorAs(t, err, &parseErr, "Apply should return a ParseError")
	assert.Equal(t, content, readNote(t, path), "file bytes must be unchanged")
}

func Test_Apply_Returns_SchemaError_And_Leaves_File_When_Block_Not_A_Mapping(t *testing.T) {
	t.Parallel()

	content := "---\n- a\n- b\n---\nbody\n"
	path := seedNote(t, content)

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "a", Value: 1}})

	var schemaErr *frontmatter.SchemaError

	require.ErrorAs(t, err, &schemaErr, "Apply should return a SchemaError")
	assert.Equal(t, content, readNote(t, path), "file bytes must be unchanged")
}

// Contract: existing keys keep their relative order, new keys append in
// update order.
func Test_Apply_Preserves_Merge_Order(t *testing.T) {
	t.Parallel()

	path := seedNote(t, "---\na: 1\nb: 2\n---\nbody\n")

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{
		{Key: "b", Value: 3},
		{Key: "c", Value: 4},
	})
	require.NoError(t, err, "Apply should succeed")

	assert.Equal(t, "---\na: 1\nb: 3\nc: 4\n---\nbody\n", readNote(t, path), "merged document mismatch")
}

func Test_Apply_Preserves_CRLF_Newlines(t *testing.T) {
	t.Parallel()

	path := seedNote(t, "---\r\nitem: true\r\n---\r\nfirst body line\r\nsecond body line\r\n")

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "path", Value: "shelf-a"}})
	require.NoError(t, err, "Apply should succeed")

	got := readNote(t, path)
	assert.Equal(t,
		"---\r\nitem: true\r\npath: shelf-a\r\n---\r\nfirst body line\r\nsecond body line\r\n",
		got, "CRLF must survive in block and body")
	assert.NotContains(t, strings.ReplaceAll(got, "\r\n", ""), "\n", "no bare LF should remain")
}

func Test_Apply_Preserves_BOM(t *testing.T) {
	t.Parallel()

	path := seedNote(t, "\ufeff---\nitem: true\n---\nbody\n")

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "path", Value: "shelf-a"}})
	require.NoError(t, err, "Apply should succeed")

	assert.Equal(t, "\ufeff---\nitem: true\npath: shelf-a\n---\nbody\n", readNote(t, path), "BOM must round-trip")
}

// Contract: every byte after the closing marker is untouched by an update.
func Test_Apply_Preserves_Body_Bytes_When_Block_Changes(t *testing.T) {
	t.Parallel()

	var body strings.Builder
	for i := 0; i < 500; i++ {
		body.WriteString("body line with some text and trailing spaces   \n")
	}

	path := seedNote(t, "---\na: 1\n---\n"+body.String())

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "a", Value: 2}})
	require.NoError(t, err, "Apply should succeed")

	got := readNote(t, path)
	require.True(t, strings.HasPrefix(got, "---\na: 2\n---\n"), "block should be rewritten")
	assert.Equal(t, body.String(), strings.TrimPrefix(got, "---\na: 2\n---\n"), "body bytes must be identical")
}

func Test_Apply_Restores_Original_When_Write_Fails(t *testing.T) {
	t.Parallel()

	content := "---\na: 1\n---\nbody\n"
	path := seedNote(t, content)

	fsys := fs.NewInjected(fs.NewReal())
	fsys.FailNextWrites(1, errors.New("disk full"))

	updater := rewrite.NewUpdater(fsys, testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "a", Value: 2}})

	var writeErr *rewrite.WriteError

	require.ErrorAs(t, err, &writeErr, "Apply should return a WriteError")
	assert.NoError(t, writeErr.RollbackErr, "rollback should have succeeded")
	assert.True(t, fs.IsInjected(writeErr.Err), "underlying error should be the injected one")
	assert.Equal(t, content, readNote(t, path), "original content must be restored")
	assert.Equal(t, 2, fsys.Writes(), "exactly write + rollback should be attempted")
}

func Test_Apply_Still_Returns_WriteError_When_Rollback_Fails(t *testing.T) {
	t.Parallel()

	path := seedNote(t, "---\na: 1\n---\nbody\n")

	fsys := fs.NewInjected(fs.NewReal())
	fsys.FailNextWrites(2, errors.New("disk full"))

	updater := rewrite.NewUpdater(fsys, testLogger())
	err := updater.Apply(path, frontmatter.Update{{Key: "a", Value: 2}})

	var writeErr *rewrite.WriteError

	require.ErrorAs(t, err, &writeErr, "error kind must stay WriteError")
	assert.Error(t, writeErr.RollbackErr, "rollback failure should be recorded")
}

func Test_Apply_Populates_Empty_Block(t *testing.T) {
	t.Parallel()

	path := seedNote(t, "---\n---\nbody\n")

	updater := rewrite.NewUpdater(fs.NewReal(), testLogger())
	err := updater.Apply(path, frontmatter.Update{
		{Key: "item", Value: true},
		{Key: "path", Value: "shelf-a"},
	})
	require.NoError(t, err, "Apply should succeed")

	assert.Equal(t, "---\nitem: true\npath: shelf-a\n---\nbody\n", readNote(t, path), "document mismatch")
}
