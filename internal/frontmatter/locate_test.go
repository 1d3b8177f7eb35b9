package frontmatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/frontmatter"
)

func Test_Locate_Returns_Region_When_Markers_Valid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		text    string
		content string
		newline string
	}{
		{
			name:    "simple block",
			text:    "---\nitem: true\n---\nbody\n",
			content: "item: true",
			newline: "\n",
		},
		{
			name:    "empty block",
			text:    "---\n---\nbody\n",
			content: "",
			newline: "\n",
		},
		{
			name:    "multi line block",
			text:    "---\na: 1\nb: 2\n---\n",
			content: "a: 1\nb: 2",
			newline: "\n",
		},
		{
			name:    "crlf document",
			text:    "---\r\nitem: true\r\n---\r\nbody\r\n",
			content: "item: true",
			newline: "\r\n",
		},
		{
			name:    "no body after closing marker",
			text:    "---\na: 1\n---",
			content: "a: 1",
			newline: "\n",
		},
		{
			name:    "dashes inside content line are not a marker",
			text:    "---\ntitle: a --- b\n---\nbody\n",
			content: "title: a --- b",
			newline: "\n",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			region, err := frontmatter.Locate(tc.text)
			require.NoError(t, err, "Locate should succeed")

			assert.Equal(t, tc.newline, region.Newline, "newline style mismatch")
			assert.Equal(t, tc.content, tc.text[region.Start:region.End], "region content mismatch")
		})
	}
}

func Test_Locate_Returns_FormatError_When_Markers_Missing(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		text string
	}{
		{name: "empty document", text: ""},
		{name: "no opening marker", text: "body only\n"},
		{name: "marker not first line", text: "\n---\nitem: true\n---\n"},
		{name: "marker with trailing text", text: "--- yaml\nitem: true\n---\n"},
		{name: "marker without newline", text: "---"},
		{name: "no closing marker", text: "---\nitem: true\n"},
		{name: "closing marker indented", text: "---\nitem: true\n ---\n"},
		{name: "lf opener in crlf document", text: "---\nitem: true\r\n---\r\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := frontmatter.Locate(tc.text)

			var formatErr *frontmatter.FormatError

			require.ErrorAs(t, err, &formatErr, "Locate should return a FormatError")
		})
	}
}

func Test_DetectNewline_Returns_CRLF_When_Any_CRLF_Present(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\r\n", frontmatter.DetectNewline("a\r\nb\nc"), "mixed document should detect CRLF")
	assert.Equal(t, "\n", frontmatter.DetectNewline("a\nb\nc"), "LF document should detect LF")
	assert.Equal(t, "\n", frontmatter.DetectNewline(""), "empty document defaults to LF")
}

func Test_StripBOM_Reports_Presence(t *testing.T) {
	t.Parallel()

	stripped, had := frontmatter.StripBOM("\ufeff---\n---\n")
	assert.True(t, had, "BOM should be detected")
	assert.Equal(t, "---\n---\n", stripped, "BOM should be removed")

	stripped, had = frontmatter.StripBOM("---\n---\n")
	assert.False(t, had, "no BOM should be detected")
	assert.Equal(t, "---\n---\n", stripped, "text should be unchanged")
}
