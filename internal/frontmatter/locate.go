package frontmatter

import "strings"

// Marker is the delimiter line bounding a frontmatter block.
const Marker = "---"

// BOM is the UTF-8 byte-order marker as a string prefix.
const BOM = "\ufeff"

// Region describes where the frontmatter content sits inside a document.
//
// Start and End are offsets into the BOM-stripped text and span the content
// strictly between the two marker lines. Newline is the document's detected
// line-break style, either "\n" or "\r\n".
type Region struct {
	Start   int
	End     int
	Newline string
}

// DetectNewline returns the document's line-break style. Any CRLF sequence
// anywhere in the text makes the whole document CRLF.
func DetectNewline(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}

	return "\n"
}

// StripBOM removes a leading UTF-8 byte-order marker and reports whether one
// was present.
func StripBOM(text string) (string, bool) {
	return strings.CutPrefix(text, BOM)
}

// Locate finds the frontmatter content region in BOM-stripped document text.
//
// The text must begin with the marker line followed by the detected newline,
// and some later line must be exactly the marker. No parsing happens here;
// both structural failures return a *FormatError.
func Locate(text string) (Region, error) {
	nl := DetectNewline(text)

	opening := Marker + nl
	if !strings.HasPrefix(text, opening) {
		return Region{}, &FormatError{Reason: "missing opening marker"}
	}

	lines := strings.Split(text, nl)

	// lines[0] is the opening marker; the first later line that is exactly
	// the marker closes the block.
	for i := 1; i < len(lines); i++ {
		if lines[i] != Marker {
			continue
		}

		content := strings.Join(lines[1:i], nl)
		start := len(opening)

		return Region{Start: start, End: start + len(content), Newline: nl}, nil
	}

	return Region{}, &FormatError{Reason: "missing closing marker"}
}
