// Package pdftexttest builds small PDF files for tests.
package pdftexttest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Lines returns a content stream printing one Courier line per entry,
// 20 points apart from the top of the page.
func Lines(lines ...string) string {
	var content strings.Builder
	y := 700
	for _, line := range lines {
		fmt.Fprintf(&content, "BT /F1 10 Tf 1 0 0 1 50 %d Tm (%s) Tj ET\n", y, line)
		y -= 20
	}
	return content.String()
}

// Build returns a minimal PDF with one page per content stream. Font /F1 is
// Courier.
func Build(streams ...string) []byte {
	var objects []string

	// 1: catalog, 2: pages, 3: font, then (page, content) pairs.
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, len(streams))
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(streams)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding >>")

	for i, stream := range streams {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i,
		))
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// WriteFile writes a PDF built from streams into a temporary directory of t
// and returns its path.
func WriteFile(t testing.TB, name string, streams ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(streams...), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
