// Package parsertest builds small PDFs for tests.
package parsertest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// IdentityCMap maps glyph IDs 0x24-0x3D to A-Z, 0x10-0x19 to 0-9 and 0x0F
// to '/'.
const IdentityCMap = `/CIDInit /ProcSet findresource begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfrange
<0024> <003D> <0041>
<0010> <0019> <0030>
endbfrange
1 beginbfchar
<000F> <002F>
endbfchar
endcmap`

// WritePDF writes dir/name as an uncompressed PDF with one page per content
// stream and returns its path. Every page has font /F1 without a ToUnicode
// map and /F2 using IdentityCMap.
func WritePDF(t testing.TB, dir, name string, contents ...string) string {
	t.Helper()

	n := len(contents)
	fontPlain := 3 + 2*n
	fontMapped := fontPlain + 1
	toUnicode := fontPlain + 2

	objs := make([]string, toUnicode)
	var kids []byte
	for i, c := range contents {
		page, content := 3+2*i, 4+2*i
		kids = fmt.Appendf(kids, "%d 0 R ", page)
		objs[page-1] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> >> /Contents %d 0 R >>",
			fontPlain, fontMapped, content)
		objs[content-1] = stream(c)
	}
	objs[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n)
	objs[fontPlain-1] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"
	objs[fontMapped-1] = fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /ToUnicode %d 0 R >>", toUnicode)
	objs[toUnicode-1] = stream(IdentityCMap)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func stream(data string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(data), data)
}
