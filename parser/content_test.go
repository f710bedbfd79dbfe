package parser

import (
	"reflect"
	"testing"
)

// textOnly drops the empty line-break markers.
func textOnly(items []string) []string {
	var out []string
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func TestExtractTextItems_TJKerning(t *testing.T) {
	// (1)0(2) concatenates; -4704.6 opens a new column.
	stream := []byte(`BT
[(1)0(2)-4704.6(C)0(A)]TJ
ET`)

	got := textOnly(ExtractTextItems(stream, nil))
	want := []string{"12", "CA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTextItems_SmallKerningConcatenates(t *testing.T) {
	stream := []byte(`BT
[(C)-50(A/)-30(1)(2)(3)]TJ
ET`)

	got := textOnly(ExtractTextItems(stream, nil))
	if len(got) != 1 || got[0] != "CA/123" {
		t.Errorf("got %q, want [CA/123]", got)
	}
}

func TestExtractTextItems_LineBreaks(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []string
	}{
		{
			name:   "TD with y offset",
			stream: "BT\n(Sr.No)Tj\n0 -12 TD\n(CA/123/2023)Tj\nET",
			want:   []string{"Sr.No", "", "CA/123/2023"},
		},
		{
			name:   "Td without y offset stays on line",
			stream: "BT\n(1)Tj\n40 0 Td\n(CA/123/2023)Tj\nET",
			want:   []string{"1", "CA/123/2023"},
		},
		{
			name:   "T* starts a line",
			stream: "BT\n(Court No. 1)Tj\nT*\n(Judge)Tj\nET",
			want:   []string{"Court No. 1", "", "Judge"},
		},
		{
			name:   "quote operator moves then shows",
			stream: "BT\n(Petitioner)Tj\n(Respondent)'\n0 0 (Advocate)\"\nET",
			want:   []string{"Petitioner", "", "Respondent", "", "Advocate"},
		},
		{
			name:   "Tm opens a block",
			stream: "BT\n1 0 0 1 72 700 Tm\n(Header)Tj\nET",
			want:   []string{"", "Header"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTextItems([]byte(tt.stream), nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTextItems_LargeTcSplitsCharacters(t *testing.T) {
	stream := []byte(`BT
0.8 Tc
(AB)Tj
0 Tc
(CD)Tj
ET`)

	got := textOnly(ExtractTextItems(stream, nil))
	want := []string{"A", "B", "CD"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTextItems_HexWithoutFont(t *testing.T) {
	stream := []byte(`BT
<43412F313233>Tj
[<4F>-20<53>]TJ
ET`)

	got := textOnly(ExtractTextItems(stream, nil))
	want := []string{"CA/123", "OS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractTextItems_FontCMap(t *testing.T) {
	cmap := ParseCMap([]byte(`begincmap
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
endcmap`))
	fonts := map[string]CMap{"F2": cmap}

	// F1 has no CMap so its literal passes through; F2 decodes glyph IDs.
	stream := []byte(`BT
/F1 10 Tf
(No.)Tj
/F2 10 Tf
[<00260024>-100<000F0011>]TJ
ET`)

	got := textOnly(ExtractTextItems(stream, fonts))
	want := []string{"No.", "CA/1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTokenizeSkipsMarkedContentDicts(t *testing.T) {
	stream := []byte(`/Span <</MCID 0 /ActualText (x)>> BDC
BT
(OS/7/2024)Tj
ET
EMC`)

	got := textOnly(ExtractTextItems(stream, nil))
	if len(got) != 1 || got[0] != "OS/7/2024" {
		t.Errorf("got %q, want [OS/7/2024]", got)
	}
}

func TestTokenizeEscapedParens(t *testing.T) {
	stream := []byte(`BT
(\(in chambers\) \101)Tj
ET`)

	got := textOnly(ExtractTextItems(stream, nil))
	if len(got) != 1 || got[0] != "(in chambers) A" {
		t.Errorf("got %q, want [(in chambers) A]", got)
	}
}
