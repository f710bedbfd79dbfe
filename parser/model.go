package parser

// Page is one PDF page ready for text extraction. Fonts maps font resource
// names to their ToUnicode CMaps.
type Page struct {
	Number  int
	Content []byte
	Fonts   map[string]CMap
}

// Match is a line of a cause-list PDF that mentions the searched case.
type Match struct {
	File string `json:"file,omitempty"`
	Page int    `json:"page"`
	Line int    `json:"line"`
	Text string `json:"text"`
}
