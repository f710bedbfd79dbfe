package parser

import (
	"math"
	"strconv"
	"strings"
)

// kerningThreshold is the absolute value above which a kerning/spacing number
// in a TJ array is treated as a column separator rather than intra-word spacing.
const kerningThreshold = 500

// ExtractTextItems parses a PDF content stream and returns an ordered list of
// text strings. Empty strings ("") are inserted as line-break markers whenever
// the text position moves to a new line. fonts maps resource names (as used
// by Tf) to their ToUnicode CMaps and may be nil.
func ExtractTextItems(stream []byte, fonts map[string]CMap) []string {
	tokens := tokenize(string(stream))
	st := textState{fonts: fonts}
	var items []string
	var stack []token // operand stack

	show := func(t token) {
		if t.kind != tokString && t.kind != tokHex {
			return
		}
		text := st.decode(t)
		if math.Abs(st.tc*1000) > kerningThreshold {
			// Large Tc: each character is visually in a different column.
			for _, ch := range text {
				items = append(items, string(ch))
			}
			return
		}
		items = append(items, text)
	}

	for _, t := range tokens {
		if t.kind != tokOperator {
			stack = append(stack, t)
			continue
		}
		switch t.value {
		case "Tj":
			if len(stack) > 0 {
				show(stack[len(stack)-1])
			}

		case "'", "\"":
			// Move to the next line, then show the last operand.
			items = append(items, "")
			if len(stack) > 0 {
				show(stack[len(stack)-1])
			}

		case "TJ":
			if len(stack) > 0 {
				if a := stack[len(stack)-1]; a.kind == tokArray {
					items = append(items, st.processTJArray(a.children)...)
				}
			}

		case "TD", "Td":
			// A non-zero ty means we moved to a new line.
			if len(stack) >= 2 {
				ty, err := strconv.ParseFloat(stack[len(stack)-1].value, 64)
				if err == nil && ty != 0 {
					items = append(items, "")
				}
			}

		case "T*", "Tm":
			items = append(items, "")

		case "Tc":
			if len(stack) > 0 {
				if v, err := strconv.ParseFloat(stack[len(stack)-1].value, 64); err == nil {
					st.tc = v
				}
			}

		case "Tf":
			if len(stack) >= 2 && stack[len(stack)-2].kind == tokName {
				st.font = stack[len(stack)-2].value
			}
		}
		stack = stack[:0]
	}

	return items
}

// textState carries the graphics state the extractor cares about.
type textState struct {
	fonts map[string]CMap
	font  string
	tc    float64 // character spacing in text space units
}

// decode turns a string operand into text using the current font. Literal
// strings in a font without a CMap are taken as-is.
func (st *textState) decode(t token) string {
	cm, ok := st.fonts[st.font]
	if ok && cm.Len() == 0 {
		ok = false
	}
	switch t.kind {
	case tokHex:
		b := hexBytes(t.value)
		if ok {
			return cm.Decode(b)
		}
		return latin1(b)
	case tokString:
		if ok {
			return cm.Decode([]byte(t.value))
		}
		return t.value
	}
	return ""
}

func latin1(b []byte) string {
	r := make([]rune, len(b))
	for i, x := range b {
		r[i] = rune(x)
	}
	return string(r)
}

// processTJArray splits a TJ array into column items. The gap before each
// character is Tc*1000 minus any TJ displacement since the previous one; a
// gap wider than kerningThreshold starts a new item.
func (st *textState) processTJArray(children []token) []string {
	tcThousandths := st.tc * 1000
	var items []string
	var cur strings.Builder
	nextGap := 0.0
	isFirst := true

	for _, c := range children {
		switch c.kind {
		case tokString, tokHex:
			for _, ch := range st.decode(c) {
				if !isFirst && cur.Len() > 0 && math.Abs(nextGap) > kerningThreshold {
					items = append(items, cur.String())
					cur.Reset()
				}
				cur.WriteRune(ch)
				isFirst = false
				nextGap = tcThousandths
			}
		case tokNumber:
			val, err := strconv.ParseFloat(c.value, 64)
			if err != nil {
				continue
			}
			nextGap -= val
		}
	}

	if cur.Len() > 0 {
		items = append(items, cur.String())
	}

	return items
}

// Token types for the PDF content stream tokenizer.
type tokenKind int

const (
	tokString   tokenKind = iota // (text)
	tokHex                       // <00410042>, value holds the digits
	tokNumber                    // 123, -45.6
	tokName                      // /F1, value without the slash
	tokOperator                  // BT, Tj, TJ, TD, etc.
	tokArray                     // [...], children stored in token.children
)

type token struct {
	kind     tokenKind
	value    string
	children []token // only for tokArray
}

// tokenize performs a simple tokenization of a PDF content stream.
func tokenize(s string) []token {
	var tokens []token
	i := 0
	n := len(s)

	for i < n {
		ch := s[i]

		// Skip whitespace.
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			i++
			continue
		}

		// Comment.
		if ch == '%' {
			for i < n && s[i] != '\n' && s[i] != '\r' {
				i++
			}
			continue
		}

		// String literal (parenthesized).
		if ch == '(' {
			str, end := readString(s, i)
			tokens = append(tokens, token{kind: tokString, value: str})
			i = end
			continue
		}

		// Array.
		if ch == '[' {
			arr, end := readArray(s, i)
			tokens = append(tokens, arr)
			i = end
			continue
		}

		// Number (including negative and decimal).
		if ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9') {
			start := i
			if ch == '-' || ch == '+' {
				i++
			}
			for i < n && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, value: s[start:i]})
			continue
		}

		// Name object.
		if ch == '/' {
			start := i + 1
			i = start
			for i < n && !isDelimiter(s[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokName, value: s[start:i]})
			continue
		}

		// Hex string <...>. Dictionaries (<<...>>) carry nothing we show.
		if ch == '<' {
			if i+1 < n && s[i+1] == '<' {
				i = skipDict(s, i)
				continue
			}
			str, end := readHex(s, i)
			tokens = append(tokens, token{kind: tokHex, value: str})
			i = end
			continue
		}

		// Skip '>' that isn't part of a hex string.
		if ch == ']' || ch == '>' {
			i++
			continue
		}

		// Keyword / operator.
		start := i
		for i < n && !isDelimiter(s[i]) {
			i++
		}
		if i == start {
			// A lone delimiter such as ')' or '{'.
			i++
			continue
		}
		word := s[start:i]
		if word != "" {
			tokens = append(tokens, token{kind: tokOperator, value: word})
		}
	}

	return tokens
}

// readString reads a parenthesized string starting at s[pos]=='(' and returns
// the string content and the index after the closing ')'.
func readString(s string, pos int) (string, int) {
	var buf strings.Builder
	i := pos + 1 // skip opening '('
	depth := 1
	n := len(s)

	for i < n && depth > 0 {
		ch := s[i]
		if ch == '\\' && i+1 < n {
			i++
			next := s[i]
			switch next {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '(', ')', '\\':
				buf.WriteByte(next)
			default:
				// Octal escape, or emit the byte as-is.
				if next >= '0' && next <= '7' {
					oct := string(next)
					for j := 0; j < 2 && i+1 < n && s[i+1] >= '0' && s[i+1] <= '7'; j++ {
						i++
						oct += string(s[i])
					}
					val, _ := strconv.ParseInt(oct, 8, 32)
					buf.WriteByte(byte(val))
				} else {
					buf.WriteByte(next)
				}
			}
		} else if ch == '(' {
			depth++
			buf.WriteByte(ch)
		} else if ch == ')' {
			depth--
			if depth > 0 {
				buf.WriteByte(ch)
			}
		} else {
			buf.WriteByte(ch)
		}
		i++
	}

	return buf.String(), i
}

// readArray reads a [...] array starting at s[pos]=='[' and returns a tokArray
// token with children, plus the index after the closing ']'.
func readArray(s string, pos int) (token, int) {
	var children []token
	i := pos + 1 // skip '['
	n := len(s)

	for i < n {
		ch := s[i]

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			i++
			continue
		}

		if ch == ']' {
			i++
			break
		}

		if ch == '(' {
			str, end := readString(s, i)
			children = append(children, token{kind: tokString, value: str})
			i = end
			continue
		}

		if ch == '<' {
			str, end := readHex(s, i)
			children = append(children, token{kind: tokHex, value: str})
			i = end
			continue
		}

		// Number.
		if ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9') {
			start := i
			if ch == '-' || ch == '+' {
				i++
			}
			for i < n && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.') {
				i++
			}
			children = append(children, token{kind: tokNumber, value: s[start:i]})
			continue
		}

		// Skip anything else inside the array.
		i++
	}

	return token{kind: tokArray, children: children}, i
}

// readHex reads a <...> string starting at s[pos]=='<' and returns its
// digits and the index after the closing '>'.
func readHex(s string, pos int) (string, int) {
	end := strings.IndexByte(s[pos+1:], '>')
	if end < 0 {
		return s[pos+1:], len(s)
	}
	return s[pos+1 : pos+1+end], pos + end + 2
}

// skipDict returns the index after the << ... >> starting at pos.
func skipDict(s string, pos int) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "<<"):
			depth++
			i++
		case strings.HasPrefix(s[i:], ">>"):
			depth--
			i++
			if depth == 0 {
				return i + 1
			}
		case s[i] == '(':
			_, end := readString(s, i)
			i = end - 1
		}
	}
	return len(s)
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '(', ')', '[', ']', '<', '>', '{', '}', '/', '%':
		return true
	}
	return false
}
