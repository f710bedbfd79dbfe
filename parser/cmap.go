package parser

import (
	"encoding/hex"
	"strings"
)

// CMap maps character codes to Unicode, parsed from a font's ToUnicode
// stream. Width is the code length in bytes (1 or 2).
type CMap struct {
	Width int
	codes map[uint16]rune
}

// Len reports the number of mapped codes.
func (c CMap) Len() int { return len(c.codes) }

// ParseCMap extracts code-to-unicode mappings from a ToUnicode CMap stream.
// It reads the first codespacerange for the code width and handles
// bfchar (single) and bfrange (range) sections.
func ParseCMap(data []byte) CMap {
	s := string(data)
	c := CMap{Width: 2, codes: make(map[uint16]rune)}

	if sec, ok := firstSection(s, "begincodespacerange", "endcodespacerange"); ok {
		if toks := extractHexTokens(sec); len(toks) > 0 && len(strings.TrimSpace(toks[0])) <= 2 {
			c.Width = 1
		}
	}
	for _, sec := range sections(s, "beginbfchar", "endbfchar") {
		toks := extractHexTokens(sec)
		for i := 0; i+1 < len(toks); i += 2 {
			c.codes[hexCode(toks[i])] = rune(hexCode(toks[i+1]))
		}
	}
	for _, sec := range sections(s, "beginbfrange", "endbfrange") {
		toks := extractHexTokens(sec)
		for i := 0; i+2 < len(toks); i += 3 {
			lo, hi, dst := hexCode(toks[i]), hexCode(toks[i+1]), hexCode(toks[i+2])
			for g := int(lo); g <= int(hi); g++ {
				c.codes[uint16(g)] = rune(int(dst) + g - int(lo))
			}
		}
	}
	return c
}

func sections(s, begin, end string) []string {
	var out []string
	for {
		sec, ok := firstSection(s, begin, end)
		if !ok {
			return out
		}
		out = append(out, sec)
		s = s[strings.Index(s, begin)+len(begin)+len(sec)+len(end):]
	}
}

func firstSection(s, begin, end string) (string, bool) {
	start := strings.Index(s, begin)
	if start < 0 {
		return "", false
	}
	s = s[start+len(begin):]
	stop := strings.Index(s, end)
	if stop < 0 {
		return "", false
	}
	return s[:stop], true
}

// extractHexTokens pulls all <hex> tokens from a string.
func extractHexTokens(s string) []string {
	var tokens []string
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+1:], '>')
		if end < 0 {
			break
		}
		end += start + 1
		tokens = append(tokens, s[start+1:end])
		s = s[end+1:]
	}
	return tokens
}

// hexCode decodes up to two bytes of hex (e.g. "41" or "0041").
func hexCode(h string) uint16 {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil || len(b) == 0 {
		return 0
	}
	if len(b) == 1 {
		return uint16(b[0])
	}
	return uint16(b[0])<<8 | uint16(b[1])
}

// Decode maps raw code bytes to text. Unmapped 1-byte codes fall back to
// Latin-1; unmapped 2-byte codes are dropped.
func (c CMap) Decode(b []byte) string {
	var buf strings.Builder
	if c.Width == 1 {
		for _, x := range b {
			if r, ok := c.codes[uint16(x)]; ok {
				buf.WriteRune(r)
			} else {
				buf.WriteRune(rune(x))
			}
		}
		return buf.String()
	}
	for i := 0; i+1 < len(b); i += 2 {
		if r, ok := c.codes[uint16(b[i])<<8|uint16(b[i+1])]; ok {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// decodeHexString decodes a hex-encoded glyph string (e.g. "003000380031")
// using c.
func (c CMap) decodeHexString(hexStr string) string {
	return c.Decode(hexBytes(hexStr))
}

// hexBytes decodes the body of a <...> string. Whitespace is ignored and an
// odd trailing digit is padded with 0.
func hexBytes(hexStr string) []byte {
	hexStr = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, hexStr)
	if len(hexStr)%2 == 1 {
		hexStr += "0"
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}
	return b
}
