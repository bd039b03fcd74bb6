// Package canonical produces the deterministic byte encoding that profile
// fingerprints are computed over.
//
// The encoding is compact JSON with members in struct declaration order and
// arrays in stored order. Floats are written with the shortest digits that
// round-trip a float32, always carrying a fractional part in decimal form
// ("1.0", "0.85") and switching to exponent form ("1e13", "1e-7") when the
// decimal exponent of those digits falls outside [-6, 12]. Strings escape only
// the quote, the backslash and control characters. This is byte-for-byte what
// serde_json emits for the same shape, so fingerprints agree with profiles
// hashed by other onto16 tooling. Bytes that are not valid UTF-8 are written
// through unchanged so distinct ids never share an encoding.
package canonical

import (
	"bytes"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/onto16/internal/models"
)

// EncodeProfile returns the canonical encoding of p.
func EncodeProfile(p models.Profile) []byte {
	var buf bytes.Buffer
	writeProfile(&buf, p)
	return buf.Bytes()
}

// EncodeNode returns the canonical encoding of a single node.
func EncodeNode(n models.Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n)
	return buf.Bytes()
}

func writeProfile(buf *bytes.Buffer, p models.Profile) {
	buf.WriteString(`{"nodes":[`)
	for i, n := range p.Nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeNode(buf, n)
	}
	buf.WriteString(`],"energy_state":`)
	writeFloat32(buf, p.EnergyState)
	buf.WriteString(`,"version":`)
	buf.WriteString(strconv.FormatUint(uint64(p.Version), 10))
	buf.WriteByte('}')
}

func writeNode(buf *bytes.Buffer, n models.Node) {
	buf.WriteString(`{"id":`)
	writeString(buf, n.ID)
	buf.WriteString(`,"rational":`)
	buf.WriteString(strconv.FormatBool(n.Rational))
	buf.WriteString(`,"content":`)
	writeString(buf, n.Content)
	buf.WriteString(`,"stability":`)
	writeFloat32(buf, n.Stability)
	buf.WriteString(`,"links":[`)
	for i, l := range n.Links {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, l)
	}
	buf.WriteString(`]}`)
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			buf.WriteByte(s[i])
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r <= 0x1F:
			var b [6]byte
			copy(b[:4], `\u00`)
			hex.Encode(b[4:], []byte{byte(r)})
			buf.Write(b[:])
		default:
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}

func writeFloat32(buf *bytes.Buffer, f float32) {
	buf.WriteString(FormatFloat32(f))
}

// FormatFloat32 renders f the way the canonical encoding does.
// NaN and infinities have no JSON form and render as null.
func FormatFloat32(f float32) string {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "null"
	}

	// The switch to exponent form depends on the decimal exponent of the
	// shortest float32 digits, not on the widened float64 value. Decimal form
	// covers exponents -6 through 12.
	sci := strconv.FormatFloat(v, 'e', -1, 32)
	if v != 0 {
		exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
		if exp < -6 || exp > 12 {
			return normalizeExponent(sci)
		}
	}

	s := strconv.FormatFloat(v, 'f', -1, 32)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// normalizeExponent turns Go's "1.5e-07" / "1e+16" into "1.5e-7" / "1e16".
func normalizeExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s
	}
	mantissa, exp := s[:i], s[i+1:]
	sign := ""
	switch exp[0] {
	case '+':
		exp = exp[1:]
	case '-':
		sign = "-"
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}
