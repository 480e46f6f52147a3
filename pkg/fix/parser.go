package fix

import "bytes"

// SeparatorHint selects (or lets ParseFIX auto-detect) the field separator
// used in a raw FIX string.
type SeparatorHint int

const (
	// SeparatorAuto detects SOH, then '|', then newline, in that order.
	SeparatorAuto SeparatorHint = iota
	SeparatorSOH
	SeparatorPipe
	SeparatorNewline
)

const (
	soh  = 0x01
	pipe = '|'
)

// sessionTags are FIX session-layer tags stripped before any SBE or Merkle
// work: BeginString(8), BodyLength(9), CheckSum(10), MsgType(35).
var sessionTags = map[int]bool{8: true, 9: true, 10: true, 35: true}

// ParseFIX splits raw FIX text into an ordered tag=value list. Fields may be
// separated by SOH (0x01), '|', or a newline ('\n' or "\r\n"); ParseFIX
// splits each field on the first '=' only. Empty segments and segments with
// no '=' are skipped silently. Session tags 8, 9, 10, and 35 are dropped.
// Declared order is preserved; this function does not check for duplicate
// tags, since a flat stream cannot tell a group repeat from an error --
// that check belongs to Nest, which understands group boundaries.
func ParseFIX(raw []byte, hint SeparatorHint) ([]TagValue, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}

	sep := detectSeparator(raw, hint)
	fields := splitFields(raw, sep)

	out := make([]TagValue, 0, len(fields))
	for _, f := range fields {
		if len(f) == 0 {
			continue
		}
		eq := bytes.IndexByte(f, '=')
		if eq <= 0 {
			continue
		}
		tagBytes := f[:eq]
		tag, ok := parseTag(tagBytes)
		if !ok {
			continue
		}
		if sessionTags[tag] {
			continue
		}
		value := f[eq+1:]
		out = append(out, TagValue{Tag: tag, Value: append([]byte(nil), value...)})
	}
	return out, nil
}

func detectSeparator(raw []byte, hint SeparatorHint) byte {
	switch hint {
	case SeparatorSOH:
		return soh
	case SeparatorPipe:
		return pipe
	case SeparatorNewline:
		return '\n'
	default:
		if bytes.IndexByte(raw, soh) >= 0 {
			return soh
		}
		if bytes.IndexByte(raw, pipe) >= 0 {
			return pipe
		}
		return '\n'
	}
}

func splitFields(raw []byte, sep byte) [][]byte {
	if sep == '\n' {
		// Treat \r\n as a single separator by trimming a trailing \r from
		// every field produced by splitting on \n.
		parts := bytes.Split(raw, []byte{'\n'})
		out := make([][]byte, len(parts))
		for i, p := range parts {
			out[i] = bytes.TrimSuffix(p, []byte{'\r'})
		}
		return out
	}
	return bytes.Split(raw, []byte{sep})
}

func parseTag(b []byte) (int, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return 0, false
	}
	return n, true
}
