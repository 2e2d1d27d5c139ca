package core

import (
	"encoding/json"
	"sort"

	"lukechampine.com/blake3"
)

// ContentHash returns the BLAKE3 hash (hex-encoded) of the canonical JSON
// serialization of content: object keys sorted, no insignificant
// whitespace. Two memories with identical content across the system
// produce identical hashes.
func ContentHash(content TypedContent) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", err
	}
	canonical, err := canonicalizeJSON(raw)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(canonical)
	return encodeHex(sum[:]), nil
}

// canonicalizeJSON re-marshals arbitrary JSON with map keys sorted at
// every level. encoding/json already sorts map[string]any keys when
// marshaling, but struct field order follows declaration order rather
// than name order, so a round-trip through map[string]any normalizes
// both shapes to the same byte sequence.
func canonicalizeJSON(raw []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return marshalSorted(v)
}

func marshalSorted(v any) ([]byte, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := marshalSorted(t[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	case []any:
		buf := []byte{'['}
		for i, e := range t {
			if i > 0 {
				buf = append(buf, ',')
			}
			eb, err := marshalSorted(e)
			if err != nil {
				return nil, err
			}
			buf = append(buf, eb...)
		}
		buf = append(buf, ']')
		return buf, nil
	default:
		return json.Marshal(t)
	}
}

const hexDigits = "0123456789abcdef"

func encodeHex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}
