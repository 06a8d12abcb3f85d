package format

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// StringValue is a decoded string field before constant-pool resolution.
// When Tag is StringConstantPool the caller resolves PoolID against the
// chunk's java.lang.String pool; otherwise S carries the decoded text.
type StringValue struct {
	Tag    byte
	S      string
	PoolID uint64
}

// MaxStringLen bounds decoded string sizes to keep malformed recordings
// from forcing huge allocations.
const MaxStringLen = 1 << 26

// ReadString decodes a string value from b at off and returns the value and
// the number of bytes consumed.
func ReadString(b []byte, off int) (StringValue, int, error) {
	if off >= len(b) {
		return StringValue{}, 0, ErrTruncated
	}
	tag := b[off]
	n := 1
	switch tag {
	case StringNull, StringEmpty:
		return StringValue{Tag: tag}, n, nil
	case StringConstantPool:
		id, m, err := Uvarint(b, off+n)
		if err != nil {
			return StringValue{}, 0, err
		}
		return StringValue{Tag: tag, PoolID: id}, n + m, nil
	case StringUTF8:
		cnt, m, err := Uvarint(b, off+n)
		if err != nil {
			return StringValue{}, 0, err
		}
		n += m
		if cnt > MaxStringLen {
			return StringValue{}, 0, ErrSanityLimit
		}
		if off+n+int(cnt) > len(b) {
			return StringValue{}, 0, ErrTruncated
		}
		s := string(b[off+n : off+n+int(cnt)])
		return StringValue{Tag: tag, S: s}, n + int(cnt), nil
	case StringCharArray:
		cnt, m, err := Uvarint(b, off+n)
		if err != nil {
			return StringValue{}, 0, err
		}
		n += m
		if cnt > MaxStringLen {
			return StringValue{}, 0, ErrSanityLimit
		}
		units := make([]uint16, 0, cnt)
		for i := uint64(0); i < cnt; i++ {
			u, m, err := Uvarint(b, off+n)
			if err != nil {
				return StringValue{}, 0, err
			}
			n += m
			units = append(units, uint16(u))
		}
		return StringValue{Tag: tag, S: string(utf16.Decode(units))}, n, nil
	case StringLatin1:
		cnt, m, err := Uvarint(b, off+n)
		if err != nil {
			return StringValue{}, 0, err
		}
		n += m
		if cnt > MaxStringLen {
			return StringValue{}, 0, ErrSanityLimit
		}
		if off+n+int(cnt) > len(b) {
			return StringValue{}, 0, ErrTruncated
		}
		s, err := charmap.ISO8859_1.NewDecoder().Bytes(b[off+n : off+n+int(cnt)])
		if err != nil {
			return StringValue{}, 0, err
		}
		return StringValue{Tag: tag, S: string(s)}, n + int(cnt), nil
	default:
		return StringValue{}, 0, ErrBadStringTag
	}
}

// AppendUTF8String appends a string value to dst using the null, empty or
// UTF-8 encoding. The writer re-encodes every emitted string as UTF-8; the
// reader accepts all five encodings, so round-trips stay lossless.
func AppendUTF8String(dst []byte, s string, null bool) []byte {
	if null {
		return append(dst, StringNull)
	}
	if s == "" {
		return append(dst, StringEmpty)
	}
	dst = append(dst, StringUTF8)
	dst = AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// AppendPoolString appends a constant-pool string reference to dst.
func AppendPoolString(dst []byte, id uint64) []byte {
	dst = append(dst, StringConstantPool)
	return AppendUvarint(dst, id)
}
