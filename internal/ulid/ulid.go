// Package ulid generates and parses 128-bit, lexically sortable identifiers
// made of a 48-bit millisecond timestamp followed by 80 random bits, rendered
// as 26 Crockford base32 characters.
//
// Identifiers created in the same millisecond are not ordered relative to each
// other; there is no monotonic counter.
package ulid

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	// EncodedSize is the length of the canonical string form.
	EncodedSize = 26

	alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

	maxTime = 1<<48 - 1
)

var (
	ErrTimeOverflow = errors.New("ulid: timestamp exceeds 48 bits")
	ErrEntropy      = errors.New("ulid: reading entropy")
)

// decoding maps every byte to its 5-bit value, or 0xFF when it is not part of
// the alphabet. Lowercase letters decode like their uppercase form.
var decoding = func() [256]byte {
	var table [256]byte
	for i := range table {
		table[i] = 0xFF
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		table[c] = byte(i)
		if c >= 'A' && c <= 'Z' {
			table[c+('a'-'A')] = byte(i)
		}
	}
	return table
}()

// ULID is the raw 16-byte identifier.
type ULID [16]byte

// Zero is the all-zero identifier.
var Zero ULID

// New builds an identifier from a millisecond timestamp and 10 bytes read from
// entropy.
func New(ms uint64, entropy io.Reader) (ULID, error) {
	var id ULID
	if ms > maxTime {
		return id, ErrTimeOverflow
	}
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)

	if _, err := io.ReadFull(entropy, id[6:]); err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	return id, nil
}

// Generate builds an identifier for now using entropy for the random part.
func Generate(now time.Time, entropy io.Reader) (ULID, error) {
	return New(Timestamp(now), entropy)
}

// Make builds an identifier for the current time using crypto/rand.
func Make() ULID {
	id, err := Generate(time.Now(), rand.Reader)
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return id
}

// Timestamp converts t to milliseconds since the Unix epoch.
func Timestamp(t time.Time) uint64 {
	return uint64(t.UnixMilli())
}

// Parse decodes a 26-character string. It reports false for any other length
// or for characters outside the alphabet; callers validating user input are
// expected to hit that path often.
func Parse(s string) (ULID, bool) {
	var id ULID
	if len(s) != EncodedSize {
		return Zero, false
	}

	var (
		buf  uint32
		bits uint
		n    int
	)
	for i := 0; i < len(s); i++ {
		v := decoding[s[i]]
		if v == 0xFF {
			return Zero, false
		}
		if i == EncodedSize-1 && v&0x3 != 0 {
			// The final two bits are padding and must be zero.
			return Zero, false
		}
		buf = buf<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			if n < len(id) {
				id[n] = byte(buf >> bits)
				n++
			}
			buf &= 1<<bits - 1
		}
	}
	return id, true
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) ULID {
	id, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("ulid: malformed identifier %q", s))
	}
	return id
}

// Encode renders the identifier as 26 uppercase characters. Bits are consumed
// most-significant first in 5-bit groups; the last group holds the final three
// bits padded with zeros.
func (id ULID) Encode() string {
	out := make([]byte, 0, EncodedSize)
	var (
		buf  uint32
		bits uint
	)
	for _, b := range id {
		buf = buf<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[(buf>>bits)&0x1F])
		}
		buf &= 1<<bits - 1
	}
	if bits > 0 {
		out = append(out, alphabet[(buf<<(5-bits))&0x1F])
	}
	return string(out)
}

func (id ULID) String() string {
	return id.Encode()
}

// Time returns the millisecond timestamp embedded in the identifier.
func (id ULID) Time() uint64 {
	return uint64(id[5]) | uint64(id[4])<<8 | uint64(id[3])<<16 |
		uint64(id[2])<<24 | uint64(id[1])<<32 | uint64(id[0])<<40
}

// TimeValue returns the embedded timestamp as a time.Time.
func (id ULID) TimeValue() time.Time {
	return time.UnixMilli(int64(id.Time()))
}

// Compare orders identifiers byte-wise, which matches the order of their
// string forms.
func (id ULID) Compare(other ULID) int {
	return bytes.Compare(id[:], other[:])
}

// IsZero reports whether id is the zero identifier.
func (id ULID) IsZero() bool {
	return id == Zero
}

// MarshalText implements encoding.TextMarshaler.
func (id ULID) MarshalText() ([]byte, error) {
	return []byte(id.Encode()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ULID) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("ulid: malformed identifier %q", text)
	}
	*id = parsed
	return nil
}
