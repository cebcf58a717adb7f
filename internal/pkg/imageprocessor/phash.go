package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// HashSize is the side of the average hash grid, HashSize*HashSize bits in total
const HashSize = 16

// ErrDecode is returned when image bytes cannot be decoded into pixels
var ErrDecode = errors.New("image decode failed")

// Fingerprint is a perceptual hash. The zero value is the empty fingerprint.
type Fingerprint struct {
	hash *goimagehash.ExtImageHash
}

// ParseFingerprint parses a fingerprint produced by Fingerprint.String
func ParseFingerprint(s string) (Fingerprint, error) {
	if s == "" {
		return Fingerprint{}, nil
	}
	if !wellFormed(s) {
		return Fingerprint{}, fmt.Errorf("parse fingerprint %q: malformed", s)
	}
	hash, err := goimagehash.ExtImageHashFromString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	return Fingerprint{hash: hash}, nil
}

// wellFormed checks for the "<kind>:<hex>" layout written by ToString, hex in whole 64 bit words
func wellFormed(s string) bool {
	digits := s
	if len(s) > 2 && s[1] == ':' {
		digits = s[2:]
	}
	if digits == "" || len(digits)%16 != 0 {
		return false
	}
	for _, c := range digits {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no hash could be computed
func (f Fingerprint) IsEmpty() bool {
	return f.hash == nil
}

// String encodes the fingerprint for storage, "" for the empty fingerprint
func (f Fingerprint) String() string {
	if f.hash == nil {
		return ""
	}
	return f.hash.ToString()
}

// Bits returns the hash length in bits
func (f Fingerprint) Bits() int {
	if f.hash == nil {
		return 0
	}
	return f.hash.Bits()
}

// Distance returns the Hamming distance to other
func (f Fingerprint) Distance(other Fingerprint) (int, error) {
	if f.hash == nil || other.hash == nil {
		return 0, errors.New("distance of an empty fingerprint")
	}
	return f.hash.Distance(other.hash)
}

// Similarity returns 1 - hamming/bits rounded to four decimals
func (f Fingerprint) Similarity(other Fingerprint) (float64, error) {
	distance, err := f.Distance(other)
	if err != nil {
		return 0, err
	}
	bits := f.Bits()
	if bits == 0 {
		return 0, errors.New("fingerprint without bits")
	}
	sim := 1 - float64(distance)/float64(bits)
	return math.Round(sim*10000) / 10000, nil
}

// Hasher computes average-hash fingerprints
type Hasher struct {
	size int
}

// NewHasher creates a hasher producing HashSize x HashSize average hashes
func NewHasher() *Hasher {
	return &Hasher{size: HashSize}
}

// Hash fingerprints a decoded image
func (h *Hasher) Hash(img image.Image) (Fingerprint, error) {
	hash, err := goimagehash.ExtAverageHash(img, h.size, h.size)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("average hash: %w", err)
	}
	return Fingerprint{hash: hash}, nil
}

// HashBytes decodes data and fingerprints the result
func (h *Hasher) HashBytes(data []byte) (Fingerprint, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return h.Hash(img)
}
