// Package testutil builds image fixtures for tests: patterned rasters, encoded files and
// JPEGs carrying a handcrafted EXIF block.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// EXIF tag ids used by the fixtures
const (
	TagMake             uint16 = 0x010F
	TagModel            uint16 = 0x0110
	TagSoftware         uint16 = 0x0131
	TagExifIFDPointer   uint16 = 0x8769
	TagDateTimeOriginal uint16 = 0x9003
	TagColorSpace       uint16 = 0xA001
	TagWhiteBalance     uint16 = 0xA403
)

// Exif describes the tags written into a fixture. Empty strings and zero values are omitted.
type Exif struct {
	Make             string
	Model            string
	Software         string
	DateTimeOriginal string
	ColorSpace       uint16
	WhiteBalance     uint16
}

// PatternImage draws blocks of strongly contrasting gray levels. seed shifts the layout so
// different seeds give visually different images.
func PatternImage(width, height, seed int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	block := width / 8
	if block < 1 {
		block = 1
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			bx, by := x/block, y/block
			v := uint8(40)
			if (bx*7+by*3+seed*5)%3 == 0 {
				v = 215
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	return img
}

// NoisyPattern is PatternImage with deterministic per-pixel noise. The block layout keeps
// the perceptual hash stable while the noise keeps encoded files from compressing away.
func NoisyPattern(width, height, seed int) *image.NRGBA {
	img := PatternImage(width, height, seed)
	state := uint32(seed)*2654435761 + 1
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			state = state*1664525 + 1013904223
			noise := int(state>>24)%49 - 24
			img.Pix[i+c] = clampByte(int(img.Pix[i+c]) + noise)
		}
	}
	return img
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Invert returns the color negative of img
func Invert(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		out.Pix[i] = 255 - img.Pix[i]
		out.Pix[i+1] = 255 - img.Pix[i+1]
		out.Pix[i+2] = 255 - img.Pix[i+2]
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// EncodePNG encodes img as PNG
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// EncodeJPEG encodes img as JPEG and, when tags is not nil, inserts an EXIF APP1 segment
func EncodeJPEG(t testing.TB, img image.Image, quality int, tags *Exif) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if tags == nil {
		return buf.Bytes()
	}
	return InsertAPP1(buf.Bytes(), append([]byte("Exif\x00\x00"), tags.TIFF()...))
}

// InsertAPP1 places an APP1 segment carrying payload right after the JPEG SOI marker
func InsertAPP1(jpg []byte, payload []byte) []byte {
	segment := make([]byte, 4, 4+len(payload))
	segment[0], segment[1] = 0xFF, 0xE1
	binary.BigEndian.PutUint16(segment[2:], uint16(len(payload)+2))
	segment = append(segment, payload...)

	out := make([]byte, 0, len(jpg)+len(segment))
	out = append(out, jpg[:2]...)
	out = append(out, segment...)
	return append(out, jpg[2:]...)
}

// WriteFile writes data below dir and returns the full path
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// TIFF renders the tags as a little endian TIFF structure with IFD0 and an Exif sub IFD
func (e *Exif) TIFF() []byte {
	var ifd0, sub []tiffEntry
	if e.Make != "" {
		ifd0 = append(ifd0, asciiEntry(TagMake, e.Make))
	}
	if e.Model != "" {
		ifd0 = append(ifd0, asciiEntry(TagModel, e.Model))
	}
	if e.Software != "" {
		ifd0 = append(ifd0, asciiEntry(TagSoftware, e.Software))
	}
	if e.DateTimeOriginal != "" {
		sub = append(sub, asciiEntry(TagDateTimeOriginal, e.DateTimeOriginal))
	}
	if e.ColorSpace != 0 {
		sub = append(sub, shortEntry(TagColorSpace, e.ColorSpace))
	}
	if e.WhiteBalance != 0 {
		sub = append(sub, shortEntry(TagWhiteBalance, e.WhiteBalance))
	}

	const ifd0Start = 8
	if len(sub) > 0 {
		ifd0 = append(ifd0, longEntry(TagExifIFDPointer, 0))
	}
	first := encodeIFD(ifd0Start, ifd0)
	if len(sub) > 0 {
		subStart := uint32(ifd0Start + len(first))
		ifd0[len(ifd0)-1] = longEntry(TagExifIFDPointer, subStart)
		first = encodeIFD(ifd0Start, ifd0)
		first = append(first, encodeIFD(subStart, sub)...)
	}

	header := []byte{'I', 'I', 42, 0, ifd0Start, 0, 0, 0}
	return append(header, first...)
}

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func asciiEntry(tag uint16, s string) tiffEntry {
	v := append([]byte(s), 0)
	return tiffEntry{tag: tag, typ: 2, count: uint32(len(v)), value: v}
}

func shortEntry(tag uint16, val uint16) tiffEntry {
	v := make([]byte, 2)
	binary.LittleEndian.PutUint16(v, val)
	return tiffEntry{tag: tag, typ: 3, count: 1, value: v}
}

func longEntry(tag uint16, val uint32) tiffEntry {
	v := make([]byte, 4)
	binary.LittleEndian.PutUint32(v, val)
	return tiffEntry{tag: tag, typ: 4, count: 1, value: v}
}

// encodeIFD lays out one IFD starting at offset start, values longer than four bytes
// go into a data area directly behind the entry table
func encodeIFD(start uint32, entries []tiffEntry) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	le := binary.LittleEndian
	tableLen := 2 + 12*len(entries) + 4
	dataStart := start + uint32(tableLen)

	table := make([]byte, 0, tableLen)
	var data []byte
	table = le.AppendUint16(table, uint16(len(entries)))
	for _, e := range entries {
		table = le.AppendUint16(table, e.tag)
		table = le.AppendUint16(table, e.typ)
		table = le.AppendUint32(table, e.count)
		if len(e.value) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.value)
			table = append(table, inline...)
			continue
		}
		table = le.AppendUint32(table, dataStart+uint32(len(data)))
		data = append(data, e.value...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	table = le.AppendUint32(table, 0)
	return append(table, data...)
}
