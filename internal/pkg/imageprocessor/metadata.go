package imageprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/internal/pkg/storage"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

var (
	// ErrNotFound is returned when the source file does not exist
	ErrNotFound = storage.ErrNotFound
	// ErrUnsupportedFormat is returned when the file is not a decodable raster image
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// maxExtraTagLength drops opaque binary tags (thumbnails, vendor blobs) from the extra map
const maxExtraTagLength = 256

// Extractor reads file stats, container info and EXIF tags of uploaded images
type Extractor struct {
	source storage.Source
}

// NewExtractor creates an extractor that loads files from source
func NewExtractor(source storage.Source) *Extractor {
	return &Extractor{source: source}
}

// Extract loads filePath from the source and extracts its metadata
func (e *Extractor) Extract(ctx context.Context, filePath string) (models.ExtractedMetadata, error) {
	obj, err := e.source.Open(ctx, filePath)
	if err != nil {
		return models.ExtractedMetadata{}, err
	}
	return e.ExtractObject(obj)
}

// ExtractObject extracts metadata from an already loaded object. A broken EXIF block
// is not an error: the tag set stays empty and ExtractionWarning says why.
func (e *Extractor) ExtractObject(obj *storage.Object) (models.ExtractedMetadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(obj.Data))
	if err != nil {
		return models.ExtractedMetadata{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, obj.Name, err)
	}

	meta := models.ExtractedMetadata{
		FileSize:     obj.Size,
		MimeType:     DetectMimeType(format, obj.Data),
		Format:       strings.ToUpper(format),
		ColorModel:   colorModelName(cfg.ColorModel),
		Width:        cfg.Width,
		Height:       cfg.Height,
		CreatedTime:  obj.CreatedAt,
		ModifiedTime: obj.ModifiedAt,
	}

	tags, warning := readExif(obj.Data)
	meta.Tags = tags
	meta.ExtractionWarning = warning
	if warning != "" {
		log.Warnf("[Metadata] %s: %s", obj.Path, warning)
	}

	return meta, nil
}

// readExif decodes the EXIF block. A file without EXIF yields empty tags and no warning.
func readExif(data []byte) (models.ExifTags, string) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		if isMissingExif(err) {
			return models.ExifTags{}, ""
		}
		if x == nil || exif.IsCriticalError(err) {
			return models.ExifTags{}, fmt.Sprintf("EXIF extraction failed: %v", err)
		}
		// non critical: keep what was decoded
		tags := collectTags(x)
		return tags, fmt.Sprintf("EXIF partially decoded: %v", err)
	}
	return collectTags(x), ""
}

func isMissingExif(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return strings.Contains(err.Error(), "failed to find exif intro marker")
}

type tagWalker struct {
	tags map[string]string
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if name == exif.MakerNote {
		return nil
	}
	value := tagString(tag)
	if value == "" || len(value) > maxExtraTagLength {
		return nil
	}
	w.tags[string(name)] = value
	return nil
}

func collectTags(x *exif.Exif) models.ExifTags {
	walker := &tagWalker{tags: make(map[string]string)}
	if err := x.Walk(walker); err != nil {
		log.Debugf("[Metadata] EXIF walk stopped: %v", err)
	}

	tags := models.ExifTags{
		Make:              take(walker.tags, exif.Make),
		Model:             take(walker.tags, exif.Model),
		Software:          take(walker.tags, exif.Software),
		ExposureTime:      take(walker.tags, exif.ExposureTime),
		FNumber:           take(walker.tags, exif.FNumber),
		ISOSpeedRatings:   take(walker.tags, exif.ISOSpeedRatings),
		FocalLength:       take(walker.tags, exif.FocalLength),
		DateTimeOriginal:  take(walker.tags, exif.DateTimeOriginal),
		DateTimeDigitized: take(walker.tags, exif.DateTimeDigitized),
		ColorSpace:        take(walker.tags, exif.ColorSpace),
		WhiteBalance:      take(walker.tags, exif.WhiteBalance),
	}

	if lat, long, err := x.LatLong(); err == nil {
		tags.HasGPS = true
		tags.GPSData = fmt.Sprintf("%.6f,%.6f", lat, long)
	} else if _, ok := walker.tags[string(exif.GPSLatitude)]; ok {
		tags.HasGPS = true
	} else if _, ok := walker.tags[string(exif.GPSInfoIFDPointer)]; ok {
		tags.HasGPS = true
	}

	if len(walker.tags) > 0 {
		tags.Extra = walker.tags
	}
	return tags
}

// take removes name from tags and returns its value
func take(tags map[string]string, name exif.FieldName) string {
	value := tags[string(name)]
	delete(tags, string(name))
	return value
}

// tagString renders a tag value without the JSON quoting goexif adds
func tagString(tag *tiff.Tag) string {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimSpace(strings.TrimRight(s, "\x00"))
		}
	}
	return strings.TrimSpace(strings.Trim(tag.String(), `"`))
}
