package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSON stores free-form JSON documents in the database
type JSON json.RawMessage

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}

	// Validate JSON before returning
	var temp interface{}
	if err := json.Unmarshal(j, &temp); err != nil {
		// If JSON is invalid, return empty JSON object
		return "{}", nil
	}

	return string(j), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON("{}")
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	*j = JSON(bytes)
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = JSON(data)
	return nil
}

// NewJSON marshals v into a JSON column value. Marshal failures yield an empty object.
func NewJSON(v interface{}) JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return JSON("{}")
	}
	return JSON(data)
}

// ExtractedMetadata is the per-run snapshot of file stats, container info and embedded tags.
// It is stored as an opaque JSON blob on the authenticity record and never mutated afterwards.
type ExtractedMetadata struct {
	FileSize          int64     `json:"file_size"`
	MimeType          string    `json:"mime_type"`
	Format            string    `json:"format"`
	ColorModel        string    `json:"mode,omitempty"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	CreatedTime       time.Time `json:"created_time"`
	ModifiedTime      time.Time `json:"modified_time"`
	Tags              ExifTags  `json:"exif"`
	ExtractionWarning string    `json:"extraction_warning,omitempty"`
}

// ExifTags holds the EXIF fields the pipeline reads plus every other tag found in Extra.
type ExifTags struct {
	Make              string            `json:"make,omitempty"`
	Model             string            `json:"model,omitempty"`
	Software          string            `json:"software,omitempty"`
	ExposureTime      string            `json:"exposure_time,omitempty"`
	FNumber           string            `json:"f_number,omitempty"`
	ISOSpeedRatings   string            `json:"iso_speed_ratings,omitempty"`
	FocalLength       string            `json:"focal_length,omitempty"`
	DateTimeOriginal  string            `json:"datetime_original,omitempty"`
	DateTimeDigitized string            `json:"datetime_digitized,omitempty"`
	ColorSpace        string            `json:"color_space,omitempty"`
	WhiteBalance      string            `json:"white_balance,omitempty"`
	HasGPS            bool              `json:"has_gps"`
	GPSData           string            `json:"gps_data,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// IsEmpty reports whether no tag at all was found
func (t ExifTags) IsEmpty() bool {
	return t.Make == "" && t.Model == "" && t.Software == "" &&
		t.ExposureTime == "" && t.FNumber == "" && t.ISOSpeedRatings == "" &&
		t.FocalLength == "" && t.DateTimeOriginal == "" && t.DateTimeDigitized == "" &&
		t.ColorSpace == "" && t.WhiteBalance == "" && !t.HasGPS && len(t.Extra) == 0
}

// Pixels returns width*height, 0 when dimensions are unknown
func (m ExtractedMetadata) Pixels() int64 {
	if m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	return int64(m.Width) * int64(m.Height)
}
