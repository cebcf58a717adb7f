package models

// ImageRef identifies an image across all authenticity tables
type ImageRef struct {
	ImageID   string `json:"image_id"`
	ImageType string `json:"image_type"`
}

// String returns "<type>:<id>"
func (r ImageRef) String() string {
	return r.ImageType + ":" + r.ImageID
}

// ImageSubmission is an uploaded asset as handed over by the upload application.
// The verification core only reads it.
type ImageSubmission struct {
	ImageID    string `json:"image_id" validate:"required,max=64"`
	ImageType  string `json:"image_type" validate:"required,max=50"`
	FilePath   string `json:"file_path" validate:"required,max=512"`
	UploaderID uint   `json:"user_id" validate:"required"`
	TutorialID *uint  `json:"tutorial_id,omitempty"`
}

// Ref returns the image reference of the submission
func (s ImageSubmission) Ref() ImageRef {
	return ImageRef{ImageID: s.ImageID, ImageType: s.ImageType}
}
