package provenance

import "github.com/ManuelReschke/PixelProof/app/models"

// Tool is a known editing application and the software-tag substrings that identify it
type Tool struct {
	Name       string
	Signatures []string
	Severity   models.SeverityClass
}

// DefaultTools returns the built-in registry of editing applications
func DefaultTools() []Tool {
	return []Tool{
		{Name: "Adobe Photoshop", Signatures: []string{"Adobe Photoshop", "Photoshop"}, Severity: models.SeverityProfessional},
		{Name: "GIMP", Signatures: []string{"GIMP", "GNU Image Manipulation Program"}, Severity: models.SeverityProfessional},
		{Name: "Canva", Signatures: []string{"Canva"}, Severity: models.SeverityProfessional},
		{Name: "Adobe Lightroom", Signatures: []string{"Adobe Lightroom", "Lightroom"}, Severity: models.SeverityProfessional},
		{Name: "Paint.NET", Signatures: []string{"Paint.NET"}, Severity: models.SeverityProfessional},
		{Name: "Pixlr", Signatures: []string{"Pixlr"}, Severity: models.SeverityProfessional},
		{Name: "PicsArt", Signatures: []string{"PicsArt"}, Severity: models.SeverityMobile},
		{Name: "Facetune", Signatures: []string{"Facetune"}, Severity: models.SeverityMobile},
		{Name: "VSCO", Signatures: []string{"VSCO"}, Severity: models.SeverityMobile},
		{Name: "Snapseed", Signatures: []string{"Snapseed"}, Severity: models.SeverityMobile},
		{Name: "Instagram", Signatures: []string{"Instagram"}, Severity: models.SeverityMobile},
		{Name: "FotoJet", Signatures: []string{"FotoJet"}, Severity: models.SeverityMobile},
		{Name: "Fotor", Signatures: []string{"Fotor"}, Severity: models.SeverityMobile},
	}
}
