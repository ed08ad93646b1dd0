// ABOUTME: Image record types shared by ingestion, retrieval and the adapters
// ABOUTME: Defines Metadata, ManifestRecord, Caption and Answer structures
package models

import "strings"

// Metadata describes one captioned image
type Metadata struct {
	ImageID   string   `json:"image_id"`
	ImagePath string   `json:"image_path"`
	Caption   string   `json:"caption"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location"`
}

// ManifestRecord is one row of an image or caption manifest file.
// Rows written before captioning only carry Image.
type ManifestRecord struct {
	ImageID  string   `json:"image_id,omitempty"`
	Image    string   `json:"image"`
	Caption  string   `json:"caption,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Location string   `json:"location,omitempty"`
}

// NeedsCaption reports whether the record still lacks a caption or tags
func (r ManifestRecord) NeedsCaption() bool {
	return strings.TrimSpace(r.Caption) == "" || len(r.Tags) == 0
}

// Annotated reports whether the record carries everything indexing needs
func (r ManifestRecord) Annotated() bool {
	return r.ImageID != "" && strings.TrimSpace(r.Caption) != ""
}

// Metadata converts the manifest row into retrieval metadata
func (r ManifestRecord) Metadata() Metadata {
	tags := make([]string, len(r.Tags))
	copy(tags, r.Tags)
	return Metadata{
		ImageID:   r.ImageID,
		ImagePath: r.Image,
		Caption:   r.Caption,
		Tags:      tags,
		Location:  r.Location,
	}
}

// Caption is the structured record recovered from a vision model response
type Caption struct {
	Caption string   `json:"caption"`
	Tags    []string `json:"tags"`
}

// Answer is the result of a grounded question
type Answer struct {
	Response string     `json:"response"`
	Sources  []Metadata `json:"sources"`
}
