// ABOUTME: Manifest ingestion: load, verify, caption, and index image records
// ABOUTME: Per-item failures are collected in reports and never abort a batch
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/urban-lens/internal/models"
	"github.com/rs/zerolog"
)

// ItemFailure records why one manifest row was skipped
type ItemFailure struct {
	ImageID string
	Image   string
	Err     error
}

func (f ItemFailure) String() string {
	name := f.Image
	if name == "" {
		name = f.ImageID
	}
	return fmt.Sprintf("%s: %v", name, f.Err)
}

// CaptionReport is the outcome of a caption pass
type CaptionReport struct {
	Records  []models.ManifestRecord
	Failures []ItemFailure
}

// IngestReport is the outcome of an indexing pass
type IngestReport struct {
	Indexed  int
	Failures []ItemFailure
}

// Ingestor turns manifest rows into indexed elements
type Ingestor struct {
	embedder  Embedder
	index     VectorIndex
	captioner *Captioner
	cache     CaptionCache
	imageRoot string
	log       zerolog.Logger
}

// NewIngestor creates an ingestor that embeds with embedder and writes to index
func NewIngestor(embedder Embedder, index VectorIndex, lg zerolog.Logger) *Ingestor {
	return &Ingestor{
		embedder: embedder,
		index:    index,
		log:      lg,
	}
}

// SetCaptioner enables the caption pass
func (in *Ingestor) SetCaptioner(c *Captioner) {
	in.captioner = c
}

// SetCaptionCache makes the caption pass reuse earlier captions
func (in *Ingestor) SetCaptionCache(cache CaptionCache) {
	in.cache = cache
}

// SetImageRoot resolves relative image paths against root
func (in *Ingestor) SetImageRoot(root string) {
	in.imageRoot = root
}

// LoadManifest reads a JSON array of manifest records
func LoadManifest(path string) ([]models.ManifestRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var records []models.ManifestRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return records, nil
}

// WriteManifest writes records as an indented JSON array
func WriteManifest(path string, records []models.ManifestRecord) error {
	if records == nil {
		records = []models.ManifestRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// VerifyManifest checks that every record's image exists and stops at the first missing one
func VerifyManifest(records []models.ManifestRecord, root string) error {
	for _, r := range records {
		if r.Image == "" {
			return &NotFoundError{Path: "(empty image path)"}
		}
		path := ResolveImagePath(root, r.Image)
		if _, err := os.Stat(path); err != nil {
			return &NotFoundError{Path: path}
		}
	}
	return nil
}

// ResolveImagePath joins relative image paths onto root
func ResolveImagePath(root, image string) string {
	if root == "" || filepath.IsAbs(image) {
		return image
	}
	return filepath.Join(root, image)
}

// StableImageID derives an image_id from the image path so re-runs agree
func StableImageID(image string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(image)).String()
}

// CaptionManifest fills caption and tags for every record that lacks them.
// Records that fail captioning or extraction are left out of the report's
// Records and listed in Failures.
func (in *Ingestor) CaptionManifest(ctx context.Context, records []models.ManifestRecord) CaptionReport {
	report := CaptionReport{Records: make([]models.ManifestRecord, 0, len(records))}

	for _, record := range records {
		if strings.TrimSpace(record.Image) == "" && (record.ImageID == "" || record.NeedsCaption()) {
			err := &NotFoundError{Path: "(empty image path)"}
			in.log.Warn().Err(err).Str("image_id", record.ImageID).Msg("skipping record")
			report.Failures = append(report.Failures, ItemFailure{ImageID: record.ImageID, Err: err})
			continue
		}
		if record.ImageID == "" {
			record.ImageID = StableImageID(record.Image)
		}

		if !record.NeedsCaption() {
			report.Records = append(report.Records, record)
			continue
		}

		caption, err := in.captionRecord(ctx, record)
		if err != nil {
			in.log.Warn().Err(err).Str("image", record.Image).Msg("skipping image")
			report.Failures = append(report.Failures, ItemFailure{ImageID: record.ImageID, Image: record.Image, Err: err})
			continue
		}

		record.Caption = caption.Caption
		record.Tags = caption.Tags
		report.Records = append(report.Records, record)
		in.log.Info().Str("image", record.Image).Strs("tags", record.Tags).Msg("captioned")
	}

	in.log.Info().
		Int("captioned", len(report.Records)).
		Int("failed", len(report.Failures)).
		Msg("caption pass complete")
	return report
}

func (in *Ingestor) captionRecord(ctx context.Context, record models.ManifestRecord) (models.Caption, error) {
	path := ResolveImagePath(in.imageRoot, record.Image)

	if in.cache != nil {
		if cached, ok := in.cache.Lookup(path); ok {
			in.log.Debug().Str("image", path).Msg("caption cache hit")
			return cached, nil
		}
	}

	if in.captioner == nil {
		return models.Caption{}, ErrNoCaptioner
	}

	// A failed warm-up is not fatal: the real request reports its own error
	if err := in.captioner.Warm(ctx); err != nil {
		in.log.Warn().Err(err).Msg("vision model warm-up failed")
	}

	raw, err := in.captioner.Generate(ctx, path)
	if err != nil {
		return models.Caption{}, err
	}

	caption, err := ExtractCaption(raw)
	if err != nil {
		return models.Caption{}, err
	}
	if caption.Caption == "" {
		return models.Caption{}, &ExtractionError{Reason: "missing caption field"}
	}

	if in.cache != nil {
		if err := in.cache.Store(path, caption); err != nil {
			in.log.Warn().Err(err).Str("image", path).Msg("caption cache write failed")
		}
	}
	return caption, nil
}

// IndexRecords embeds every annotated record and adds it to the index
func (in *Ingestor) IndexRecords(ctx context.Context, records []models.ManifestRecord) IngestReport {
	var report IngestReport

	for _, record := range records {
		if err := in.indexRecord(ctx, record); err != nil {
			in.log.Warn().Err(err).Str("image_id", record.ImageID).Str("image", record.Image).Msg("not indexed")
			report.Failures = append(report.Failures, ItemFailure{ImageID: record.ImageID, Image: record.Image, Err: err})
			continue
		}
		report.Indexed++
	}

	in.log.Info().
		Int("indexed", report.Indexed).
		Int("failed", len(report.Failures)).
		Int("index_size", in.index.Len()).
		Msg("indexing complete")
	return report
}

func (in *Ingestor) indexRecord(ctx context.Context, record models.ManifestRecord) error {
	if !record.Annotated() {
		return ErrIncompleteRecord
	}

	meta := record.Metadata()
	vector, err := in.embedder.Embed(ctx, CanonicalText(meta))
	if err != nil {
		return &ModelInvocationError{Op: "embed " + meta.ImageID, Err: err}
	}

	return in.index.Add(models.Element{
		ID:        meta.ImageID,
		Embedding: vector,
		Metadata:  meta,
	})
}

// IngestFile loads a caption manifest and indexes it
func (in *Ingestor) IngestFile(ctx context.Context, path string) (IngestReport, error) {
	records, err := LoadManifest(path)
	if err != nil {
		return IngestReport{}, err
	}
	in.log.Info().Str("manifest", path).Int("records", len(records)).Msg("manifest loaded")
	return in.IndexRecords(ctx, records), nil
}
