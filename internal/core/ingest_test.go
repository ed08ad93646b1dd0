// ABOUTME: Tests for manifest loading, verification, captioning and indexing
// ABOUTME: Uses stub models and the in-memory vector store
package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/urban-lens/internal/models"
	"github.com/harper/urban-lens/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotatedRecords() []models.ManifestRecord {
	return []models.ManifestRecord{
		{ImageID: "1", Image: "images/flood.jpg", Caption: "Flooded street", Tags: []string{"flooding", "damaged road"}, Location: "Riverside"},
		{ImageID: "2", Image: "images/walk.jpg", Caption: "Clean sidewalk", Tags: []string{"pedestrian lane"}, Location: "Main St"},
		{ImageID: "3", Image: "images/bins.jpg", Caption: "Overflowing bins", Tags: []string{"trash"}, Location: "Market Square"},
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"image": "images/a.jpg"},
		{"image_id": "2", "image": "images/b.jpg", "caption": "c", "tags": ["t"], "location": "Main St"}
	]`), 0644))

	records, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "images/a.jpg", records[0].Image)
	assert.True(t, records[0].NeedsCaption())
	assert.Equal(t, "Main St", records[1].Location)
}

func TestLoadManifest_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")
	_, err := LoadManifest(missing)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.Path)
}

func TestLoadManifest_NotAnArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"image": "a.jpg"}`), 0644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "caption_manifest.json")
	require.NoError(t, WriteManifest(path, annotatedRecords()))

	records, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, annotatedRecords(), records)
}

func TestVerifyManifest(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.jpg")
	writeImage(t, dir, "b.jpg")

	ok := []models.ManifestRecord{{Image: "a.jpg"}, {Image: "b.jpg"}}
	assert.NoError(t, VerifyManifest(ok, dir))

	bad := []models.ManifestRecord{{Image: "a.jpg"}, {Image: "gone.jpg"}, {Image: "also-gone.jpg"}}
	err := VerifyManifest(bad, dir)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, filepath.Join(dir, "gone.jpg"), notFound.Path, "should stop at the first missing file")
}

func TestResolveImagePath(t *testing.T) {
	assert.Equal(t, "images/a.jpg", ResolveImagePath("", "images/a.jpg"))
	assert.Equal(t, filepath.Join("/data", "images/a.jpg"), ResolveImagePath("/data", "images/a.jpg"))
	assert.Equal(t, "/abs/a.jpg", ResolveImagePath("/data", "/abs/a.jpg"))
}

func TestStableImageID(t *testing.T) {
	assert.Equal(t, StableImageID("images/a.jpg"), StableImageID("images/a.jpg"))
	assert.NotEqual(t, StableImageID("images/a.jpg"), StableImageID("images/b.jpg"))
}

func TestIndexRecords_ThreeItems(t *testing.T) {
	index := storage.NewVectorStore()
	in := NewIngestor(newKeywordEmbedder(), index, zerolog.Nop())

	report := in.IndexRecords(context.Background(), annotatedRecords())
	assert.Equal(t, 3, report.Indexed)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 3, index.Len())

	for _, id := range []string{"1", "2", "3"} {
		e, ok := index.Get(id)
		require.True(t, ok, "Get(%s)", id)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, id, e.Metadata.ImageID)
	}
	_, ok := index.Get("missing")
	assert.False(t, ok)
}

func TestIndexRecords_EmbedsCanonicalText(t *testing.T) {
	embedder := newKeywordEmbedder()
	in := NewIngestor(embedder, storage.NewVectorStore(), zerolog.Nop())

	in.IndexRecords(context.Background(), annotatedRecords()[:1])
	require.Len(t, embedder.calls, 1)
	assert.Equal(t, "Caption: Flooded street\nTags: flooding, damaged road\nLocation: Riverside", embedder.calls[0])
}

func TestIndexRecords_PartialFailure(t *testing.T) {
	embedder := newKeywordEmbedder()
	embedder.fail["Overflowing bins"] = true
	index := storage.NewVectorStore()
	in := NewIngestor(embedder, index, zerolog.Nop())

	records := append(annotatedRecords(), models.ManifestRecord{Image: "images/raw.jpg"})
	report := in.IndexRecords(context.Background(), records)

	assert.Equal(t, 2, report.Indexed)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, 2, index.Len())

	var invocationErr *ModelInvocationError
	assert.ErrorAs(t, report.Failures[0].Err, &invocationErr)
	assert.Equal(t, "3", report.Failures[0].ImageID)
	assert.ErrorIs(t, report.Failures[1].Err, ErrIncompleteRecord)
	assert.Contains(t, report.Failures[1].String(), "images/raw.jpg")
}

func TestIndexRecords_DimensionMismatchIsPerItem(t *testing.T) {
	index := storage.NewVectorStore()
	require.NoError(t, index.Add(models.Element{ID: "seed", Embedding: []float64{1, 0}}))
	in := NewIngestor(newKeywordEmbedder(), index, zerolog.Nop())

	report := in.IndexRecords(context.Background(), annotatedRecords())
	assert.Equal(t, 0, report.Indexed)
	require.Len(t, report.Failures, 3)
	assert.ErrorIs(t, report.Failures[0].Err, storage.ErrDimensionMismatch)
}

func TestIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caption_manifest.json")
	require.NoError(t, WriteManifest(path, annotatedRecords()))

	index := storage.NewVectorStore()
	in := NewIngestor(newKeywordEmbedder(), index, zerolog.Nop())

	report, err := in.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 3, index.Len())

	_, err = in.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCaptionManifest(t *testing.T) {
	dir := t.TempDir()
	good := writeImage(t, dir, "good.jpg")
	chatty := writeImage(t, dir, "chatty.jpg")
	garbled := writeImage(t, dir, "garbled.jpg")
	broken := writeImage(t, dir, "broken.jpg")

	vision := newStubVision()
	vision.replies[good] = `{"caption":"Flooded underpass","tags":["flooding"]}`
	vision.replies[chatty] = `Sure! {"caption":"Trash on curb","tags":["trash"]} Hope this helps.`
	vision.replies[garbled] = `I see a road with potholes.`
	vision.errs[broken] = errors.New("model crashed")

	in := NewIngestor(newKeywordEmbedder(), storage.NewVectorStore(), zerolog.Nop())
	in.SetCaptioner(NewCaptioner(vision, zerolog.Nop()))

	records := []models.ManifestRecord{
		{Image: good, Location: "Underpass"},
		{Image: chatty, Location: "Market"},
		{Image: garbled, Location: "Bridge"},
		{Image: broken, Location: "Depot"},
		{Image: filepath.Join(dir, "missing.jpg"), Location: "Nowhere"},
		{ImageID: "pre", Image: "already.jpg", Caption: "Existing caption", Tags: []string{"kept"}},
	}

	report := in.CaptionManifest(context.Background(), records)

	require.Len(t, report.Records, 3)
	assert.Equal(t, "Flooded underpass", report.Records[0].Caption)
	assert.Equal(t, []string{"flooding"}, report.Records[0].Tags)
	assert.Equal(t, "Underpass", report.Records[0].Location)
	assert.Equal(t, StableImageID(good), report.Records[0].ImageID)
	assert.Equal(t, "Trash on curb", report.Records[1].Caption)
	assert.Equal(t, "pre", report.Records[2].ImageID)
	assert.Equal(t, "Existing caption", report.Records[2].Caption)

	require.Len(t, report.Failures, 3)
	var extractionErr *ExtractionError
	assert.ErrorAs(t, report.Failures[0].Err, &extractionErr)
	var invocationErr *ModelInvocationError
	assert.ErrorAs(t, report.Failures[1].Err, &invocationErr)
	var notFound *NotFoundError
	assert.ErrorAs(t, report.Failures[2].Err, &notFound)

	assert.Equal(t, 1, vision.warmCalls, "vision model should be warmed exactly once")
	assert.NotContains(t, vision.described, "already.jpg")
}

func TestCaptionManifest_EmptyCaptionField(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.jpg")

	vision := newStubVision()
	vision.replies[img] = `{"description":"wrong key","tags":["x"]}`

	in := NewIngestor(newKeywordEmbedder(), storage.NewVectorStore(), zerolog.Nop())
	in.SetCaptioner(NewCaptioner(vision, zerolog.Nop()))

	report := in.CaptionManifest(context.Background(), []models.ManifestRecord{{Image: img}})
	assert.Empty(t, report.Records)
	require.Len(t, report.Failures, 1)
	var extractionErr *ExtractionError
	assert.ErrorAs(t, report.Failures[0].Err, &extractionErr)
}

func TestCaptionManifest_UsesCache(t *testing.T) {
	dir := t.TempDir()
	cachedImg := writeImage(t, dir, "cached.jpg")
	freshImg := writeImage(t, dir, "fresh.jpg")

	cache := newMemCache()
	cache.entries[cachedImg] = models.Caption{Caption: "From cache", Tags: []string{"cached"}}

	vision := newStubVision()
	vision.replies[freshImg] = `{"caption":"Fresh","tags":["new"]}`

	in := NewIngestor(newKeywordEmbedder(), storage.NewVectorStore(), zerolog.Nop())
	in.SetCaptioner(NewCaptioner(vision, zerolog.Nop()))
	in.SetCaptionCache(cache)

	report := in.CaptionManifest(context.Background(), []models.ManifestRecord{{Image: cachedImg}, {Image: freshImg}})

	require.Len(t, report.Records, 2)
	assert.Equal(t, "From cache", report.Records[0].Caption)
	assert.Equal(t, "Fresh", report.Records[1].Caption)
	assert.Equal(t, []string{freshImg}, vision.described)
	assert.Equal(t, []string{freshImg}, cache.stored)
}

func TestCaptionManifest_ImageRoot(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.jpg")

	vision := newStubVision()
	vision.replies[img] = `{"caption":"Rooted","tags":["x"]}`

	in := NewIngestor(newKeywordEmbedder(), storage.NewVectorStore(), zerolog.Nop())
	in.SetCaptioner(NewCaptioner(vision, zerolog.Nop()))
	in.SetImageRoot(dir)

	report := in.CaptionManifest(context.Background(), []models.ManifestRecord{{Image: "a.jpg"}})
	require.Len(t, report.Records, 1)
	assert.Equal(t, "a.jpg", report.Records[0].Image, "manifest keeps the original relative path")
	assert.Equal(t, []string{img}, vision.described)
}

func TestCaptionManifest_EmptyImagePath(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "a.jpg")

	vision := newStubVision()
	vision.replies[img] = `{"caption":"Kept","tags":["x"]}`

	in := NewIngestor(newKeywordEmbedder(), storage.NewVectorStore(), zerolog.Nop())
	in.SetCaptioner(NewCaptioner(vision, zerolog.Nop()))

	records := []models.ManifestRecord{
		{Location: "First blank"},
		{Image: "  ", Location: "Second blank"},
		{Image: img},
	}
	report := in.CaptionManifest(context.Background(), records)

	require.Len(t, report.Records, 1)
	assert.Equal(t, "Kept", report.Records[0].Caption)

	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		var notFound *NotFoundError
		assert.ErrorAs(t, f.Err, &notFound)
		assert.Empty(t, f.ImageID, "blank paths must not share a derived id")
	}
	assert.Equal(t, []string{img}, vision.described)
}

func TestCaptionManifest_NoCaptioner(t *testing.T) {
	in := NewIngestor(newKeywordEmbedder(), storage.NewVectorStore(), zerolog.Nop())

	report := in.CaptionManifest(context.Background(), []models.ManifestRecord{{Image: "a.jpg"}})
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, ErrNoCaptioner)
}
