// ABOUTME: Tests for the ask table helpers and the --k check
// ABOUTME: Covers rune-safe truncation, tag folding and row layout

package commands

import (
	"reflect"
	"testing"

	"github.com/harper/urban-lens/internal/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"location fits", "Riverside", 24, "Riverside"},
		{"caption exactly at width", "Flooded street", 14, "Flooded street"},
		{"long caption gets ellipsis", "Flooded street near the underpass", 16, "Flooded stree..."},
		{"uuid cut without room for ellipsis", "0f8b2c1e", 3, "0f8"},
		{"empty caption", "", 50, ""},
		{"accented street name on rune boundary", "Straße der Einheit", 6, "Str..."},
		{"cjk location", "河岸街道积水严重", 5, "河岸..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatTags(t *testing.T) {
	tests := []struct {
		name   string
		tags   []string
		maxLen int
		want   string
	}{
		{"no tags", nil, 40, ""},
		{"all fit", []string{"flooding", "damaged road"}, 40, "flooding, damaged road"},
		{"remainder counted", []string{"flooding", "damaged road", "risk of flooding"}, 30, "flooding, damaged road +1"},
		{"only first fits", []string{"flooding", "damaged road", "trash"}, 20, "flooding +2"},
		{"single long tag truncated", []string{"congested lanes near the market"}, 12, "congested..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTags(tt.tags, tt.maxLen)
			if got != tt.want {
				t.Errorf("formatTags(%v, %d) = %q, want %q", tt.tags, tt.maxLen, got, tt.want)
			}
			if len([]rune(got)) > tt.maxLen {
				t.Errorf("formatTags() = %q is wider than %d", got, tt.maxLen)
			}
		})
	}
}

func TestSourceRow(t *testing.T) {
	meta := models.Metadata{
		ImageID:  "1",
		Caption:  "Flooded street",
		Tags:     []string{"flooding", "damaged road"},
		Location: "Riverside",
	}

	got := sourceRow(2, meta)
	want := []string{"2", "1", "Riverside", "Flooded street", "flooding, damaged road"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sourceRow() = %q, want %q", got, want)
	}
}

func TestValidateK(t *testing.T) {
	tests := []struct {
		k       int
		wantErr bool
	}{
		{1, false},
		{10, false},
		{0, true},
		{-3, true},
	}

	for _, tt := range tests {
		err := validateK(tt.k)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateK(%d) error = %v, wantErr %v", tt.k, err, tt.wantErr)
		}
	}
}
