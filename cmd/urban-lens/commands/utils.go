// ABOUTME: Helpers shared by the urban-lens commands
// ABOUTME: Source-table cell formatting and the --k flag check
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harper/urban-lens/internal/models"
)

// Column widths of the ask sources table
const (
	idWidth       = 12
	locationWidth = 24
	captionWidth  = 50
	tagsWidth     = 40
)

// truncate cuts s to at most maxLen runes, ending in "..." when there is room
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTags joins whole tags until maxLen would be exceeded and counts the rest
func formatTags(tags []string, maxLen int) string {
	var b strings.Builder
	for i, tag := range tags {
		sep := ""
		if i > 0 {
			sep = ", "
		}
		more := ""
		if rest := len(tags) - i - 1; rest > 0 {
			more = fmt.Sprintf(" +%d", rest)
		}
		if b.Len() > 0 && len([]rune(b.String()+sep+tag+more)) > maxLen {
			return b.String() + fmt.Sprintf(" +%d", len(tags)-i)
		}
		b.WriteString(sep + tag)
	}
	return truncate(b.String(), maxLen)
}

// sourceRow renders one retrieved record as a row of the ask sources table
func sourceRow(rank int, meta models.Metadata) []string {
	return []string{
		strconv.Itoa(rank),
		truncate(meta.ImageID, idWidth),
		truncate(meta.Location, locationWidth),
		truncate(meta.Caption, captionWidth),
		formatTags(meta.Tags, tagsWidth),
	}
}

// validateK rejects retrieval depths below one
func validateK(k int) error {
	if k < 1 {
		return fmt.Errorf("--k must be at least 1, got %d", k)
	}
	return nil
}
