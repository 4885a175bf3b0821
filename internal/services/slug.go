package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const maxSlugLen = 250

// dotless i and sharp s do not decompose under NFD
var slugFold = strings.NewReplacer("ı", "i", "ß", "ss", "æ", "ae", "ø", "o", "đ", "d", "ł", "l")

// Slugify turns a title into a lowercase ASCII slug: accents are stripped and
// runs of anything that is not a letter or digit collapse to a single dash.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		folded = strings.ToLower(title)
	}
	folded = slugFold.Replace(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimSuffix(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// uniqueSlug returns the first free slug among base, base-2, base-3, ...
// across all content types.
func uniqueSlug(tx *gorm.DB, title string) (string, error) {
	base := Slugify(title)
	slug := base
	for n := 2; ; n++ {
		var count int64
		if err := tx.Model(&models.ContentItem{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
