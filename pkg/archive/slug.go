package archive

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps derived slugs.
const MaxSlugLength = 80

var deaccent = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slugify derives a URL-safe identifier from free text: trim, lowercase,
// strip diacritics, collapse every run of non [a-z0-9] into one hyphen,
// trim hyphens, cap at MaxSlugLength. Returns "" when nothing usable
// remains. Re-deriving from an already-derived slug is a no-op.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// AssignSlug derives a slug from desired and verifies no other record of
// the same kind owns it, excluding excludeID when updating. The
// existence check is a best-effort pre-check only: concurrent writers
// are caught by the store's unique index, which stores surface as
// ErrSlugTaken.
func AssignSlug(ctx context.Context, store Store, kind Kind, desired string, excludeID uuid.UUID) (string, error) {
	slug := Slugify(desired)
	if slug == "" {
		return "", NewValidationError(map[string]string{
			"slug": "cannot derive a slug from the given text",
		})
	}

	taken, err := store.SlugExists(ctx, kind, slug, excludeID)
	if err != nil {
		return "", NewInternalError("assign_slug", err)
	}
	if taken {
		return "", NewConflictError("slug", slug)
	}
	return slug, nil
}
