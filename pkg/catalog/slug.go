package catalog

import (
	"Foodgram-Backend/domain"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

	cyrillic = map[rune]string{
		'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "io",
		'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m",
		'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
		'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
		'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "iu", 'я': "ia",
	}
)

// Slugify transliterates Cyrillic to Latin, strips accents and collapses
// everything else into single hyphens.
// "Завтрак" -> "zavtrak", "Crème brûlée" -> "creme-brulee".
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if latin, ok := cyrillic[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}

	decomposed := norm.NFKD.String(b.String())
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, decomposed)

	slug := strings.Trim(nonAlphanumeric.ReplaceAllString(ascii, "-"), "-")
	if len(slug) > domain.MaxLengthTagSlug {
		slug = strings.TrimRight(slug[:domain.MaxLengthTagSlug], "-")
	}
	return slug
}

// withSuffix appends "-n" keeping the result within the slug length limit.
func withSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > domain.MaxLengthTagSlug {
		base = strings.TrimRight(base[:domain.MaxLengthTagSlug-len(suffix)], "-")
	}
	return base + suffix
}
