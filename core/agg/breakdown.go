package agg

import (
	"math"
	"sort"

	"github.com/huangsam/timelapse/schema"
)

// LanguageBreakdown counts lines per language tag. Shares are sorted by line
// count descending, then by language name. Empty input yields nil.
func LanguageBreakdown(lines []schema.LineRecord) []schema.LanguageShare {
	if len(lines) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, rec := range lines {
		counts[languageTag(rec)]++
	}

	shares := make([]schema.LanguageShare, 0, len(counts))
	total := float64(len(lines))
	for lang, n := range counts {
		shares = append(shares, schema.LanguageShare{
			Language: lang,
			Lines:    n,
			Percent:  math.Round(float64(n)/total*1000) / 10,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Lines != shares[j].Lines {
			return shares[i].Lines > shares[j].Lines
		}
		return shares[i].Language < shares[j].Language
	})
	return shares
}

func languageTag(rec schema.LineRecord) string {
	if rec.Type == "" {
		return otherLanguage
	}
	return rec.Type
}
