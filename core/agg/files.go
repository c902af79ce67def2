package agg

import (
	"path"
	"sort"
	"strings"

	"github.com/huangsam/timelapse/schema"
)

const otherLanguage = "other"

// LanguageOf returns the lowercased extension of file without the dot.
// Files without an extension fall back to the record tag, then to "other".
func LanguageOf(file, tag string) string {
	if ext := strings.TrimPrefix(path.Ext(path.Base(file)), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if tag != "" {
		return tag
	}
	return otherLanguage
}

// ComposeFiles groups lines into per-file rows sorted by line count
// descending, ties kept in first-seen order. Units follow line number order
// and are colored by language through palette. A nil palette leaves colors empty.
func ComposeFiles(lines []schema.LineRecord, palette *Palette) []schema.FileRow {
	index := make(map[string]int)
	var rows []schema.FileRow

	for _, rec := range lines {
		i, ok := index[rec.File]
		if !ok {
			i = len(rows)
			index[rec.File] = i
			rows = append(rows, schema.FileRow{
				Name:     rec.File,
				Language: LanguageOf(rec.File, rec.Type),
			})
		}
		lang := rows[i].Language
		rows[i].Units = append(rows[i].Units, schema.Unit{
			Key:      rec.Key(),
			Line:     rec.Line,
			Language: lang,
			Color:    palette.Color(lang),
		})
	}

	for i := range rows {
		sort.SliceStable(rows[i].Units, func(a, b int) bool {
			return rows[i].Units[a].Line < rows[i].Units[b].Line
		})
		rows[i].LineCount = len(rows[i].Units)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].LineCount > rows[b].LineCount
	})
	return rows
}
