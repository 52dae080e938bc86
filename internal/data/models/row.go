package models

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Column positions of the catalog export. The layout is fixed, columns past
// ColTextEmbeddingInline are tolerated and ignored.
const (
	ColID = iota
	ColLabel
	ColCategoryID
	ColPrice
	ColImagesCount
	ColCreatedAt
	ColOfferable
	ColRecentArticlesCount
	ColBlocksInline
	ColTitleLength
	ColContentLength
	ColUserName
	ColTextEmbeddingInline

	MinColumns = 13
)

// RawRow is one parsed catalog line, fields still in string form.
type RawRow []string

// ParseLine splits a single CSV line into a RawRow. Quoting follows RFC
// 4180, embedded newlines are not expected.
func ParseLine(line string) (RawRow, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("malformed csv line: %w", err)
	}
	return RawRow(record), nil
}

// Validate checks the row carries at least the fixed column set.
func (r RawRow) Validate() error {
	if len(r) < MinColumns {
		return fmt.Errorf("row has %d columns, want at least %d", len(r), MinColumns)
	}
	return nil
}

func (r RawRow) ID() string                  { return r[ColID] }
func (r RawRow) Label() string               { return r[ColLabel] }
func (r RawRow) BlocksInline() string        { return r[ColBlocksInline] }
func (r RawRow) UserName() string            { return r[ColUserName] }
func (r RawRow) TextEmbeddingInline() string { return r[ColTextEmbeddingInline] }

func (r RawRow) IDInt64() (int64, error) {
	return r.intColumn(ColID, "id")
}

func (r RawRow) CategoryID() (int64, error) {
	return r.intColumn(ColCategoryID, "category_id")
}

func (r RawRow) Price() (int64, error) {
	return r.intColumn(ColPrice, "price")
}

func (r RawRow) ImagesCount() (int64, error) {
	return r.intColumn(ColImagesCount, "images_count")
}

func (r RawRow) RecentArticlesCount() (int64, error) {
	return r.intColumn(ColRecentArticlesCount, "recent_articles_count")
}

func (r RawRow) TitleLength() (int64, error) {
	return r.intColumn(ColTitleLength, "title_length")
}

func (r RawRow) ContentLength() (int64, error) {
	return r.intColumn(ColContentLength, "content_length")
}

func (r RawRow) CreatedAt() (float32, error) {
	return r.floatColumn(ColCreatedAt, "created_at")
}

func (r RawRow) Offerable() (float32, error) {
	return r.floatColumn(ColOfferable, "offerable")
}

func (r RawRow) intColumn(idx int, name string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(r[idx]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return v, nil
}

func (r RawRow) floatColumn(idx int, name string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r[idx]), 32)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return float32(v), nil
}
