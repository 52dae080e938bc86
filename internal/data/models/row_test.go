package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLine() string {
	return strings.Join([]string{
		"123456",
		"saree",
		"7",
		"499",
		"3",
		"1715240000",
		"1",
		"12",
		"block-a|block-b",
		"42",
		"180",
		"seller_77",
		"0.25 -1.5 3.0",
	}, ",")
}

func TestParseLine(t *testing.T) {
	row, err := ParseLine(sampleLine())
	require.NoError(t, err)
	require.NoError(t, row.Validate())

	assert.Equal(t, "123456", row.ID())
	assert.Equal(t, "saree", row.Label())
	assert.Equal(t, "block-a|block-b", row.BlocksInline())
	assert.Equal(t, "seller_77", row.UserName())
	assert.Equal(t, "0.25 -1.5 3.0", row.TextEmbeddingInline())

	id, err := row.IDInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(123456), id)

	category, err := row.CategoryID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), category)

	price, err := row.Price()
	require.NoError(t, err)
	assert.Equal(t, int64(499), price)

	images, err := row.ImagesCount()
	require.NoError(t, err)
	assert.Equal(t, int64(3), images)

	createdAt, err := row.CreatedAt()
	require.NoError(t, err)
	assert.Equal(t, float32(1715240000), createdAt)

	offerable, err := row.Offerable()
	require.NoError(t, err)
	assert.Equal(t, float32(1), offerable)

	articles, err := row.RecentArticlesCount()
	require.NoError(t, err)
	assert.Equal(t, int64(12), articles)

	titleLen, err := row.TitleLength()
	require.NoError(t, err)
	assert.Equal(t, int64(42), titleLen)

	contentLen, err := row.ContentLength()
	require.NoError(t, err)
	assert.Equal(t, int64(180), contentLen)
}

func TestParseLineQuotedFields(t *testing.T) {
	line := `1,"multi label",2,100,1,1715240000,0,5,"a,b",10,20,"user ""x""",1.0 2.0`
	row, err := ParseLine(line)
	require.NoError(t, err)
	require.NoError(t, row.Validate())

	assert.Equal(t, "multi label", row.Label())
	assert.Equal(t, "a,b", row.BlocksInline())
	assert.Equal(t, `user "x"`, row.UserName())
}

func TestValidateShortRow(t *testing.T) {
	row, err := ParseLine("1,saree,7")
	require.NoError(t, err)
	err = row.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 columns")
}

func TestExtraColumnsTolerated(t *testing.T) {
	row, err := ParseLine(sampleLine() + ",spare,extra")
	require.NoError(t, err)
	assert.NoError(t, row.Validate())
	assert.Equal(t, "0.25 -1.5 3.0", row.TextEmbeddingInline())
}

func TestNumericColumnErrors(t *testing.T) {
	row, err := ParseLine(strings.Replace(sampleLine(), "499", "charges", 1))
	require.NoError(t, err)

	_, err = row.Price()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column price")

	_, err = row.CategoryID()
	assert.NoError(t, err)
}

func TestParseLineMalformed(t *testing.T) {
	_, err := ParseLine(`1,"unterminated,2`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed csv line")
}
