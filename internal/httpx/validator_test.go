package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_Required(t *testing.T) {
	type req struct {
		Title string `validate:"required"`
	}

	details := ValidateStruct(req{})
	require.Len(t, details, 1)
	assert.Equal(t, "title", details[0].Field)
	assert.Contains(t, details[0].Message, "required")

	assert.Nil(t, ValidateStruct(req{Title: "Dune"}))
}

func TestValidateStruct_ISBN(t *testing.T) {
	type req struct {
		ISBN string `validate:"isbn"`
	}

	valid := []string{
		"9780441013593",
		"0441013597",
		"045152493X",
		"978-0-441-01359-3",
	}
	for _, isbn := range valid {
		assert.Nil(t, ValidateStruct(req{ISBN: isbn}), isbn)
	}

	invalid := []string{
		"12345",
		"abcdefghij",
		"97804410135931",
		"044101359X9",
	}
	for _, isbn := range invalid {
		assert.NotNil(t, ValidateStruct(req{ISBN: isbn}), isbn)
	}
}

func TestValidateStruct_HalfStar(t *testing.T) {
	type req struct {
		Rating float64 `validate:"halfstar"`
	}

	for _, v := range []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5} {
		assert.Nil(t, ValidateStruct(req{Rating: v}), "%v should pass", v)
	}

	for _, v := range []float64{0, 0.5, 5.5, 4.3, 2.25, -1} {
		details := ValidateStruct(req{Rating: v})
		require.NotNil(t, details, "%v should fail", v)
		assert.Contains(t, details[0].Message, "0.5 increments")
	}
}

func TestValidateStruct_Nested(t *testing.T) {
	type mapping struct {
		Title  string `validate:"required"`
		Author string `validate:"required"`
	}
	type req struct {
		BatchID   string  `validate:"required"`
		ColumnMap mapping `validate:"required"`
	}

	details := ValidateStruct(req{BatchID: "b", ColumnMap: mapping{Title: "Title"}})
	require.Len(t, details, 1)
	assert.Equal(t, "author", details[0].Field)
}
