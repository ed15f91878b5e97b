package catalog

import (
	"strings"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, body string) SheetRecord {
	t.Helper()
	records, err := DecodeRecords([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestToProducts_PenScenario(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"id":"1","item":"Pen","price":"10"}]`))
	require.NoError(t, err)

	products := ToProducts(records)

	assert.Equal(t, []domain.Product{{
		ID:       "1",
		Name:     "Pen",
		Price:    10,
		Image:    "",
		Category: "General",
	}}, products)
}

func TestToProduct_DescriptionColumnBecomesImage(t *testing.T) {
	p := ToProduct(decodeOne(t, `[{"id":"7","item":"Mug","price":"250","description":"https://img.example/mug.png"}]`))

	assert.Equal(t, "https://img.example/mug.png", p.Image)
	assert.Empty(t, p.Description)
}

func TestToProduct_ImageMustBeHTTPURL(t *testing.T) {
	cases := map[string]string{
		`"https://img.example/a.png"`:   "https://img.example/a.png",
		`" http://img.example/b.jpg "`:  "http://img.example/b.jpg",
		`"A lovely blue pen"`:           "",
		`"/images/pen.png"`:             "",
		`"javascript:alert(1)"`:         "",
		`"ftp://files.example/pen.png"`: "",
		`42`:                            "",
	}
	for in, want := range cases {
		p := ToProduct(decodeOne(t, `[{"item":"Pen","description":`+in+`}]`))
		assert.Equal(t, want, p.Image, in)
	}
}

func TestToProduct_Defaults(t *testing.T) {
	p := ToProduct(decodeOne(t, `[{}]`))

	assert.True(t, strings.HasPrefix(p.ID, "product-"), p.ID)
	assert.Greater(t, len(p.ID), len("product-"))
	assert.Equal(t, "Unnamed Product", p.Name)
	assert.Equal(t, 0.0, p.Price)
	assert.Empty(t, p.Image)
	assert.Equal(t, domain.DefaultCategory, p.Category)
}

func TestToProduct_FallbackIDsAreUnique(t *testing.T) {
	rec := decodeOne(t, `[{"item":"X"}]`)
	assert.NotEqual(t, ToProduct(rec).ID, ToProduct(rec).ID)
}

func TestToProduct_EmptyValuesUseDefaults(t *testing.T) {
	p := ToProduct(decodeOne(t, `[{"id":"","item":"","price":"","description":""}]`))

	assert.True(t, strings.HasPrefix(p.ID, "product-"))
	assert.Equal(t, "Unnamed Product", p.Name)
	assert.Equal(t, 0.0, p.Price)
}

func TestToProduct_NumericAndOddlyTypedFields(t *testing.T) {
	p := ToProduct(decodeOne(t, `[{"id":12,"item":{"nested":true},"price":99.5,"description":null}]`))

	assert.Equal(t, "12", p.ID)
	assert.Equal(t, "Unnamed Product", p.Name)
	assert.Equal(t, 99.5, p.Price)
	assert.Empty(t, p.Image)
}

func TestToProduct_ZeroNumericIDFallsBack(t *testing.T) {
	p := ToProduct(decodeOne(t, `[{"id":0,"item":"Pen"}]`))
	assert.True(t, strings.HasPrefix(p.ID, "product-"))
}

func TestLooseValue_Float(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`"10"`, 10},
		{`"  3.75 "`, 3.75},
		{`"12abc"`, 12},
		{`"1,200"`, 1},
		{`".5"`, 0.5},
		{`"1e3"`, 1000},
		{`"abc"`, 0},
		{`"-5"`, 0},
		{`"NaN"`, 0},
		{`"Infinity"`, 0},
		{`42`, 42},
		{`true`, 0},
		{`null`, 0},
		{`[1]`, 0},
	}
	for _, tc := range cases {
		rec := decodeOne(t, `[{"price":`+tc.in+`}]`)
		assert.Equal(t, tc.want, rec.Price.float(), tc.in)
	}
}

func TestDecodeRecords_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":        `<html>oops</html>`,
		"object not list": `{"item":"Pen"}`,
		"null element":    `[null]`,
		"scalar element":  `[1, 2]`,
		"truncated":       `[{"item":"Pen"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(body))
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeRecords_EmptyList(t *testing.T) {
	records, err := DecodeRecords([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.Empty(t, ToProducts(records))
}

func TestDecodeRecords_IgnoresUnknownColumns(t *testing.T) {
	rec := decodeOne(t, `[{"item":"Pen","stock":"4","colour":"blue"}]`)
	assert.Equal(t, "Pen", ToProduct(rec).Name)
}
