package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const unnamedProduct = "Unnamed Product"

var ErrDecode = errors.New("catalog: malformed sheet response")

var validate = validator.New(validator.WithRequiredStructEnabled())

type valueKind int

const (
	kindAbsent valueKind = iota
	kindString
	kindNumber
	kindBool
)

// looseValue accepts any JSON scalar. Objects, arrays and null decode as
// absent so that unexpected shapes fall back to defaults.
type looseValue struct {
	kind valueKind
	text string
}

func (v *looseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = looseValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = looseValue{kind: kindString, text: s}
	case 't', 'f':
		*v = looseValue{kind: kindBool, text: string(data)}
	case 'n', '{', '[':
		*v = looseValue{}
	default:
		*v = looseValue{kind: kindNumber, text: string(data)}
	}
	return nil
}

// truthy mirrors how the sheet fields are tested for presence: empty
// strings, zero, false and missing values count as absent.
func (v looseValue) truthy() bool {
	switch v.kind {
	case kindString:
		return v.text != ""
	case kindNumber:
		f, err := strconv.ParseFloat(v.text, 64)
		return err == nil && f != 0
	case kindBool:
		return v.text == "true"
	default:
		return false
	}
}

func (v looseValue) orDefault(def string) string {
	if v.truthy() {
		return v.text
	}
	return def
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// float parses the leading decimal number of the value. Missing, unparsable,
// negative and non-finite values give 0.
func (v looseValue) float() float64 {
	if v.kind != kindString && v.kind != kindNumber {
		return 0
	}
	m := leadingNumber.FindString(strings.TrimSpace(v.text))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// SheetRecord is one row of the product sheet as the upstream API returns it.
// Only the columns the storefront reads are kept.
type SheetRecord struct {
	ID          looseValue `json:"id"`
	Item        looseValue `json:"item"`
	Price       looseValue `json:"price"`
	Description looseValue `json:"description"`
}

// DecodeRecords parses a sheet response body. The body must be a JSON array of
// objects; any field inside a record may be missing or mistyped.
func DecodeRecords(body []byte) ([]SheetRecord, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	records := make([]SheetRecord, 0, len(raw))
	for i, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) == 0 || r[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrDecode, i)
		}
		var rec SheetRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrDecode, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ToProduct is the single place that knows how sheet columns map to a
// Product. The sheet's "description" column carries the image URL, so it
// fills Image and Description stays empty. Values that are not absolute
// http(s) URLs are dropped and the page shows its placeholder.
func ToProduct(rec SheetRecord) domain.Product {
	return domain.Product{
		ID:          rec.ID.orDefault("product-" + uuid.NewString()),
		Name:        rec.Item.orDefault(unnamedProduct),
		Price:       rec.Price.float(),
		Description: "",
		Image:       imageURL(rec.Description.orDefault("")),
		Category:    domain.DefaultCategory,
	}
}

func imageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || validate.Var(raw, "http_url") != nil {
		return ""
	}
	return raw
}

// ToProducts maps every record in order.
func ToProducts(records []SheetRecord) []domain.Product {
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, ToProduct(rec))
	}
	return products
}
