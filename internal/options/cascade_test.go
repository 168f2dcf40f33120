package options_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsboard/opsboard/internal/options"
)

type row struct {
	customer string
	part     string
	supplier string
}

func testCascade() *options.Cascade[row] {
	return options.New(
		options.Level[row]{Name: "customer", Value: func(r row) string { return r.customer }},
		options.Level[row]{Name: "part", Value: func(r row) string { return r.part }},
		options.Level[row]{Name: "supplier", Value: func(r row) string { return r.supplier }},
	)
}

func testRows() []row {
	return []row{
		{customer: "Acme", part: "Gear", supplier: "Supplier-1"},
		{customer: "Acme", part: "Bolt", supplier: "Supplier-2"},
		{customer: "acme ", part: "gear", supplier: "Supplier-3"},
		{customer: "Globex", part: "Washer", supplier: "Supplier-1"},
		{customer: "Globex", part: "", supplier: "Supplier-4"},
	}
}

func TestOptions_DedupesAndSorts(t *testing.T) {
	t.Parallel()

	c := testCascade()

	got := c.Options(testRows(), nil, "customer")
	assert.Equal(t, []string{"Acme", "Globex"}, got)
}

func TestOptions_RestrictedByUpperSelection(t *testing.T) {
	t.Parallel()

	c := testCascade()
	sel := options.Selection{"customer": "ACME"}

	// Case-insensitive match on the customer level; missing part values
	// never appear as options.
	got := c.Options(testRows(), sel, "part")
	assert.Equal(t, []string{"Bolt", "Gear"}, got)
}

func TestOptions_NoRows(t *testing.T) {
	t.Parallel()

	c := testCascade()
	assert.Empty(t, c.Options(nil, nil, "part"))
}

func TestNormalize_ResetsInvalidAndDependents(t *testing.T) {
	t.Parallel()

	c := testCascade()

	// Gear only exists under Acme. Switching customer to Globex must
	// reset part and the dependent supplier level to All.
	sel := options.Selection{
		"customer": "Globex",
		"part":     "Gear",
		"supplier": "Supplier-1",
	}

	got := c.Normalize(testRows(), sel)

	assert.Equal(t, "Globex", got.Get("customer"))
	assert.Equal(t, options.All, got.Get("part"))
	assert.Equal(t, options.All, got.Get("supplier"))
}

func TestNormalize_KeepsValidChain(t *testing.T) {
	t.Parallel()

	c := testCascade()
	sel := options.Selection{
		"customer": "Acme",
		"part":     "gear",
		"supplier": "Supplier-1",
	}

	got := c.Normalize(testRows(), sel)

	assert.Equal(t, "Acme", got.Get("customer"))
	assert.Equal(t, "gear", got.Get("part"))
	assert.Equal(t, "Supplier-1", got.Get("supplier"))
}

func TestFilter_MissingValueNeverMatches(t *testing.T) {
	t.Parallel()

	c := testCascade()
	sel := options.Selection{"part": "Washer"}

	got := c.Filter(testRows(), sel)
	assert.Len(t, got, 1)
	assert.Equal(t, "Globex", got[0].customer)
}

func TestBroadest(t *testing.T) {
	t.Parallel()

	c := testCascade()
	assert.True(t, c.Broadest(nil))
	assert.True(t, c.Broadest(options.Selection{"part": options.All}))
	assert.False(t, c.Broadest(options.Selection{"part": "Gear"}))
}

func TestMatch_NullSemantics(t *testing.T) {
	t.Parallel()

	assert.True(t, options.Match("", options.All))
	assert.False(t, options.Match("", ""))
	assert.True(t, options.Match(" Acme ", "acme"))
}
