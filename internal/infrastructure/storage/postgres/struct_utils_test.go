package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/catalogs/customer"
	"tradelink/internal/domain/catalogs/product"
)

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[customer.Customer]()

	// Embedded entity.Catalog / BaseEntity columns surface through recursion
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "name")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "deletion_mark")

	// Own columns
	assert.Contains(t, cols, "credit_limit")
	assert.Contains(t, cols, "outstanding")
	assert.Contains(t, cols, "gst_number")
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	direct := ExtractDBColumns[product.Product]()
	viaPtr := ExtractDBColumns[*product.Product]()
	assert.Equal(t, direct, viaPtr)
	assert.Contains(t, direct, "secondary_qualifying_qty")
}

func TestStructToMap(t *testing.T) {
	companyID := id.New()
	p := product.New("PRD-2026-00001", "Premium Biscuits 100g", companyID, types.MustMoney("10"))
	p.StockOut = true

	m := StructToMap(p)
	require.NotNil(t, m)

	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, "Premium Biscuits 100g", m["name"])
	assert.Equal(t, companyID, m["company_id"])
	assert.Equal(t, true, m["stock_out"])

	// Ignored tags never leak into the map
	_, hasIgnored := m["-"]
	assert.False(t, hasIgnored)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("nope"))
}
