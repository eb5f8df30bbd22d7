package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect("")
	assert.EqualError(t, err, "database URL cannot be empty")
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x", nil)
	assert.Error(t, err)
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	gdb, err := Open(DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	defer Close(gdb)

	require.NoError(t, Migrate(gdb))

	p := &domain.Product{Name: "Lamp", Category: "Home", Price: 20, Status: domain.ProductActive, LowStockThreshold: 5, Tags: []string{"light"}}
	require.NoError(t, gdb.Create(p).Error)

	var loaded domain.Product
	require.NoError(t, gdb.First(&loaded, p.ID).Error)
	assert.Equal(t, []string{"light"}, loaded.Tags)
}
