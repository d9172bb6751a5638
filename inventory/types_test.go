package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magazzino/inventory-engine/inventory"
)

func TestParseEntity_KnownNames(t *testing.T) {
	for name, want := range map[string]inventory.Entity{
		"clients":      inventory.EntityClients,
		"articles":     inventory.EntityArticles,
		"products":     inventory.EntityProducts,
		"equipment":    inventory.EntityEquipment,
		"semifinished": inventory.EntitySemiFinished,
		"movements":    inventory.EntityMovements,
	} {
		got, err := inventory.ParseEntity(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}
}

func TestParseEntity_UnknownName(t *testing.T) {
	_, err := inventory.ParseEntity("widgets")

	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrUnknownEntity)

	var ue *inventory.UnknownEntityError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "widgets", ue.Name)
}
