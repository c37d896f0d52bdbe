package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"subcategories": "  RINGS "})
	require.NoError(t, err)

	var doc struct {
		Subcategories StringList `bson:"subcategories"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	require.Equal(t, StringList{"RINGS"}, doc.Subcategories)
}

func TestStringListRoundTripsArray(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"subcategories": StringList{"WOOL", "LEATHER"}})
	require.NoError(t, err)

	var doc struct {
		Subcategories StringList `bson:"subcategories"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	require.Equal(t, StringList{"WOOL", "LEATHER"}, doc.Subcategories)
}

func TestOrderStatusValid(t *testing.T) {
	for _, status := range OrderStatuses {
		require.True(t, status.Valid(), status)
	}
	require.False(t, OrderStatus("refunded").Valid())
	require.False(t, OrderStatus("").Valid())
}
