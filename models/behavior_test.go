package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelCountsFromCodes(t *testing.T) {
	got := ChannelCountsFromCodes(map[string]uint64{
		BehaviorPurchase: 10,
		BehaviorView:     900,
		BehaviorCart:     50,
		"9":              999, // unknown code, must be dropped
	})

	assert.Equal(t, []ChannelCount{
		{Channel: "view", Count: 900},
		{Channel: "favorite", Count: 0},
		{Channel: "cart", Count: 50},
		{Channel: "purchase", Count: 10},
	}, got)
}

func TestChannelCountsFromCodesEmpty(t *testing.T) {
	got := ChannelCountsFromCodes(nil)

	// The distribution shape stays stable even with no events.
	assert.Len(t, got, 4)
	for _, cc := range got {
		assert.Zero(t, cc.Count)
	}
}
