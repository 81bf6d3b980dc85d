// api/models/behavior.go
package models

import (
	"time"
)

// Behavior type codes as stored in the user_behavior table. The upstream
// dataset encodes actions as single-character strings.
const (
	BehaviorView     = "1"
	BehaviorFavorite = "2"
	BehaviorCart     = "3"
	BehaviorPurchase = "4"
)

// ChannelOrder is the fixed display order for the channel distribution:
// view, favorite, cart, purchase. Codes outside this set are never reported.
var ChannelOrder = []string{BehaviorView, BehaviorFavorite, BehaviorCart, BehaviorPurchase}

// ChannelLabels maps behavior codes to their API-facing channel names.
var ChannelLabels = map[string]string{
	BehaviorView:     "view",
	BehaviorFavorite: "favorite",
	BehaviorCart:     "cart",
	BehaviorPurchase: "purchase",
}

// BehaviorEvent represents a single row of the external user_behavior table.
// The table is append-only and owned by the ingestion pipeline; this API only
// reads aggregates over it.
type BehaviorEvent struct {
	UserID       int64     `json:"userId"`
	ItemID       int64     `json:"itemId"`
	BehaviorType string    `json:"behaviorType"`
	Time         time.Time `json:"time"`
	UserGeohash  string    `json:"userGeohash,omitempty"`
}

type ChannelCount struct {
	Channel string `json:"channel"`
	Count   uint64 `json:"count"`
}

type HourlyCount struct {
	Hour  int    `json:"hour"`
	Count uint64 `json:"count"`
}

// Funnel holds independent distinct-user counts per stage. A user can appear
// in Purchased without appearing in Carted; this is not a strict sequential
// funnel.
type Funnel struct {
	Viewed    uint64 `json:"viewUsers"`
	Carted    uint64 `json:"cartUsers"`
	Purchased uint64 `json:"purchaseUsers"`
}

type ItemCount struct {
	ItemID int64  `json:"itemId"`
	Count  uint64 `json:"count"`
}

type PurchaseRecord struct {
	UserID int64     `json:"userId"`
	ItemID int64     `json:"itemId"`
	Time   time.Time `json:"time"`
}

// GeoSampleRow is one distinct (user, geohash) pair from the geo sample
// query. The sample is capped, so downstream figures are approximate.
type GeoSampleRow struct {
	UserID  int64  `json:"userId"`
	Geohash string `json:"geohash"`
}

type CountryCount struct {
	Country string `json:"country"`
	Users   uint64 `json:"users"`
}

// Snapshot is one complete, internally consistent result bundle for a given
// lookback window. It is assembled fresh per request and never mutated after
// assembly.
type Snapshot struct {
	TotalUsers      uint64           `json:"totalUsers"`
	NewUsers        uint64           `json:"newUsers"`
	ActiveUsers     uint64           `json:"activeUsers"`
	RepeatUsers     uint64           `json:"repeatUsers"`
	Channels        []ChannelCount   `json:"channels"`
	Hourly          []HourlyCount    `json:"hourly"`
	Funnel          Funnel           `json:"funnel"`
	TopItems        []ItemCount      `json:"topItems"`
	RecentPurchases []PurchaseRecord `json:"recentPurchases"`
	GeoDistribution []CountryCount   `json:"geoDistribution"`
	ReferenceDate   time.Time        `json:"referenceDate"`
	WindowDays      int              `json:"windowDays"`
}

// ChannelCountsFromCodes converts raw per-code counts into the fixed display
// order with API labels. Unknown codes are dropped; known codes with no
// events are reported as zero so the distribution shape is stable.
func ChannelCountsFromCodes(counts map[string]uint64) []ChannelCount {
	out := make([]ChannelCount, 0, len(ChannelOrder))
	for _, code := range ChannelOrder {
		out = append(out, ChannelCount{
			Channel: ChannelLabels[code],
			Count:   counts[code],
		})
	}
	return out
}
