// api/snapshot/assembler.go
package snapshot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shoppulse/api/geo"
	"shoppulse/api/models"
)

const (
	// TopItemsLimit caps the top purchased items list.
	TopItemsLimit = 5
	// RecentPurchasesLimit caps the recent purchase log.
	RecentPurchasesLimit = 10
	// GeoSampleLimit caps the distinct (user, geohash) sample resolved per
	// snapshot. Beyond this the geo distribution is an approximation.
	GeoSampleLimit = 20000
)

// EventStore is the aggregation query set the assembler needs from the
// behavior store. Both the ClickHouse and Postgres stores satisfy it.
type EventStore interface {
	MaxEventDate(ctx context.Context) (time.Time, error)
	TotalUsers(ctx context.Context) (uint64, error)
	NewUsers(ctx context.Context, day time.Time) (uint64, error)
	ActiveUsers(ctx context.Context, since time.Time) (uint64, error)
	RepeatPurchasers(ctx context.Context, since time.Time) (uint64, error)
	ChannelDistribution(ctx context.Context) ([]models.ChannelCount, error)
	HourlyDistribution(ctx context.Context, since time.Time) ([]models.HourlyCount, error)
	ConversionFunnel(ctx context.Context, since time.Time) (models.Funnel, error)
	TopPurchasedItems(ctx context.Context, since time.Time, limit int) ([]models.ItemCount, error)
	RecentPurchases(ctx context.Context, limit int) ([]models.PurchaseRecord, error)
	GeoSample(ctx context.Context, limit int) ([]models.GeoSampleRow, error)
}

// Assembler produces one Snapshot per request by sequencing the aggregation
// queries and the geo resolution. The country index is built once at startup
// and shared read-only across requests.
type Assembler struct {
	store EventStore
	index *geo.CountryIndex
}

func NewAssembler(store EventStore, index *geo.CountryIndex) *Assembler {
	return &Assembler{store: store, index: index}
}

// Assemble builds the snapshot for the window [referenceDate - days,
// referenceDate], where the reference date is the latest event date in the
// store. Any store error aborts the whole snapshot: a partial bundle would
// silently misreport aggregates. For a fixed store state and fixed days the
// result is deterministic.
func (a *Assembler) Assemble(ctx context.Context, days int) (*models.Snapshot, error) {
	if days <= 0 {
		return nil, fmt.Errorf("lookback window must be positive, got %d", days)
	}

	refDate, err := a.store.MaxEventDate(ctx)
	if err != nil {
		return nil, err
	}
	windowStart := refDate.AddDate(0, 0, -days)
	yesterday := refDate.AddDate(0, 0, -1)

	snap := &models.Snapshot{
		ReferenceDate: refDate,
		WindowDays:    days,
	}

	if snap.TotalUsers, err = a.store.TotalUsers(ctx); err != nil {
		return nil, err
	}
	if snap.NewUsers, err = a.store.NewUsers(ctx, yesterday); err != nil {
		return nil, err
	}
	if snap.ActiveUsers, err = a.store.ActiveUsers(ctx, windowStart); err != nil {
		return nil, err
	}
	if snap.RepeatUsers, err = a.store.RepeatPurchasers(ctx, windowStart); err != nil {
		return nil, err
	}
	if snap.Channels, err = a.store.ChannelDistribution(ctx); err != nil {
		return nil, err
	}
	if snap.Hourly, err = a.store.HourlyDistribution(ctx, windowStart); err != nil {
		return nil, err
	}
	if snap.Funnel, err = a.store.ConversionFunnel(ctx, windowStart); err != nil {
		return nil, err
	}
	if snap.TopItems, err = a.store.TopPurchasedItems(ctx, windowStart, TopItemsLimit); err != nil {
		return nil, err
	}
	if snap.RecentPurchases, err = a.store.RecentPurchases(ctx, RecentPurchasesLimit); err != nil {
		return nil, err
	}

	sample, err := a.store.GeoSample(ctx, GeoSampleLimit)
	if err != nil {
		return nil, err
	}
	snap.GeoDistribution = a.groupByCountry(sample)

	return snap, nil
}

// groupByCountry resolves each sampled geohash to a country and counts
// distinct users per country. Rows whose geohash cannot be resolved are
// dropped, not reported as "unknown". An empty sample (or an empty index,
// the degraded mode after a boundary fetch failure) yields an empty
// distribution.
func (a *Assembler) groupByCountry(sample []models.GeoSampleRow) []models.CountryCount {
	usersByCountry := make(map[string]map[int64]struct{})
	for _, row := range sample {
		country, ok := geo.ResolveCountry(row.Geohash, a.index)
		if !ok {
			continue
		}
		users, exists := usersByCountry[country]
		if !exists {
			users = make(map[int64]struct{})
			usersByCountry[country] = users
		}
		users[row.UserID] = struct{}{}
	}

	out := make([]models.CountryCount, 0, len(usersByCountry))
	for country, users := range usersByCountry {
		out = append(out, models.CountryCount{Country: country, Users: uint64(len(users))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Users != out[j].Users {
			return out[i].Users > out[j].Users
		}
		return out[i].Country < out[j].Country
	})
	return out
}
