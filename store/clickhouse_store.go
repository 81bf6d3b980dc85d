// api/store/clickhouse_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shoppulse/api/database"
	"shoppulse/api/models"
)

// ErrDataUnavailable is returned when the behavior store holds no events at
// all, so no reference date can be resolved. Snapshot assembly must treat it
// as a hard stop: no default date is substituted and no partial snapshot is
// produced.
var ErrDataUnavailable = errors.New("behavior store has no events")

// BehaviorStore runs the read-only aggregation query set against the
// user_behavior table in ClickHouse. Every query is parameterized; the
// reference date and window bounds are always bound values, never
// interpolated text.
type BehaviorStore struct {
	DB *database.ClickHouseClient
}

func NewBehaviorStore(chClient *database.ClickHouseClient) *BehaviorStore {
	return &BehaviorStore{
		DB: chClient,
	}
}

// MaxEventDate resolves the reference date: the latest event date present in
// the store, truncated to midnight UTC. Window computations anchor to this
// value rather than wall-clock time, so a static dataset still reports
// meaningful "recent" figures.
func (s *BehaviorStore) MaxEventDate(ctx context.Context) (time.Time, error) {
	var total uint64
	var maxTime time.Time
	query := `SELECT count() AS total, max(time) AS max_time FROM user_behavior`
	if err := s.DB.Conn.QueryRow(ctx, query).Scan(&total, &maxTime); err != nil {
		return time.Time{}, fmt.Errorf("failed to query max event date: %w", err)
	}
	if total == 0 {
		return time.Time{}, ErrDataUnavailable
	}
	y, m, d := maxTime.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// TotalUsers counts distinct users over the whole table, all time.
func (s *BehaviorStore) TotalUsers(ctx context.Context) (uint64, error) {
	var total uint64
	query := `SELECT uniqExact(user_id) FROM user_behavior`
	if err := s.DB.Conn.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query total users: %w", err)
	}
	return total, nil
}

// NewUsers counts distinct users whose events fall on the given day
// (the day before the reference date).
func (s *BehaviorStore) NewUsers(ctx context.Context, day time.Time) (uint64, error) {
	var total uint64
	query := `SELECT uniqExact(user_id) FROM user_behavior WHERE toDate(time) = toDate(?)`
	if err := s.DB.Conn.QueryRow(ctx, query, day).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query new users: %w", err)
	}
	return total, nil
}

// ActiveUsers counts distinct users with at least one event since the window
// start.
func (s *BehaviorStore) ActiveUsers(ctx context.Context, since time.Time) (uint64, error) {
	var total uint64
	query := `SELECT uniqExact(user_id) FROM user_behavior WHERE time >= ?`
	if err := s.DB.Conn.QueryRow(ctx, query, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query active users: %w", err)
	}
	return total, nil
}

// RepeatPurchasers counts distinct users with two or more purchase events in
// the window.
func (s *BehaviorStore) RepeatPurchasers(ctx context.Context, since time.Time) (uint64, error) {
	var total uint64
	query := `
		SELECT count() FROM (
			SELECT user_id
			FROM user_behavior
			WHERE behavior_type = ? AND time >= ?
			GROUP BY user_id
			HAVING count() >= 2
		)
	`
	if err := s.DB.Conn.QueryRow(ctx, query, models.BehaviorPurchase, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query repeat purchasers: %w", err)
	}
	return total, nil
}

// ChannelDistribution counts events per behavior code over the whole table,
// restricted to the four known codes, returned in the fixed display order.
func (s *BehaviorStore) ChannelDistribution(ctx context.Context) ([]models.ChannelCount, error) {
	query := `
		SELECT behavior_type, count() AS cnt
		FROM user_behavior
		WHERE behavior_type IN (?, ?, ?, ?)
		GROUP BY behavior_type
	`
	rows, err := s.DB.Conn.Query(ctx, query,
		models.BehaviorView, models.BehaviorFavorite, models.BehaviorCart, models.BehaviorPurchase)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel distribution: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var code string
		var cnt uint64
		if err := rows.Scan(&code, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan channel distribution row: %w", err)
		}
		counts[code] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during channel distribution query: %w", err)
	}

	return models.ChannelCountsFromCodes(counts), nil
}

// HourlyDistribution counts events per hour-of-day within the window.
func (s *BehaviorStore) HourlyDistribution(ctx context.Context, since time.Time) ([]models.HourlyCount, error) {
	query := `
		SELECT toInt32(toHour(time)) AS hour, count() AS cnt
		FROM user_behavior
		WHERE time >= ?
		GROUP BY hour
		ORDER BY hour
	`
	rows, err := s.DB.Conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly distribution: %w", err)
	}
	defer rows.Close()

	var results []models.HourlyCount
	for rows.Next() {
		var hour int32
		var cnt uint64
		if err := rows.Scan(&hour, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan hourly distribution row: %w", err)
		}
		results = append(results, models.HourlyCount{Hour: int(hour), Count: cnt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during hourly distribution query: %w", err)
	}

	return results, nil
}

// ConversionFunnel reports independent distinct-user counts for the viewed,
// carted and purchased stages within the window.
func (s *BehaviorStore) ConversionFunnel(ctx context.Context, since time.Time) (models.Funnel, error) {
	var funnel models.Funnel
	query := `
		SELECT
			uniqExactIf(user_id, behavior_type = ?) AS viewed,
			uniqExactIf(user_id, behavior_type = ?) AS carted,
			uniqExactIf(user_id, behavior_type = ?) AS purchased
		FROM user_behavior
		WHERE time >= ?
	`
	err := s.DB.Conn.QueryRow(ctx, query,
		models.BehaviorView, models.BehaviorCart, models.BehaviorPurchase, since).
		Scan(&funnel.Viewed, &funnel.Carted, &funnel.Purchased)
	if err != nil {
		return models.Funnel{}, fmt.Errorf("failed to query conversion funnel: %w", err)
	}
	return funnel, nil
}

// TopPurchasedItems ranks items by purchase-event count within the window,
// ties broken by item id for a stable order.
func (s *BehaviorStore) TopPurchasedItems(ctx context.Context, since time.Time, limit int) ([]models.ItemCount, error) {
	query := `
		SELECT item_id, count() AS cnt
		FROM user_behavior
		WHERE behavior_type = ? AND time >= ?
		GROUP BY item_id
		ORDER BY cnt DESC, item_id ASC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, models.BehaviorPurchase, since, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query top purchased items: %w", err)
	}
	defer rows.Close()

	var results []models.ItemCount
	for rows.Next() {
		var itemID int64
		var cnt uint64
		if err := rows.Scan(&itemID, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan top purchased items row: %w", err)
		}
		results = append(results, models.ItemCount{ItemID: itemID, Count: cnt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during top purchased items query: %w", err)
	}

	return results, nil
}

// RecentPurchases returns the most recent purchase events, all time, newest
// first.
func (s *BehaviorStore) RecentPurchases(ctx context.Context, limit int) ([]models.PurchaseRecord, error) {
	query := `
		SELECT user_id, item_id, time
		FROM user_behavior
		WHERE behavior_type = ?
		ORDER BY time DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, models.BehaviorPurchase, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent purchases: %w", err)
	}
	defer rows.Close()

	var results []models.PurchaseRecord
	for rows.Next() {
		var rec models.PurchaseRecord
		if err := rows.Scan(&rec.UserID, &rec.ItemID, &rec.Time); err != nil {
			return nil, fmt.Errorf("failed to scan recent purchases row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during recent purchases query: %w", err)
	}

	return results, nil
}

// GeoSample returns up to limit distinct (user, geohash) pairs with a
// well-formed geohash. It is a bounded sample, not the full population:
// geo-distribution figures are approximate once the table exceeds the cap.
func (s *BehaviorStore) GeoSample(ctx context.Context, limit int) ([]models.GeoSampleRow, error) {
	query := `
		SELECT DISTINCT user_id, user_geohash
		FROM user_behavior
		WHERE user_geohash != '' AND match(user_geohash, ?)
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, "^[0-9b-hj-np-z]{5,12}$", uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query geo sample: %w", err)
	}
	defer rows.Close()

	var results []models.GeoSampleRow
	for rows.Next() {
		var row models.GeoSampleRow
		if err := rows.Scan(&row.UserID, &row.Geohash); err != nil {
			return nil, fmt.Errorf("failed to scan geo sample row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during geo sample query: %w", err)
	}

	return results, nil
}
