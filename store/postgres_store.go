// api/store/postgres_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shoppulse/api/models"
)

// PostgresBehaviorStore is the Postgres driver for the same aggregation
// query set as BehaviorStore, for deployments where the behavior log lives
// in a plain relational table rather than ClickHouse.
type PostgresBehaviorStore struct {
	db *sql.DB
}

func NewPostgresBehaviorStore(db *sql.DB) *PostgresBehaviorStore {
	return &PostgresBehaviorStore{db: db}
}

func (s *PostgresBehaviorStore) MaxEventDate(ctx context.Context) (time.Time, error) {
	var total int64
	var maxTime sql.NullTime
	query := `SELECT COUNT(*), MAX(time) FROM user_behavior`
	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &maxTime); err != nil {
		return time.Time{}, fmt.Errorf("failed to query max event date: %w", err)
	}
	if total == 0 || !maxTime.Valid {
		return time.Time{}, ErrDataUnavailable
	}
	y, m, d := maxTime.Time.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func (s *PostgresBehaviorStore) TotalUsers(ctx context.Context) (uint64, error) {
	var total int64
	query := `SELECT COUNT(DISTINCT user_id) FROM user_behavior`
	if err := s.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query total users: %w", err)
	}
	return uint64(total), nil
}

func (s *PostgresBehaviorStore) NewUsers(ctx context.Context, day time.Time) (uint64, error) {
	var total int64
	query := `SELECT COUNT(DISTINCT user_id) FROM user_behavior WHERE DATE(time) = DATE($1)`
	if err := s.db.QueryRowContext(ctx, query, day).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query new users: %w", err)
	}
	return uint64(total), nil
}

func (s *PostgresBehaviorStore) ActiveUsers(ctx context.Context, since time.Time) (uint64, error) {
	var total int64
	query := `SELECT COUNT(DISTINCT user_id) FROM user_behavior WHERE time >= $1`
	if err := s.db.QueryRowContext(ctx, query, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query active users: %w", err)
	}
	return uint64(total), nil
}

func (s *PostgresBehaviorStore) RepeatPurchasers(ctx context.Context, since time.Time) (uint64, error) {
	var total int64
	query := `
		SELECT COUNT(*) FROM (
			SELECT user_id
			FROM user_behavior
			WHERE behavior_type = $1 AND time >= $2
			GROUP BY user_id
			HAVING COUNT(*) >= 2
		) t
	`
	if err := s.db.QueryRowContext(ctx, query, models.BehaviorPurchase, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to query repeat purchasers: %w", err)
	}
	return uint64(total), nil
}

func (s *PostgresBehaviorStore) ChannelDistribution(ctx context.Context) ([]models.ChannelCount, error) {
	query := `
		SELECT behavior_type, COUNT(*)
		FROM user_behavior
		WHERE behavior_type IN ($1, $2, $3, $4)
		GROUP BY behavior_type
	`
	rows, err := s.db.QueryContext(ctx, query,
		models.BehaviorView, models.BehaviorFavorite, models.BehaviorCart, models.BehaviorPurchase)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel distribution: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var code string
		var cnt int64
		if err := rows.Scan(&code, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan channel distribution row: %w", err)
		}
		counts[code] = uint64(cnt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during channel distribution query: %w", err)
	}

	return models.ChannelCountsFromCodes(counts), nil
}

func (s *PostgresBehaviorStore) HourlyDistribution(ctx context.Context, since time.Time) ([]models.HourlyCount, error) {
	query := `
		SELECT EXTRACT(HOUR FROM time)::int AS hour, COUNT(*)
		FROM user_behavior
		WHERE time >= $1
		GROUP BY hour
		ORDER BY hour
	`
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly distribution: %w", err)
	}
	defer rows.Close()

	var results []models.HourlyCount
	for rows.Next() {
		var hour int
		var cnt int64
		if err := rows.Scan(&hour, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan hourly distribution row: %w", err)
		}
		results = append(results, models.HourlyCount{Hour: hour, Count: uint64(cnt)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during hourly distribution query: %w", err)
	}

	return results, nil
}

func (s *PostgresBehaviorStore) ConversionFunnel(ctx context.Context, since time.Time) (models.Funnel, error) {
	var viewed, carted, purchased int64
	query := `
		SELECT
			COUNT(DISTINCT CASE WHEN behavior_type = $1 THEN user_id END),
			COUNT(DISTINCT CASE WHEN behavior_type = $2 THEN user_id END),
			COUNT(DISTINCT CASE WHEN behavior_type = $3 THEN user_id END)
		FROM user_behavior
		WHERE time >= $4
	`
	err := s.db.QueryRowContext(ctx, query,
		models.BehaviorView, models.BehaviorCart, models.BehaviorPurchase, since).
		Scan(&viewed, &carted, &purchased)
	if err != nil {
		return models.Funnel{}, fmt.Errorf("failed to query conversion funnel: %w", err)
	}
	return models.Funnel{
		Viewed:    uint64(viewed),
		Carted:    uint64(carted),
		Purchased: uint64(purchased),
	}, nil
}

func (s *PostgresBehaviorStore) TopPurchasedItems(ctx context.Context, since time.Time, limit int) ([]models.ItemCount, error) {
	query := `
		SELECT item_id, COUNT(*) AS cnt
		FROM user_behavior
		WHERE behavior_type = $1 AND time >= $2
		GROUP BY item_id
		ORDER BY cnt DESC, item_id ASC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, models.BehaviorPurchase, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top purchased items: %w", err)
	}
	defer rows.Close()

	var results []models.ItemCount
	for rows.Next() {
		var itemID, cnt int64
		if err := rows.Scan(&itemID, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan top purchased items row: %w", err)
		}
		results = append(results, models.ItemCount{ItemID: itemID, Count: uint64(cnt)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during top purchased items query: %w", err)
	}

	return results, nil
}

func (s *PostgresBehaviorStore) RecentPurchases(ctx context.Context, limit int) ([]models.PurchaseRecord, error) {
	query := `
		SELECT user_id, item_id, time
		FROM user_behavior
		WHERE behavior_type = $1
		ORDER BY time DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, models.BehaviorPurchase, limit)
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

func (s *PostgresBehaviorStore) GeoSample(ctx context.Context, limit int) ([]models.GeoSampleRow, error) {
	query := `
		SELECT DISTINCT user_id, user_geohash
		FROM user_behavior
		WHERE user_geohash IS NOT NULL
		  AND user_geohash <> ''
		  AND user_geohash ~ $1
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, "^[0-9b-hj-np-z]{5,12}$", limit)
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
