package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBConnectionsOpen = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Total number of open database connections",
		},
	)

	DBConnectionsInUse = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of database connections currently acquired",
		},
	)

	DBConnectionsIdle = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
	)
)

// DBCollector periodically copies pool statistics into the gauges.
type DBCollector struct {
	pool     *pgxpool.Pool
	stopChan chan struct{}
}

func NewDBCollector(pool *pgxpool.Pool) *DBCollector {
	return &DBCollector{
		pool:     pool,
		stopChan: make(chan struct{}),
	}
}

func (c *DBCollector) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *DBCollector) Stop() {
	close(c.stopChan)
}

func (c *DBCollector) collect() {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	DBConnectionsOpen.Set(float64(stat.TotalConns()))
	DBConnectionsInUse.Set(float64(stat.AcquiredConns()))
	DBConnectionsIdle.Set(float64(stat.IdleConns()))
}
