package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInitSetsAppInfo(t *testing.T) {
	Init("1.2.3", "abc123")

	value := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123"))
	require.Equal(t, float64(1), value)
}

func TestDBCollectorToleratesNilPool(t *testing.T) {
	collector := NewDBCollector(nil)
	collector.collect()
}
