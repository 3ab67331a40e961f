package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventconnect"

// Registry is the Prometheus registry for all server metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes version information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit"},
)

// Init records application metadata. Call once at startup.
func Init(version, commit string) {
	AppInfo.WithLabelValues(version, commit).Set(1)
}
