// Package metrics exposes Prometheus counters for links, redirects,
// authentication failures and cache lookups.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth methods and cache results used as label values.
const (
	AuthSession = "session"
	AuthAPIKey  = "api_key"
	AuthLogin   = "login"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	LinksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_links_created_total",
			Help: "Total number of links created",
		},
	)

	RedirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_redirects_total",
			Help: "Total number of successful redirects",
		},
	)

	// AuthFailuresTotal counts rejected credentials by the method that was tried last.
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_auth_failures_total",
			Help: "Total number of rejected credentials",
		},
		[]string{"method"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_cache_lookups_total",
			Help: "Total number of link cache lookups by result",
		},
		[]string{"result"},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
