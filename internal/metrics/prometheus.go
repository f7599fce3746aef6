package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Gateway counters. Declared eagerly so call sites never race Init; Init
// only registers them with the process registry.
var (
	AuthCodesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_gateway_auth_codes_issued_total",
		Help: "Total number of authorization codes issued.",
	})
	CodesRedeemedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_gateway_codes_redeemed_total",
		Help: "Total number of authorization codes successfully redeemed for tokens.",
	})
	RedemptionsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_gateway_redemptions_rejected_total",
		Help: "Total number of redemption attempts rejected (invalid, expired, or reused codes).",
	})
	IdentityLookupFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_gateway_identity_lookup_failures_total",
		Help: "Total number of failed identity provider user resolutions.",
	})
)

// Init registers the gateway metrics. Call once at startup.
func Init(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register gateway metrics")
		return
	}

	collectors := []prometheus.Collector{
		AuthCodesIssuedTotal,
		CodesRedeemedTotal,
		RedemptionsRejectedTotal,
		IdentityLookupFailuresTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register gateway metric")
		}
	}
}
