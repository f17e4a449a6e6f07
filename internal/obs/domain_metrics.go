package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts computed price quotes by outcome and discount usage.
	QuotesTotal *prometheus.CounterVec
	// PricingCacheTotal counts pricing read-through cache lookups by result.
	PricingCacheTotal *prometheus.CounterVec
	// CacheInvalidationsTotal counts background cache invalidation outcomes.
	CacheInvalidationsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quotes_total",
			Help:      "Count of price quote computations by outcome.",
		}, []string{"result", "discounted"})
		PricingCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_cache_lookups_total",
			Help:      "Count of pricing cache lookups by result.",
		}, []string{"entity", "result"})
		CacheInvalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Count of processed cache invalidation tasks by outcome.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotesTotal = v
			}
		})
		mustRegisterCollector(reg, PricingCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingCacheTotal = v
			}
		})
		mustRegisterCollector(reg, CacheInvalidationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CacheInvalidationsTotal = v
			}
		})
	})
}

// CountQuote records one quote computation outcome; safe before registration.
func CountQuote(result string, discounted bool) {
	if QuotesTotal == nil {
		return
	}
	label := "false"
	if discounted {
		label = "true"
	}
	QuotesTotal.WithLabelValues(result, label).Inc()
}

// CountInvalidation records one processed cache invalidation task.
func CountInvalidation(result string) {
	if CacheInvalidationsTotal == nil {
		return
	}
	CacheInvalidationsTotal.WithLabelValues(result).Inc()
}

// CountCacheLookup records one cache lookup for the given entity.
func CountCacheLookup(entity, result string) {
	if PricingCacheTotal == nil {
		return
	}
	PricingCacheTotal.WithLabelValues(entity, result).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
