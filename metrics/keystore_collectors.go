package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sync"
)

type KeystoreMetrics struct {
	KeystoreCreatedKeysCounter *prometheus.CounterVec
	KeystoreSignCounter        *prometheus.CounterVec
	KeystoreVrfSignCounter     prometheus.Counter
	KeystoreLookupMissCounter  prometheus.Counter
}

var keystoreMetricsRegisterOnce sync.Once

var keystoreMetricsInstance *KeystoreMetrics

func NewKeystoreMetrics() *KeystoreMetrics {
	keystoreMetricsRegisterOnce.Do(func() {
		keystoreMetricsInstance = &KeystoreMetrics{
			KeystoreCreatedKeysCounter: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "keystore_created_keys_counter",
					Help: "Total number of keys created in the keystore",
				},
				[]string{"scheme"},
			),
			KeystoreSignCounter: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "keystore_sign_counter",
					Help: "Total number of signatures made by the keystore",
				},
				[]string{"scheme"},
			),
			KeystoreVrfSignCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "keystore_vrf_sign_counter",
				Help: "Total number of VRF outputs made by the keystore",
			}),
			KeystoreLookupMissCounter: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "keystore_lookup_miss_counter",
				Help: "Total number of key lookups that found no usable pair",
			}),
		}

		// Register the keystore metrics with Prometheus
		prometheus.MustRegister(keystoreMetricsInstance.KeystoreCreatedKeysCounter)
		prometheus.MustRegister(keystoreMetricsInstance.KeystoreSignCounter)
		prometheus.MustRegister(keystoreMetricsInstance.KeystoreVrfSignCounter)
		prometheus.MustRegister(keystoreMetricsInstance.KeystoreLookupMissCounter)
	})

	return keystoreMetricsInstance
}
