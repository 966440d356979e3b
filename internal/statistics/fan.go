package statistics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const fanSubsystem = "fan"

type FanCollector struct {
	source      ResultSource
	expectedRpm *prometheus.Desc
	observedRpm *prometheus.Desc
}

func NewFanCollector(source ResultSource) *FanCollector {
	return &FanCollector{
		source: source,
		expectedRpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "expected_rpm"),
			"Projected rpm of a fan during a scenario",
			[]string{"id", "fan"}, nil,
		),
		observedRpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "observed_rpm"),
			"Last rpm of a fan observed during a scenario",
			[]string{"id", "fan"}, nil,
		),
	}
}

func (collector *FanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.expectedRpm
	ch <- collector.observedRpm
}

// Collect implements required collect function for all prometheus collectors
func (collector *FanCollector) Collect(ch chan<- prometheus.Metric) {
	for _, result := range collector.source.Results() {
		for _, expectation := range result.Expected.Fans {
			fan := strconv.Itoa(expectation.Fan)
			ch <- prometheus.MustNewConstMetric(collector.expectedRpm, prometheus.GaugeValue, float64(expectation.Rpm), result.ID, fan)
			if rpm, ok := result.Observed.Rpms[expectation.Fan]; ok {
				ch <- prometheus.MustNewConstMetric(collector.observedRpm, prometheus.GaugeValue, float64(rpm), result.ID, fan)
			}
		}
	}
}
