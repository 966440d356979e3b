package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const verificationSubsystem = "verification"

type VerificationCollector struct {
	source ResultSource

	expectedPwm *prometheus.Desc
	observedPwm *prometheus.Desc
	attempts    *prometheus.Desc
	passed      *prometheus.Desc
	results     *prometheus.Desc
}

func NewVerificationCollector(source ResultSource) *VerificationCollector {
	return &VerificationCollector{
		source: source,
		expectedPwm: prometheus.NewDesc(prometheus.BuildFQName(namespace, verificationSubsystem, "expected_pwm"),
			"Lowest pwm in percent the thermal control is expected to apply for a scenario",
			[]string{"id", "class"}, nil,
		),
		observedPwm: prometheus.NewDesc(prometheus.BuildFQName(namespace, verificationSubsystem, "observed_pwm"),
			"Last pwm in percent observed during a scenario",
			[]string{"id", "class"}, nil,
		),
		attempts: prometheus.NewDesc(prometheus.BuildFQName(namespace, verificationSubsystem, "attempts"),
			"Number of polls a scenario needed",
			[]string{"id", "class"}, nil,
		),
		passed: prometheus.NewDesc(prometheus.BuildFQName(namespace, verificationSubsystem, "passed"),
			"1 if the scenario passed, 0 otherwise",
			[]string{"id", "class"}, nil,
		),
		results: prometheus.NewDesc(prometheus.BuildFQName(namespace, verificationSubsystem, "results_total"),
			"Number of scenarios by outcome",
			[]string{"class", "status"}, nil,
		),
	}
}

func (collector *VerificationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.expectedPwm
	ch <- collector.observedPwm
	ch <- collector.attempts
	ch <- collector.passed
	ch <- collector.results
}

// Collect implements required collect function for all prometheus collectors
func (collector *VerificationCollector) Collect(ch chan<- prometheus.Metric) {
	counts := map[[2]string]int{}
	for _, result := range collector.source.Results() {
		class := className(result)
		counts[[2]string{class, status(result)}]++
		if result.Skipped {
			continue
		}

		passed := 0.0
		if result.Passed {
			passed = 1
		}
		ch <- prometheus.MustNewConstMetric(collector.expectedPwm, prometheus.GaugeValue, float64(result.Expected.Pwm), result.ID, class)
		ch <- prometheus.MustNewConstMetric(collector.observedPwm, prometheus.GaugeValue, float64(result.Observed.Pwm), result.ID, class)
		ch <- prometheus.MustNewConstMetric(collector.attempts, prometheus.GaugeValue, float64(result.Attempts), result.ID, class)
		ch <- prometheus.MustNewConstMetric(collector.passed, prometheus.GaugeValue, passed, result.ID, class)
	}
	for key, count := range counts {
		ch <- prometheus.MustNewConstMetric(collector.results, prometheus.CounterValue, float64(count), key[0], key[1])
	}
}
