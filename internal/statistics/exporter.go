package statistics

import (
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "tcoracle"
)

// ResultSource provides the verification results recorded so far
type ResultSource interface {
	Results() []session.Result
}

// RegisterAll registers every collector of a result source with the given registerer
func RegisterAll(registerer prometheus.Registerer, source ResultSource) error {
	for _, c := range []prometheus.Collector{
		NewVerificationCollector(source),
		NewFanCollector(source),
	} {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func status(result session.Result) string {
	switch {
	case result.Skipped:
		return "skipped"
	case result.Passed:
		return "passed"
	}
	return "failed"
}

func className(result session.Result) string {
	if result.Stimulus.Kind == session.KindFault {
		return result.Stimulus.Fault.String()
	}
	return string(result.Stimulus.Class)
}
