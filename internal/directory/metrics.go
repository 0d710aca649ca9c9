package directory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "eventdesk_directory_lookups_total",
	Help: "Student lookups by outcome.",
}, []string{"outcome"})
