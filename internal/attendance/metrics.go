package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "eventdesk_attendance_commits_total",
	Help: "Committed attendance records by selected accompaniment category.",
}, []string{"category"})
