package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yndnr/tokstore/internal/infra/buildinfo"
)

func registerRuntimeCollectors(reg prometheus.Registerer) {
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RegisterBuildInfo registers tokstore_build_info, a gauge fixed at 1 whose
// labels describe the running build.
func (r *Registry) RegisterBuildInfo(info buildinfo.Info) {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "build_info",
			Help:      "Gauge with labels describing go version, git revision and TokStore version.",
		},
		[]string{"goversion", "revision", "version"},
	)
	if err := r.registry.Register(vec); err != nil {
		return
	}
	vec.WithLabelValues(info.GoVersion, info.Commit, info.Version).Set(1)
}
