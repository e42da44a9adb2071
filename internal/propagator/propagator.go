// Package propagator orchestrates one simulation time step (spec §4.9):
// the standard 2D/3D propagators convolve in frequency space with a
// uniform parameter set; the embedded propagator convolves in the spatial
// domain so that growth parameters can vary per cell. All three own their
// scratch buffers outright and are not safe for concurrent Step calls on
// the same instance.
package propagator

import (
	"os"

	"flowlenia/internal/config"
	"flowlenia/internal/kernel"
	"flowlenia/internal/workerpool"

	"github.com/rs/zerolog"
)

// Log is the package-level construction-time logger. Step never logs
// (spec §7: numerical anomalies inside step are silent by design); only
// New* functions emit Debug/Info events describing the scratch they
// allocate.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func buildKernels2D(cfg *config.SimulationConfig) ([]*kernel.Kernel, error) {
	kernels := make([]*kernel.Kernel, len(cfg.Kernels))
	for i, kc := range cfg.Kernels {
		k, err := kernel.Build2D(kc, cfg.KernelRadius)
		if err != nil {
			return nil, err
		}
		kernels[i] = k
	}
	return kernels, nil
}

func buildKernels3D(cfg *config.SimulationConfig) ([]*kernel.Kernel, error) {
	kernels := make([]*kernel.Kernel, len(cfg.Kernels))
	for i, kc := range cfg.Kernels {
		k, err := kernel.Build3D(kc, cfg.KernelRadius)
		if err != nil {
			return nil, err
		}
		kernels[i] = k
	}
	return kernels, nil
}

func newPool(channels int) *workerpool.Pool {
	p := &workerpool.Pool{}
	if channels > 0 {
		p.Workers = channels
	}
	p.Start()
	return p
}
