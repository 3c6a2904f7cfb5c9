package engine

import (
	"runtime"
	"sync"
)

// serialThreshold is the particle count below which goroutine overhead
// outweighs the parallel speedup.
const serialThreshold = 16

type CPUPlatform struct {
	workers int
}

// NewCPUPlatform returns a parallel platform. workers <= 0 uses one worker per CPU.
func NewCPUPlatform(workers int) *CPUPlatform {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUPlatform{workers: workers}
}

func (c *CPUPlatform) Name() string    { return "cpu" }
func (c *CPUPlatform) Available() bool { return c.workers > 1 }
func (c *CPUPlatform) Workers() int    { return c.workers }

func (c *CPUPlatform) PairForces(pos []Vec3, pair PairFunc, out []Vec3) float64 {
	n := len(pos)
	if n < serialThreshold || c.workers <= 1 {
		return pairsSerial(pos, pair, out)
	}
	return c.pairsParallel(pos, pair, out)
}

// pairsParallel gives each worker a block of rows. Every pair is visited from
// both ends so that a worker only writes forces for its own rows; the double
// counted energy is halved at the end.
func (c *CPUPlatform) pairsParallel(pos []Vec3, pair PairFunc, out []Vec3) float64 {
	n := len(pos)
	workers := c.workers
	if workers > n {
		workers = n
	}
	energies := make([]float64, workers)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			start := worker * chunkSize
			end := start + chunkSize
			if end > n {
				end = n
			}

			local := 0.0
			for i := start; i < end; i++ {
				var fi Vec3
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					r := pos[j].Sub(pos[i])
					coef, e := pair(i, j, r, r.Norm2())
					if coef != 0 {
						fi = fi.Add(r.Scale(coef))
					}
					local += e
				}
				out[i] = out[i].Add(fi)
			}
			energies[worker] = local
		}(w)
	}

	wg.Wait()

	total := 0.0
	for _, e := range energies {
		total += e
	}
	return total / 2
}
