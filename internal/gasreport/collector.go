// Package gasreport collects per-method gas usage and renders gas reports.
package gasreport

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/storage"
)

// MethodDeployment is the method name recorded for contract creations.
const MethodDeployment = "deployment"

// Collector records gas samples. It is safe for concurrent use and a nil
// *Collector records nothing.
type Collector struct {
	mu      sync.Mutex
	samples []storage.GasSample
	metrics *metrics.PrometheusMetrics
}

// NewCollector creates a collector that also feeds m when it is not nil.
func NewCollector(m *metrics.PrometheusMetrics) *Collector {
	return &Collector{metrics: m}
}

// Record adds the gas used by receipt.
func (c *Collector) Record(contract, method string, receipt *types.Receipt) {
	if c == nil || receipt == nil {
		return
	}
	c.Add(storage.GasSample{
		Contract: contract,
		Method:   method,
		GasUsed:  receipt.GasUsed,
		TxHash:   receipt.TxHash.Hex(),
	})
}

// Add records a sample.
func (c *Collector) Add(s storage.GasSample) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.samples = append(c.samples, s)
	c.mu.Unlock()
	c.metrics.ObserveGas(s.Contract, s.Method, s.GasUsed)
}

// Samples returns a copy of the recorded samples.
func (c *Collector) Samples() []storage.GasSample {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]storage.GasSample(nil), c.samples...)
}

// Summary returns the aggregated samples.
func (c *Collector) Summary() Summary {
	return Summarize(c.Samples())
}

// Stats aggregates the gas used by one contract method or deployment.
type Stats struct {
	Contract string `json:"contract"`
	Method   string `json:"method,omitempty"`
	Min      uint64 `json:"min"`
	Max      uint64 `json:"max"`
	Avg      uint64 `json:"avg"`
	Calls    int    `json:"calls"`
}

// Summary splits the aggregates into method calls and deployments, each
// sorted by contract then method.
type Summary struct {
	Methods     []Stats `json:"methods"`
	Deployments []Stats `json:"deployments"`
}

// Summarize aggregates samples by contract and method.
func Summarize(samples []storage.GasSample) Summary {
	type key struct{ contract, method string }
	type acc struct {
		min, max, total uint64
		calls           int
	}

	byKey := make(map[key]*acc)
	for _, s := range samples {
		k := key{s.Contract, s.Method}
		a, ok := byKey[k]
		if !ok {
			a = &acc{min: s.GasUsed, max: s.GasUsed}
			byKey[k] = a
		}
		a.min = min(a.min, s.GasUsed)
		a.max = max(a.max, s.GasUsed)
		a.total += s.GasUsed
		a.calls++
	}

	var out Summary
	for k, a := range byKey {
		st := Stats{
			Contract: k.contract,
			Min:      a.min,
			Max:      a.max,
			Avg:      a.total / uint64(a.calls),
			Calls:    a.calls,
		}
		if k.method == MethodDeployment {
			out.Deployments = append(out.Deployments, st)
			continue
		}
		st.Method = k.method
		out.Methods = append(out.Methods, st)
	}

	sort.Slice(out.Methods, func(i, j int) bool {
		if out.Methods[i].Contract != out.Methods[j].Contract {
			return out.Methods[i].Contract < out.Methods[j].Contract
		}
		return out.Methods[i].Method < out.Methods[j].Method
	})
	sort.Slice(out.Deployments, func(i, j int) bool {
		return out.Deployments[i].Contract < out.Deployments[j].Contract
	})
	return out
}
