// Package pipeline drives one optimization request end to end:
// reorder the circuit for fidelity, route it onto the coupling graph,
// and score the result against the input.
package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	ferrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"github.com/sadpig70/qns-go/circuit"
	"github.com/sadpig70/qns-go/noise"
	"github.com/sadpig70/qns-go/reorder"
	"github.com/sadpig70/qns-go/router"
	"github.com/sadpig70/qns-go/scoring"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

// Options bundles the per-component configurations of one request.
type Options struct {
	Scoring scoring.Config
	Reorder reorder.Config
	Router  router.Config
}

func DefaultOptions() Options {
	return Options{
		Scoring: scoring.DefaultConfig(),
		Reorder: reorder.DefaultConfig(),
		Router:  router.DefaultConfig(),
	}
}

// Report summarizes one optimization request.
type Report struct {
	RequestID      string  `json:"request_id"`
	FidelityBefore float64 `json:"fidelity_before"`
	FidelityAfter  float64 `json:"fidelity_after"`
	GateCount      int     `json:"gate_count"`
	SwapCount      int     `json:"swap_count"`
	Mapping        []int   `json:"mapping"`
	ReorderSwaps   []int   `json:"reorder_swaps"`
	ElapsedUS      int64   `json:"elapsed_us"`

	Circuit *circuit.Circuit `json:"-"`
}

func (r *Report) Clone() *Report {
	clone := deepcopy.Copy(r).(*Report)
	// Circuits are immutable, sharing the pointer is safe.
	clone.Circuit = r.Circuit
	return clone
}

// JSONString renders the report for logging. Pretty-printed in color
// when color is true.
func (r *Report) JSONString(color bool) string {
	raw, err := json.Marshal(r)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal report/reason:%s", err))
		return ""
	}
	if color {
		return string(pretty.Color(pretty.Pretty(raw), nil))
	}
	return string(pretty.Pretty(raw))
}

// Optimize runs reorder then route on c and scores both ends. Inputs
// are never mutated, so independent requests may run concurrently.
func Optimize(c *circuit.Circuit, p *noise.Profile, g *noise.CouplingGraph, opts Options) (*Report, error) {
	start := time.Now()
	requestID := uuid.New().String()
	zap.L().Info(fmt.Sprintf("Starting optimization request %s with %d gates on %d qubits",
		requestID, c.GateCount(), c.QubitCount()))

	before := scoring.EstimateFidelity(c, p, opts.Scoring)

	score := func(cand *circuit.Circuit) float64 {
		return scoring.EstimateFidelity(cand, p, opts.Scoring)
	}
	gen := reorder.NewGenerator(opts.Reorder)
	best, err := gen.Search(c, score)
	if err != nil {
		return nil, ferrors.Wrap(err, "variant search failed")
	}
	zap.L().Debug(fmt.Sprintf("Reorder finished/request:%s/swaps:%d/score:%f",
		requestID, len(best.Swaps), best.Score))

	routed, err := router.Route(best.Circuit, p, g, opts.Router)
	if err != nil {
		return nil, ferrors.Wrap(err, "routing failed")
	}

	after := scoring.EstimateFidelity(routed.Circuit, p, opts.Scoring)
	elapsed := time.Since(start)

	report := &Report{
		RequestID:      requestID,
		FidelityBefore: before,
		FidelityAfter:  after,
		GateCount:      routed.Circuit.GateCount(),
		SwapCount:      routed.SwapCount,
		Mapping:        routed.Mapping,
		ReorderSwaps:   best.Swaps,
		ElapsedUS:      elapsed.Microseconds(),
		Circuit:        routed.Circuit,
	}
	zap.L().Info(fmt.Sprintf("Finished optimization request %s in %s", requestID, elapsed))
	zap.L().Debug(fmt.Sprintf("Report is %s", report.JSONString(false)))
	return report, nil
}
