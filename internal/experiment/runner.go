package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/onto16/internal/checksum"
	"github.com/starford/onto16/internal/metrics"
	"github.com/starford/onto16/internal/models"
	"github.com/starford/onto16/internal/trigger"
)

// Phase names.
const (
	PhaseBaseline = "baseline"
	PhaseStressed = "stressed"
	PhaseIsolated = "isolated"
)

// shortHash is the number of hash characters shown in progress output.
const shortHash = 12

// Snapshot is the fingerprint of one phase.
type Snapshot struct {
	Phase       string  `json:"phase"`
	Hash        string  `json:"hash"`
	EnergyState float32 `json:"energy_state"`
	Version     uint32  `json:"version"`
	Nodes       int     `json:"nodes"`
}

// Report is the outcome of a single run.
type Report struct {
	// RunID distinguishes repeated runs of the same trigger.
	RunID           string   `json:"run_id"`
	Trigger         string   `json:"trigger"`
	TriggerChecksum string   `json:"trigger_checksum"`
	Params          Params   `json:"params"`
	Baseline        Snapshot `json:"baseline"`
	Stressed        Snapshot `json:"stressed"`
	Isolated        Snapshot `json:"isolated"`
	// StressDistance is baseline vs stressed.
	StressDistance float64 `json:"stress_distance"`
	// FinalDistance is baseline vs isolated.
	FinalDistance float64 `json:"final_distance"`
	// RecoveryDistance is stressed vs isolated.
	RecoveryDistance float64 `json:"recovery_distance"`
	Irreversible     bool    `json:"irreversible"`
}

// Runner executes runs with fixed params.
type Runner struct {
	params Params
	out    io.Writer
	logger *slog.Logger
}

// NewRunner creates a Runner. Progress lines go to out; out may be nil.
func NewRunner(params Params, out io.Writer, logger *slog.Logger) *Runner {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{params: params, out: out, logger: logger}
}

// Run applies trig to base, withdraws it and reports drift for each phase.
// base is not modified. ctx is checked between phases.
func (r *Runner) Run(ctx context.Context, base models.Profile, trig *trigger.Trigger) (*Report, error) {
	if trig == nil {
		return nil, fmt.Errorf("experiment: trigger is required")
	}
	runID := uuid.New().String()
	logger := r.logger.With(slog.String("trigger", trig.Name), slog.String("run_id", runID))

	baseHash := metrics.Hash(base)
	r.printf("→ t0: baseline\n   hash: %s\n", checksum.Short(baseHash, shortHash))
	logger.Debug("experiment: baseline", slog.String("hash", baseHash), slog.Int("nodes", base.Len()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stressed := ApplyTrigger(base, trig.Nodes, r.params)
	stressedHash := metrics.Hash(stressed)
	stressDistance := metrics.JaccardDistance(base, stressed)
	r.printf("→ t1-t3: applying trigger %s\n   hash: %s\n   ΔJaccard: %.3f\n",
		trig.Name, checksum.Short(stressedHash, shortHash), stressDistance)
	logger.Debug("experiment: stressed",
		slog.String("hash", stressedHash),
		slog.Float64("distance", stressDistance),
		slog.Float64("energy", float64(stressed.EnergyState)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.printf("→ t4-t6: isolation (trigger withdrawn)\n")
	isolated := Isolate(stressed, r.params)
	isolatedHash := metrics.Hash(isolated)
	finalDistance := metrics.JaccardDistance(base, isolated)
	r.printf("→ t7: final state\n   hash: %s\n   ΔJaccard from baseline: %.3f\n",
		checksum.Short(isolatedHash, shortHash), finalDistance)

	report := &Report{
		RunID:            runID,
		Trigger:          trig.Name,
		TriggerChecksum:  trig.Checksum,
		Params:           r.params,
		Baseline:         snapshot(PhaseBaseline, base, baseHash),
		Stressed:         snapshot(PhaseStressed, stressed, stressedHash),
		Isolated:         snapshot(PhaseIsolated, isolated, isolatedHash),
		StressDistance:   stressDistance,
		FinalDistance:    finalDistance,
		RecoveryDistance: metrics.JaccardDistance(stressed, isolated),
		Irreversible:     finalDistance > r.params.IrreversibleThreshold,
	}

	if report.Irreversible {
		r.printf("IRREVERSIBLE (ΔJaccard %.3f > %.2f)\n", finalDistance, r.params.IrreversibleThreshold)
	} else {
		r.printf("recovered (ΔJaccard %.3f <= %.2f)\n", finalDistance, r.params.IrreversibleThreshold)
	}

	logger.Info("experiment: finished",
		slog.String("final_hash", isolatedHash),
		slog.Float64("final_distance", finalDistance),
		slog.Bool("irreversible", report.Irreversible))

	return report, nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func snapshot(phase string, p models.Profile, hash string) Snapshot {
	return Snapshot{
		Phase:       phase,
		Hash:        hash,
		EnergyState: p.EnergyState,
		Version:     p.Version,
		Nodes:       p.Len(),
	}
}
