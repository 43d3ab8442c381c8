package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/grammar"
	"github.com/PeterZhouSZ/string2shape/pkg/observability"
	"github.com/PeterZhouSZ/string2shape/pkg/wiggle"
)

// Repair statuses.
const (
	// RepairOK means the target validated (or was repaired) successfully.
	RepairOK = 0
	// RepairInvalid means the target's collision graph violates the
	// grammar, so no repair was attempted. The accompanying error carries
	// code GRAMMAR_VIOLATION.
	RepairInvalid = 1
	// RepairFailed means the repair loop did not produce a valid object.
	// The accompanying error distinguishes the causes: REPAIR_EXHAUSTED
	// when the pass cap ran out, REPAIR_INVALID when the loop converged
	// but the repaired contacts still violate the grammar.
	RepairFailed = 2
)

// Repair validates a target object against the grammar induced from two
// exemplars and, if valid, runs the iterative repair loop and re-validates.
// On success the repaired object is written to a path derived from
// outFilename in the target's directory.
func (r *Runner) Repair(ctx context.Context, fileA, fileB, fileTarget, outFilename string) (int, error) {
	outPath, err := repairOutputPath(fileTarget, outFilename)
	if err != nil {
		return RepairFailed, err
	}

	objA, _, err := loadObject(fileA)
	if err != nil {
		return RepairFailed, err
	}
	objB, _, err := loadObject(fileB)
	if err != nil {
		return RepairFailed, err
	}
	target, _, err := loadObject(fileTarget)
	if err != nil {
		return RepairFailed, err
	}

	det := r.detector()
	gA, err := det.ComputeCollisionGraph(objA, 0)
	if err != nil {
		return RepairFailed, err
	}
	gB, err := det.ComputeCollisionGraph(objB, 0)
	if err != nil {
		return RepairFailed, err
	}
	// The target may have drifted, so its contacts are detected with the
	// looser variation epsilon.
	gT, err := det.ComputeCollisionGraph(target, r.Config.Collision.VariationEpsilon)
	if err != nil {
		return RepairFailed, err
	}

	model := grammar.NewModel()
	if err := model.Init(objA, gA); err != nil {
		return RepairFailed, err
	}
	if err := model.Init(objB, gB); err != nil {
		return RepairFailed, err
	}

	if !model.Check(gT, target.PartTypes()) {
		r.Logger.Warn("target violates grammar, repair not attempted", "file", fileTarget)
		return RepairInvalid, errors.New(errors.ErrCodeGrammarViolation,
			"target %s has a contact the exemplars never show", fileTarget)
	}

	solver := wiggle.NewSolver()
	if err := solver.Init(objA, gA); err != nil {
		return RepairFailed, err
	}
	if err := solver.Init(objB, gB); err != nil {
		return RepairFailed, err
	}

	start := time.Now()
	state := wiggle.Exhausted
	passes := 0
	maxPasses := r.Config.Repair.MaxPasses
	if maxPasses < 1 {
		maxPasses = wiggle.MaxPasses
	}
	for pass := 1; pass <= maxPasses; pass++ {
		n, err := solver.FixRelativeTransformations(target, gT)
		if err != nil {
			observability.Pipeline().OnRepairComplete(ctx, state.String(), pass, time.Since(start), err)
			return RepairFailed, err
		}
		observability.Pipeline().OnRepairPass(ctx, pass, n)
		passes = pass
		if n == 0 {
			state = wiggle.Converged
			break
		}
	}

	// Post-repair validation recomputes strict contacts.
	valid := false
	if rg, err := det.ComputeCollisionGraph(target, 0); err == nil {
		valid = model.Check(rg, target.PartTypes())
	}
	observability.Pipeline().OnRepairComplete(ctx, state.String(), passes, time.Since(start), nil)
	r.Logger.Info("repair finished",
		"state", state.String(),
		"passes", passes,
		"valid", valid,
		"duration", time.Since(start))

	if !r.BypassValidation {
		if state != wiggle.Converged {
			return RepairFailed, errors.New(errors.ErrCodeRepairExhausted,
				"repair ran %d passes without converging", passes)
		}
		if !valid {
			return RepairFailed, errors.New(errors.ErrCodeRepairInvalid,
				"repair converged but the result still violates the grammar")
		}
	}

	if err := target.Save(outPath); err != nil {
		return RepairFailed, err
	}
	r.Logger.Info("wrote repaired object", "path", outPath)
	return RepairOK, nil
}

// repairOutputPath joins the target's directory with outFilename's basename
// stripped of its trailing five characters (the fixed-width "X.obj" suffix
// of generated names). Basenames too short to carry the suffix, or that
// strip down to nothing, are rejected.
func repairOutputPath(targetFile, outFilename string) (string, error) {
	base := filepath.Base(outFilename)
	if len(base) <= 5 {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"output name %q needs a basename longer than its five-character suffix", outFilename)
	}
	return filepath.Join(filepath.Dir(targetFile), base[:len(base)-5]), nil
}
