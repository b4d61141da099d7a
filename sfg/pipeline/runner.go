package pipeline

import (
	"time"

	"github.com/cwbudde/algo-sfg/sfg/catalog"
	"github.com/cwbudde/algo-sfg/sfg/cosmic"
)

// Params holds the processing parameters of one run.
type Params struct {
	W1        float64 // visible wavelength in nm
	Automatic bool    // run the automatic spike detector
	Overrides []cosmic.Override
	Detector  []cosmic.Option
}

// Runner chains every stage over a built catalog.
type Runner struct {
	opts []Option
	cfg  Config
}

// NewRunner creates a runner; opts apply to every stage.
func NewRunner(opts ...Option) *Runner {
	return &Runner{opts: opts, cfg: ApplyOptions(opts...)}
}

// Run loads and processes every entry of cat. It stops at the first stage
// that fails.
func (r *Runner) Run(cat *catalog.Catalog, loader Loader, p Params) (*Result, error) {
	log := r.cfg.Logger
	start := time.Now()
	mark := start
	lap := func(stage string) {
		now := time.Now()
		log.Info("stage done", "stage", stage, "elapsed", now.Sub(mark))
		mark = now
	}

	loaded, err := Load(cat, loader, r.opts...)
	if err != nil {
		return nil, err
	}
	lap("load")

	cleaned, err := loaded.RemoveCosmicRays(p.Automatic, p.Overrides, p.Detector...)
	if err != nil {
		return nil, err
	}
	lap("remove cosmic rays")

	averaged, err := cleaned.AverageFrames()
	if err != nil {
		return nil, err
	}
	lap("average frames")

	subtracted, err := averaged.SubtractBackground()
	if err != nil {
		return nil, err
	}
	lap("subtract background")

	res, err := subtracted.Normalize(p.W1)
	if err != nil {
		return nil, err
	}
	lap("normalize")

	log.Info("processing finished", "files", cat.Len(), "elapsed", time.Since(start))
	return res, nil
}
