package pipeline_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-sfg/internal/testutil"
	"github.com/cwbudde/algo-sfg/sfg/catalog"
	"github.com/cwbudde/algo-sfg/sfg/cosmic"
	"github.com/cwbudde/algo-sfg/sfg/pipeline"
)

const (
	sampleFile = "water_ssp_600s_01.csv"
	sampleBg   = "water_ssp_600s_01_bg.csv"
	refFile    = "zqz_ssp_60s_01.csv"
	refBg      = "zqz_ssp_60s_01_bg.csv"
	calFile    = "cal_ssp_60s_01.csv"
	calBg      = "cal_ssp_60s_01_bg.csv"
)

func axis() []float64 {
	return testutil.Axis(620, 0.2, 51)
}

func frames(wl []float64, intensities ...[]float64) pipeline.Trace {
	t := pipeline.Trace{}
	for i, in := range intensities {
		t.Frames = append(t.Frames, pipeline.Frame{Number: i + 1, Wavelength: wl, Intensity: in})
	}
	return t
}

// dataset returns a complete synthetic run: a sample peak on a constant
// background, a flat reference and a calibration, each with background.
// scale multiplies every trace.
func dataset(scale float64) pipeline.MapLoader {
	wl := axis()
	n := len(wl)
	peak := testutil.Gaussian(wl, 626, 1.5, 40, 10)

	return pipeline.MapLoader{
		sampleFile: frames(wl,
			testutil.Scaled(testutil.AddNoise(peak, 1, 0.2), scale),
			testutil.Scaled(testutil.AddNoise(peak, 2, 0.2), scale),
			testutil.Scaled(testutil.AddNoise(peak, 3, 0.2), scale)),
		sampleBg: frames(wl, testutil.DC(10*scale, n), testutil.DC(10*scale, n)),
		refFile:  frames(wl, testutil.DC(205*scale, n)),
		refBg:    frames(wl, testutil.DC(5*scale, n)),
		calFile:  frames(wl, testutil.Gaussian(wl, 624, 0.5, 80, 3)),
		calBg:    frames(wl, testutil.DC(3, n)),
	}
}

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Build([]string{sampleFile, sampleBg, refFile, refBg, calFile, calBg})
	if err != nil {
		t.Fatalf("catalog.Build: %v", err)
	}
	return c
}

func load(t *testing.T, loader pipeline.Loader, opts ...pipeline.Option) *pipeline.Loaded {
	t.Helper()
	l, err := pipeline.Load(buildCatalog(t), loader, opts...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l
}

func run(t *testing.T, loader pipeline.Loader, w1 float64) *pipeline.Result {
	t.Helper()
	res, err := pipeline.NewRunner().Run(buildCatalog(t), loader, pipeline.Params{W1: w1, Automatic: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestWavenumber(t *testing.T) {
	got := pipeline.Wavenumber(793.27, 700)
	want := (1/700.0 - 1/793.27) * 1e7
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Wavenumber = %v, want %v", got, want)
	}
	// 4 significant figures: 1680 cm⁻¹.
	if math.Abs(got-1680) > 0.5 {
		t.Fatalf("Wavenumber = %.4g, want 1680", got)
	}
	if pipeline.Wavenumber(793.27, 793.27) != 0 {
		t.Fatal("wavenumber at the visible wavelength must be zero")
	}
}

func TestLoadErrors(t *testing.T) {
	cat := buildCatalog(t)

	loader := dataset(1)
	delete(loader, calBg)
	if _, err := pipeline.Load(cat, loader); !errors.Is(err, pipeline.ErrMissingTrace) {
		t.Fatalf("err = %v, want ErrMissingTrace", err)
	}

	loader = dataset(1)
	loader[calBg] = pipeline.Trace{}
	if _, err := pipeline.Load(cat, loader); !errors.Is(err, pipeline.ErrNoFrames) {
		t.Fatalf("err = %v, want ErrNoFrames", err)
	}

	loader = dataset(1)
	loader[calBg] = frames(axis(), []float64{1, 2})
	if _, err := pipeline.Load(cat, loader); !errors.Is(err, pipeline.ErrFrameLength) {
		t.Fatalf("err = %v, want ErrFrameLength", err)
	}
}

func TestAverageFramesConstant(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)
	loader[sampleFile] = frames(wl, testutil.DC(4.25, n), testutil.DC(4.25, n), testutil.DC(4.25, n), testutil.DC(4.25, n))

	cleaned, err := load(t, loader).RemoveCosmicRays(false, nil)
	if err != nil {
		t.Fatal(err)
	}
	avg, err := cleaned.AverageFrames()
	if err != nil {
		t.Fatal(err)
	}

	got, ok := avg.Mean(sampleFile)
	if !ok {
		t.Fatal("missing averaged curve")
	}
	testutil.RequireSliceNearlyEqual(t, got.Intensity, testutil.DC(4.25, n), 1e-12)
	testutil.RequireSliceNearlyEqual(t, got.Wavelength, wl, 0)
}

func TestAverageFramesMean(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)
	loader[sampleBg] = frames(wl, testutil.DC(1, n), testutil.DC(2, n), testutil.DC(6, n))

	cleaned, err := load(t, loader).RemoveCosmicRays(false, nil)
	if err != nil {
		t.Fatal(err)
	}
	avg, err := cleaned.AverageFrames()
	if err != nil {
		t.Fatal(err)
	}

	got, _ := avg.Mean(sampleBg)
	testutil.RequireSliceNearlyEqual(t, got.Intensity, testutil.DC(3, n), 1e-12)
}

func TestAverageFramesAxisMismatch(t *testing.T) {
	wl := axis()
	shifted := testutil.Axis(620.1, 0.2, len(wl))
	loader := dataset(1)
	loader[sampleFile] = pipeline.Trace{Frames: []pipeline.Frame{
		{Number: 1, Wavelength: wl, Intensity: testutil.DC(1, len(wl))},
		{Number: 2, Wavelength: shifted, Intensity: testutil.DC(1, len(wl))},
	}}

	cleaned, err := load(t, loader).RemoveCosmicRays(false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cleaned.AverageFrames(); !errors.Is(err, pipeline.ErrFrameAxisMismatch) {
		t.Fatalf("err = %v, want ErrFrameAxisMismatch", err)
	}
}

func TestManualOverrideRemovesFrameRange(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)

	// A broad, low artifact on frame 2, removed by a manual override.
	f1, f3 := testutil.DC(10, n), testutil.DC(10, n)
	f2 := testutil.DC(10, n)
	var artifact []int
	for i, x := range wl {
		if x >= 624.3 && x <= 625.1 {
			f2[i] = 11.5
			artifact = append(artifact, i)
		}
	}
	loader[sampleFile] = frames(wl, f1, f2, f3)

	overrides := []cosmic.Override{{Filename: sampleFile, Frame: 2, Range: cosmic.Range{Min: 624.3, Max: 625.1}}}
	loaded := load(t, loader)
	cleaned, err := loaded.RemoveCosmicRays(false, overrides)
	if err != nil {
		t.Fatal(err)
	}

	tr, _ := cleaned.CleanedTrace(sampleFile)
	f, _ := tr.Frame(2)
	for _, i := range artifact {
		if f.Intensity[i] == 11.5 {
			t.Fatalf("artifact at %.1f nm survived cleaning", wl[i])
		}
	}

	removed := cleaned.Removed(sampleFile)
	if len(removed) != len(artifact) {
		t.Fatalf("removed %d points, want %d", len(removed), len(artifact))
	}
	for _, p := range removed {
		if p.Frame != 2 || p.Intensity != 11.5 {
			t.Fatalf("diagnostic point %+v must hold frame 2 original 11.5", p)
		}
	}

	avg, err := cleaned.AverageFrames()
	if err != nil {
		t.Fatal(err)
	}
	mean, _ := avg.Mean(sampleFile)
	testutil.RequireSliceNearlyEqual(t, mean.Intensity, testutil.DC(10, n), 1e-12)

	// The raw trace is untouched.
	raw, _ := loaded.Raw(sampleFile)
	rf, _ := raw.Frame(2)
	if rf.Intensity[artifact[0]] != 11.5 {
		t.Fatal("raw trace was modified by cleaning")
	}
}

func TestInvalidCleaningTarget(t *testing.T) {
	loaded := load(t, dataset(1))

	for name, o := range map[string]cosmic.Override{
		"unknown file":  {Filename: "oil_ssp_600s_01.csv", Frame: 1, Range: cosmic.Range{Min: 620, Max: 621}},
		"unknown frame": {Filename: sampleFile, Frame: 7, Range: cosmic.Range{Min: 620, Max: 621}},
		"frame zero":    {Filename: sampleFile, Frame: 0, Range: cosmic.Range{Min: 620, Max: 621}},
		"empty range":   {Filename: sampleFile, Frame: 1, Range: cosmic.Range{Min: 700, Max: 701}},
	} {
		t.Run(name, func(t *testing.T) {
			c, err := loaded.RemoveCosmicRays(true, []cosmic.Override{o})
			if !errors.Is(err, cosmic.ErrInvalidCleaningTarget) {
				t.Fatalf("err = %v, want ErrInvalidCleaningTarget", err)
			}
			if c != nil {
				t.Fatal("no cleaned set may be returned on error")
			}
		})
	}
}

func TestSubtractZeroBackgroundIsIdentity(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)
	loader[sampleBg] = frames(wl, testutil.DC(0, n))

	cleaned, err := load(t, loader).RemoveCosmicRays(false, nil)
	if err != nil {
		t.Fatal(err)
	}
	avg, err := cleaned.AverageFrames()
	if err != nil {
		t.Fatal(err)
	}
	sub, err := avg.SubtractBackground()
	if err != nil {
		t.Fatal(err)
	}

	before, _ := avg.Mean(sampleFile)
	after, _ := sub.BackgroundSubtracted(sampleFile)
	testutil.RequireSliceNearlyEqual(t, after.Intensity, before.Intensity, 0)

	if _, ok := sub.BackgroundSubtracted(sampleBg); ok {
		t.Fatal("backgrounds must not be background-subtracted")
	}
}

func TestSubtractInterpolatesBackground(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)

	// Background on a coarser axis with a linear ramp; interpolation is exact.
	bgAxis := testutil.Axis(619, 0.5, 25)
	ramp := make([]float64, len(bgAxis))
	for i, x := range bgAxis {
		ramp[i] = 2 * (x - 619)
	}
	loader[sampleBg] = frames(bgAxis, ramp)
	loader[sampleFile] = frames(wl, testutil.DC(100, n))

	cleaned, err := load(t, loader).RemoveCosmicRays(false, nil)
	if err != nil {
		t.Fatal(err)
	}
	avg, _ := cleaned.AverageFrames()
	sub, err := avg.SubtractBackground()
	if err != nil {
		t.Fatal(err)
	}

	got, _ := sub.BackgroundSubtracted(sampleFile)
	want := make([]float64, n)
	for i, x := range wl {
		want[i] = 100 - 2*(x-619)
	}
	testutil.RequireSliceNearlyEqual(t, got.Intensity, want, 1e-9)
}

func TestSubtractKeepsNegativeValues(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)
	loader[sampleFile] = frames(wl, testutil.DC(5, n))

	cleaned, _ := load(t, loader).RemoveCosmicRays(false, nil)
	avg, _ := cleaned.AverageFrames()
	sub, err := avg.SubtractBackground()
	if err != nil {
		t.Fatal(err)
	}
	got, _ := sub.BackgroundSubtracted(sampleFile)
	testutil.RequireSliceNearlyEqual(t, got.Intensity, testutil.DC(-5, n), 1e-12)
}

func TestNormalizeSample(t *testing.T) {
	res := run(t, dataset(1), 793.27)

	samples := res.Spectra(catalog.RoleSample)
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	sp := samples[0]
	if sp.Label() != "water ssp 01" || sp.Role != catalog.RoleSample {
		t.Fatalf("unexpected spectrum identity %q/%v", sp.Label(), sp.Role)
	}
	testutil.RequireFinite(t, sp.Intensity)
	if len(sp.Flagged) != 0 {
		t.Fatalf("flagged = %v, want none", sp.Flagged)
	}

	// (peak + 10 - 10) / (205 - 5): the peak maximum is 40/200.
	peak := 0.0
	for _, v := range sp.Intensity {
		peak = math.Max(peak, v)
	}
	if math.Abs(peak-0.2) > 0.01 {
		t.Fatalf("normalized peak = %v, want ~0.2", peak)
	}

	for i, wl := range sp.Wavelength {
		if sp.Wavenumber[i] != pipeline.Wavenumber(793.27, wl) {
			t.Fatalf("wavenumber[%d] = %v", i, sp.Wavenumber[i])
		}
	}

	if len(res.Spectra(catalog.RoleReference)) != 1 || len(res.Spectra(catalog.RoleCalibration)) != 1 {
		t.Fatal("reference and calibration spectra must be produced")
	}
	if len(res.Spectra(catalog.RoleBackground)) != 0 {
		t.Fatal("backgrounds have no processed spectra")
	}
	ref := res.Spectra(catalog.RoleReference)[0]
	testutil.RequireSliceNearlyEqual(t, ref.Intensity, testutil.DC(200, len(ref.Intensity)), 1e-9)
}

func TestNormalizeScaleInvariance(t *testing.T) {
	base := run(t, dataset(1), 793.27).Spectra(catalog.RoleSample)[0]
	scaled := run(t, dataset(37.5), 793.27).Spectra(catalog.RoleSample)[0]

	testutil.RequireSliceNearlyEqual(t, scaled.Intensity, base.Intensity, 1e-9)
}

func TestNormalizeFlagsNonFinite(t *testing.T) {
	wl := axis()
	n := len(wl)
	loader := dataset(1)

	// Reference equals its background at two points.
	ref := testutil.DC(205, n)
	ref[3], ref[40] = 5, 5
	loader[refFile] = frames(wl, ref)

	res, err := pipeline.NewRunner().Run(buildCatalog(t), loader, pipeline.Params{W1: 793.27})
	if err != nil {
		t.Fatalf("non-finite points must not abort the run: %v", err)
	}

	sp := res.Spectra(catalog.RoleSample)[0]
	if len(sp.Flagged) != 2 || sp.Flagged[0] != 3 || sp.Flagged[1] != 40 {
		t.Fatalf("flagged = %v, want [3 40]", sp.Flagged)
	}
	for _, i := range sp.Flagged {
		if !math.IsNaN(sp.Intensity[i]) {
			t.Fatalf("intensity[%d] = %v, want NaN", i, sp.Intensity[i])
		}
	}
	if !math.IsNaN(sp.Intensity[3]) || math.IsNaN(sp.Intensity[4]) {
		t.Fatal("only the degenerate points may be NaN")
	}
	if res.FlaggedCount() != 2 {
		t.Fatalf("FlaggedCount = %d, want 2", res.FlaggedCount())
	}
}

func TestNormalizeInvalidVisibleWavelength(t *testing.T) {
	cleaned, _ := load(t, dataset(1)).RemoveCosmicRays(false, nil)
	avg, _ := cleaned.AverageFrames()
	sub, _ := avg.SubtractBackground()

	for _, w1 := range []float64{0, -793.27, math.NaN(), math.Inf(1)} {
		if _, err := sub.Normalize(w1); !errors.Is(err, pipeline.ErrInvalidVisibleWavelength) {
			t.Fatalf("w1=%v: err = %v, want ErrInvalidVisibleWavelength", w1, err)
		}
	}
}

func TestRunnerSpikeInSampleFrame(t *testing.T) {
	loader := dataset(1)
	tr := loader[sampleFile]
	spiked := append([]float64(nil), tr.Frames[1].Intensity...)
	spiked[25] *= 10
	tr.Frames[1].Intensity = spiked

	res := run(t, loader, 793.27)

	removed := res.Removed(sampleFile)
	if len(removed) != 1 || removed[0].Frame != 2 || removed[0].Intensity != spiked[25] {
		t.Fatalf("removed = %+v, want the frame 2 spike", removed)
	}
	if sp := res.Spectra(catalog.RoleSample)[0]; len(sp.Removed) != 1 {
		t.Fatalf("spectrum diagnostics = %+v", sp.Removed)
	}

	clean := run(t, dataset(1), 793.27).Spectra(catalog.RoleSample)[0]
	got := res.Spectra(catalog.RoleSample)[0]
	if d := math.Abs(got.Intensity[25] - clean.Intensity[25]); d > 0.01 {
		t.Fatalf("spike leaked into normalized spectrum: diff %v", d)
	}
}

func TestRunnerWorkersMatchSerial(t *testing.T) {
	serial := run(t, dataset(1), 793.27)

	par, err := pipeline.NewRunner(pipeline.WithWorkers(4)).Run(buildCatalog(t), dataset(1),
		pipeline.Params{W1: 793.27, Automatic: true})
	if err != nil {
		t.Fatal(err)
	}

	for _, role := range catalog.Roles {
		a, b := serial.Spectra(role), par.Spectra(role)
		if len(a) != len(b) {
			t.Fatalf("%v: %d vs %d spectra", role, len(a), len(b))
		}
		for i := range a {
			if a[i].Filename != b[i].Filename {
				t.Fatalf("%v: order differs at %d", role, i)
			}
			testutil.RequireSliceNearlyEqual(t, b[i].Intensity, a[i].Intensity, 0)
		}
	}
}

func TestStagesDoNotMutateInputs(t *testing.T) {
	loader := dataset(1)
	orig := append([]float64(nil), loader[sampleFile].Frames[0].Intensity...)

	res := run(t, loader, 793.27)

	testutil.RequireSliceNearlyEqual(t, loader[sampleFile].Frames[0].Intensity, orig, 0)
	raw, ok := res.Raw(sampleFile)
	if !ok || len(raw.Frames) != 3 {
		t.Fatal("raw trace must stay available on the result")
	}
	if _, ok := res.Mean(sampleBg); !ok {
		t.Fatal("averaged background must stay available on the result")
	}
	if res.Catalog().Len() != 6 {
		t.Fatalf("catalog has %d entries, want 6", res.Catalog().Len())
	}
}
