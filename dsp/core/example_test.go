package core_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sfg/dsp/core"
)

func ExampleSlicesNearlyEqual() {
	a := []float64{620.0, 620.2, 620.4}
	b := []float64{620.0, 620.2 + 1e-12, 620.4}

	fmt.Println(core.SlicesNearlyEqual(a, b, 1e-9))
	fmt.Println(core.SlicesNearlyEqual(a, b[:2], 1e-9))

	// Output:
	// true
	// false
}

func ExampleIsFinite() {
	fmt.Println(core.IsFinite(0.25), core.IsFinite(math.NaN()), core.IsFinite(math.Inf(1)))

	// Output:
	// true false false
}
