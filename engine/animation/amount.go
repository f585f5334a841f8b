package animation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// AmountCalc remaps normalized playback progress in [0, 1] before it indexes the curve window.
// Implementations must be monotonic so playback never runs backwards within a cycle.
type AmountCalc func(progress float32) float32

// Identity leaves progress unchanged.
func Identity(progress float32) float32 {
	return progress
}

// Eased adapts a float64 easing function into an AmountCalc.
func Eased(fn func(float64) float64) AmountCalc {
	return func(progress float32) float32 {
		return float32(fn(float64(progress)))
	}
}

// only monotonic curves; back, elastic and bounce overshoot and are left out
var easings = map[string]func(float64) float64{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-quart":     ease.InQuart,
	"out-quart":    ease.OutQuart,
	"in-out-quart": ease.InOutQuart,
	"in-quint":     ease.InQuint,
	"out-quint":    ease.OutQuint,
	"in-out-quint": ease.InOutQuint,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"in-expo":      ease.InExpo,
	"out-expo":     ease.OutExpo,
	"in-out-expo":  ease.InOutExpo,
	"in-circ":      ease.InCirc,
	"out-circ":     ease.OutCirc,
	"in-out-circ":  ease.InOutCirc,
}

// ParseAmountCalc resolves an easing preset by name. An empty name or "identity" yields Identity.
//
// Parameters:
//   - name: the preset name, e.g. "in-out-quad"
//
// Returns:
//   - AmountCalc: the resolved function
//   - error: error if the preset is unknown
func ParseAmountCalc(name string) (AmountCalc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "identity" {
		return Identity, nil
	}
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return Eased(fn), nil
}

// AmountCalcNames returns the sorted names accepted by ParseAmountCalc, excluding "identity".
func AmountCalcNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
