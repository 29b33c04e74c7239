// Package quality implements the adaptive quality controller (§4.F): a
// frame-time windowed hysteresis loop that moves between a fixed table
// of quality tiers to keep per-frame processing within budget.
package quality

// Tier is an immutable operating point across model resolution, rate,
// and post-processing quality (§3 "Quality Tier"). The table is ordered
// ultra (index 0, most expensive) to minimal (index len-1, cheapest).
type Tier struct {
	Name string

	MaskWidth  int
	MaskHeight int
	ModelRateHz float64

	AppearRate    float32
	DisappearRate float32

	FeatherRadius float32
	RangeSigma    float32
	BlurRadius    int

	LightWrap  bool
	Morphology bool
}

// DefaultTiers is the fixed 5-tier table (ultra -> minimal) named in §3.
// Higher tiers trade mask resolution, model rate, and post-processing
// cost for headroom under the adaptive controller.
func DefaultTiers() []Tier {
	return []Tier{
		{
			Name: "ultra", MaskWidth: 256, MaskHeight: 256, ModelRateHz: 30,
			AppearRate: 0.9, DisappearRate: 0.8,
			FeatherRadius: 3, RangeSigma: 0.12, BlurRadius: 24,
			LightWrap: true, Morphology: true,
		},
		{
			Name: "high", MaskWidth: 256, MaskHeight: 256, ModelRateHz: 24,
			AppearRate: 0.88, DisappearRate: 0.75,
			FeatherRadius: 2.5, RangeSigma: 0.14, BlurRadius: 18,
			LightWrap: true, Morphology: true,
		},
		{
			Name: "medium", MaskWidth: 160, MaskHeight: 160, ModelRateHz: 18,
			AppearRate: 0.85, DisappearRate: 0.7,
			FeatherRadius: 2, RangeSigma: 0.16, BlurRadius: 12,
			LightWrap: false, Morphology: true,
		},
		{
			Name: "low", MaskWidth: 160, MaskHeight: 160, ModelRateHz: 12,
			AppearRate: 0.82, DisappearRate: 0.65,
			FeatherRadius: 1.5, RangeSigma: 0.18, BlurRadius: 8,
			LightWrap: false, Morphology: false,
		},
		{
			Name: "minimal", MaskWidth: 128, MaskHeight: 128, ModelRateHz: 8,
			AppearRate: 0.8, DisappearRate: 0.6,
			FeatherRadius: 1, RangeSigma: 0.2, BlurRadius: 4,
			LightWrap: false, Morphology: false,
		},
	}
}

// QualityLabelTier maps the §6 quality option to a seed tier index.
func QualityLabelTier(label string) int {
	switch label {
	case "ultra":
		return 0
	case "high":
		return 1
	case "medium":
		return 2
	case "low":
		return 3
	default:
		return 2
	}
}
