package embedder

// IndexVariant selects which spatial index backs an Engine.
type IndexVariant string

const (
	IndexBruteForce IndexVariant = "bruteforce"
	IndexTree       IndexVariant = "tree"
	IndexDynamic    IndexVariant = "dynamic"
)

// Config is the full set of tunables from §6's configuration table,
// plus the D/H/index-variant choices every Engine needs at construction.
type Config struct {
	D int // embedding dimension, compile-time constant in the source
	H int // weight-formula dimension hint

	LearningRate      float32 // α, Adam step size
	CoolingFactor     float32 // cool ∈ (0,1], multiplicative decay per iteration
	MaxIterations     int
	MinPositionChange float32 // convergence threshold on ΣΔ²/Σp²
	AttractionScale   float32
	RepulsionScale    float32

	Seed int64

	Index           IndexVariant
	OverQueryRadius float32 // only used when Index == IndexDynamic
}

// DefaultConfig returns the §6 defaults. Callers must still set D and H.
func DefaultConfig() Config {
	return Config{
		D:                 2,
		H:                 2,
		LearningRate:      10.0,
		CoolingFactor:     0.99,
		MaxIterations:     1000,
		MinPositionChange: 1e-8,
		AttractionScale:   1.0,
		RepulsionScale:    1.0,
		Seed:              42,
		Index:             IndexTree,
		OverQueryRadius:   1.2,
	}
}
