package meshconv

// Buffer ceilings of the renderer.
const (
	DefaultMaxVertsPerBuffer   = 32000
	DefaultMaxIndicesPerBuffer = 32000
)

// MaxUVChannels is the largest UV count a span format can describe.
const MaxUVChannels = 8

// DicingPolicy is the optional user policy for splitting large spans.
// Zero MaxFaces or MaxSize disables that trigger.
type DicingPolicy struct {
	MaxFaces int     `yaml:"max_faces"`
	MaxSize  float32 `yaml:"max_size"`
	MinFaces int     `yaml:"min_faces"`
}

// Options configure a conversion.
type Options struct {
	DoPreshading           bool `yaml:"do_preshading"`
	WaterDecalEnvMap       bool `yaml:"water_decal_env_map"`
	Dup2SidedMaterialFaces bool `yaml:"dup_two_sided_faces"`
	RunTimeLighting        bool `yaml:"run_time_lighting"`

	MaxVertsPerBuffer   int `yaml:"max_verts_per_buffer"`
	MaxIndicesPerBuffer int `yaml:"max_indices_per_buffer"`

	Dicing *DicingPolicy `yaml:"dicing"`
}

// DefaultOptions returns options with the renderer's default ceilings.
func DefaultOptions() Options {
	return Options{
		DoPreshading:        true,
		MaxVertsPerBuffer:   DefaultMaxVertsPerBuffer,
		MaxIndicesPerBuffer: DefaultMaxIndicesPerBuffer,
	}
}

// withDefaults fills unset ceilings.
func (o Options) withDefaults() Options {
	if o.MaxVertsPerBuffer <= 0 {
		o.MaxVertsPerBuffer = DefaultMaxVertsPerBuffer
	}
	if o.MaxIndicesPerBuffer <= 0 {
		o.MaxIndicesPerBuffer = DefaultMaxIndicesPerBuffer
	}
	return o
}
