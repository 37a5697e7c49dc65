package domain

// Config represents the minimal CMAT configuration loaded from cmat.yaml.
type Config struct {
	Defaults DefaultsConfig
	Paths    PathsConfig
	Archive  ArchiveConfig
	Grid     GridSpec
}

type DefaultsConfig struct {
	// Confidence level for the amplitude limit, e.g. 0.95.
	Confidence float64

	// WindowDurations is the half-width of each transit window in
	// multiples of the transit duration.
	WindowDurations float64

	// MinPoints is the minimum number of in-window samples required to
	// attempt a single-transit fit.
	MinPoints int
}

type PathsConfig struct {
	TargetsDir string
	DataDir    string
	ResultsDir string
}

type ArchiveConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// DefaultConfig provides sane defaults if cmat.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Confidence:      0.95,
			WindowDurations: 1.5,
			MinPoints:       20,
		},
		Paths: PathsConfig{
			TargetsDir: "targets",
			DataDir:    "data",
			ResultsDir: "results",
		},
		Archive: ArchiveConfig{
			BaseURL:        "https://exo.mast.stsci.edu/api/v0.1",
			TimeoutSeconds: 10,
		},
		Grid: DefaultGridSpec(),
	}
}
