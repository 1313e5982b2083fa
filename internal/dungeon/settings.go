package dungeon

const (
	DefaultMaxBuildAttempts           = 10
	DefaultMaxRebuildAttemptsPerGraph = 1000
)

// Settings bounds the two retry levels of the builder.
type Settings struct {
	// MaxBuildAttempts is how many times a graph is (re)selected.
	MaxBuildAttempts int
	// MaxRebuildAttemptsPerGraph is how many layouts are tried for one
	// selected graph before another graph is picked.
	MaxRebuildAttemptsPerGraph int
}

func DefaultSettings() Settings {
	return Settings{
		MaxBuildAttempts:           DefaultMaxBuildAttempts,
		MaxRebuildAttemptsPerGraph: DefaultMaxRebuildAttemptsPerGraph,
	}
}

// withDefaults replaces non-positive limits with the defaults.
func (s Settings) withDefaults() Settings {
	if s.MaxBuildAttempts <= 0 {
		s.MaxBuildAttempts = DefaultMaxBuildAttempts
	}
	if s.MaxRebuildAttemptsPerGraph <= 0 {
		s.MaxRebuildAttemptsPerGraph = DefaultMaxRebuildAttemptsPerGraph
	}
	return s
}
