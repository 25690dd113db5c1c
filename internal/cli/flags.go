package cli

import "pwtp/internal/config"

// Flags holds command-line flags
type Flags struct {
	SpecPath    string
	NameFilter  string
	NodeID      string
	CoverageDir string
	TimeoutMs   int
	Workers     int
	NoCoverage  bool
	OpenResults bool
	Generated   bool
	ShowTests   bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		SpecPath:    f.SpecPath,
		NameFilter:  f.NameFilter,
		NodeID:      f.NodeID,
		CoverageDir: f.CoverageDir,
		TimeoutMs:   f.TimeoutMs,
		Workers:     f.Workers,
		NoCoverage:  f.NoCoverage,
		OpenResults: f.OpenResults,
		Generated:   f.Generated,
		ShowTests:   f.ShowTests,
	}
}
