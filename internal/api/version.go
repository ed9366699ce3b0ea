package api

// Version information, set at build time with -ldflags.
var (
	EngineVersion = "dev"
	GitCommit     = ""
	BuildTime     = ""
)
