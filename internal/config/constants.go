package config

const SourceFileExt = ".py"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".py"}

// Version is reported by "serpent version".
const Version = "0.3.0"

// ConfigFileNames are searched, in order, in each directory by FindProject.
var ConfigFileNames = []string{"serpent.yaml", "serpent.yml"}

// DefaultMaxDepth bounds nested user function calls.
const DefaultMaxDepth = 1000

// MaxTraceFrames is how many call trace entries a rendered error shows.
const MaxTraceFrames = 10

// Built-in function names
const (
	PrintFuncName = "print"
	IntFuncName   = "int"
	StrFuncName   = "str"
	LenFuncName   = "len"
)

// Color modes for diagnostics
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
