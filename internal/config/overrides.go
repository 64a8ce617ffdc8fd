package config

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Environment variables consulted for executables.
const (
	EnvCompiler    = "DOCWEB_COMPILER"
	EnvTexCompiler = "DOCWEB_TEX"

	DefaultCompiler    = "nim"
	DefaultTexCompiler = "pdflatex"
)

// Overrides carries command-line settings applied on top of the project file.
type Overrides struct {
	// Vars are bound before parsing and win over file bindings.
	Vars map[string]string
	// Workers replaces the worker count when > 0.
	Workers int
	// OutputDir replaces the default output directory.
	OutputDir string
	// AnalyticsID adds a --doc.googleAnalytics flag to compiler args.
	AnalyticsID string
	// CompilerArgs are appended to the compiler args verbatim.
	CompilerArgs []string
	// RootDir is the base of doc/ and lib/; defaults to the working directory.
	RootDir string
	// Compiler and TexCompiler default to the environment, then the built-in names.
	Compiler    string
	TexCompiler string
	// CPUCount detects the default worker count; defaults to DetectCPUCount.
	CPUCount func() int
}

// DetectCPUCount returns the number of logical processors.
func DetectCPUCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		slog.Debug("Processor detection via gopsutil failed, using runtime count", "error", err)
		return runtime.NumCPU()
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (o Overrides) compiler() string {
	return firstNonEmpty(o.Compiler, os.Getenv(EnvCompiler), DefaultCompiler)
}

func (o Overrides) texCompiler() string {
	return firstNonEmpty(o.TexCompiler, os.Getenv(EnvTexCompiler), DefaultTexCompiler)
}

func (o Overrides) cpuCount() int {
	detect := o.CPUCount
	if detect == nil {
		detect = DetectCPUCount
	}
	if n := detect(); n > 0 {
		return n
	}
	return 1
}
