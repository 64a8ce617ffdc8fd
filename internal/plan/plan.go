// Package plan turns a ProjectConfig into the external command lines of a
// build. Every function here is pure: the same configuration and
// destination always produce the same commands.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docweb/internal/config"
)

// Mode selects which family of commands BuildCommands emits.
type Mode string

const (
	// ModeDocs renders DocSources, SourceDocSetA and SourceDocSetB to HTML with index generation.
	ModeDocs Mode = "docs"
	// ModeWebDocs renders WebDocSources for the website (no index).
	ModeWebDocs Mode = "webdocs"
	// ModeJSON emits JSON documentation for SourceDocSetB.
	ModeJSON Mode = "json"
	// ModePDF emits the flattened typesetting commands of PDFJobs.
	ModePDF Mode = "pdf"
)

// IndexFile is the name of the generated documentation index.
const IndexFile = "theindex.html"

// BuildCommands returns the per-file commands for mode, in configuration order.
func BuildCommands(cfg *config.ProjectConfig, destDir string, mode Mode) []string {
	var cmds []string
	switch mode {
	case ModeDocs:
		for _, f := range cfg.DocSources {
			cmds = append(cmds, docCommand(cfg, "rst2html", destDir, f))
		}
		for _, f := range cfg.SourceDocSetA {
			cmds = append(cmds, docCommand(cfg, "doc", destDir, f))
		}
		for _, f := range cfg.SourceDocSetB {
			cmds = append(cmds, docCommand(cfg, "doc2", destDir, f))
		}
	case ModeWebDocs:
		for _, f := range cfg.WebDocSources {
			cmds = append(cmds, join(cfg.Compiler, "doc2", cfg.CompilerArgs,
				seeSrcFlag(cfg),
				"-o:"+quote(outputPath(destDir, f, ".html")),
				quote(f)))
		}
	case ModeJSON:
		for _, f := range cfg.SourceDocSetB {
			cmds = append(cmds, join(cfg.Compiler, "jsondoc2", cfg.CompilerArgs,
				seeSrcFlag(cfg),
				"-o:"+quote(outputPath(destDir, f, ".json")),
				"--index:on",
				quote(f)))
		}
	case ModePDF:
		for _, job := range PDFJobs(cfg, destDir) {
			cmds = append(cmds, job.Commands...)
		}
	}
	return cmds
}

// IndexCommand builds the index over every page in destDir. It must run
// only after the ModeDocs batch for destDir has completed successfully.
func IndexCommand(cfg *config.ProjectConfig, destDir string) string {
	return join(cfg.Compiler, "buildIndex",
		"-o:"+quote(filepath.Join(destDir, IndexFile)),
		quote(destDir))
}

// PDFJob is the serial command sequence producing one PDF.
type PDFJob struct {
	Source string
	// Commands: convert to typesetting source, then compile it twice so
	// cross-references resolve.
	Commands []string
	// Output is the produced PDF.
	Output string
	// Intermediates are removed after a successful run; some may not exist.
	Intermediates []string
}

// PDFJobs returns one job per PDF source.
func PDFJobs(cfg *config.ProjectConfig, destDir string) []PDFJob {
	jobs := make([]PDFJob, 0, len(cfg.PDFSources))
	for _, src := range cfg.PDFSources {
		tex := replaceExt(src, ".tex")
		stem := stem(src)
		compile := join(cfg.TexCompiler, "-interaction=nonstopmode",
			"-output-directory", quote(destDir), quote(tex))

		intermediates := []string{tex}
		for _, ext := range []string{".aux", ".toc", ".log", ".out"} {
			intermediates = append(intermediates, filepath.Join(destDir, stem+ext))
		}
		jobs = append(jobs, PDFJob{
			Source: src,
			Commands: []string{
				join(cfg.Compiler, "rst2tex", cfg.CompilerArgs, quote(src)),
				compile,
				compile,
			},
			Output:        filepath.Join(destDir, stem+".pdf"),
			Intermediates: intermediates,
		})
	}
	return jobs
}

func docCommand(cfg *config.ProjectConfig, sub, destDir, file string) string {
	var gitURL string
	if cfg.Repository != "" {
		gitURL = "--git.url:" + quote(cfg.Repository)
	}
	return join(cfg.Compiler, sub, cfg.CompilerArgs, gitURL,
		"-o:"+quote(outputPath(destDir, file, ".html")),
		"--index:on",
		quote(file))
}

func seeSrcFlag(cfg *config.ProjectConfig) string {
	if cfg.Repository == "" {
		return ""
	}
	return "--docSeeSrcUrl:" + quote(strings.TrimSuffix(cfg.Repository, "/")+"/"+cfg.Commit)
}

// outputPath places file's stem with ext in destDir.
func outputPath(destDir, file, ext string) string {
	return filepath.Join(destDir, stem(file)+ext)
}

func stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func replaceExt(file, ext string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

// join concatenates non-empty command parts with single spaces.
func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// quote single-quotes s for a POSIX shell when it contains anything beyond
// a conservative set of safe characters.
func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool { return !isSafe(r) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=@%+,", r)
}

// Describe renders a plan for display, one command per line.
func Describe(mode Mode, cmds []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%d commands)\n", mode, len(cmds))
	for _, c := range cmds {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	return b.String()
}
