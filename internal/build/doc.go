// Package build provides the canonical build pipeline for docweb.
//
// A build runs one or more stages strictly in sequence: the website, the
// documentation pages with their index, the PDF manuals and the JSON
// documentation. Each stage completes before the next starts, and the first
// failing stage ends the build. All execution paths (the one-shot commands
// and the watch loop) route through BuildService.
package build
