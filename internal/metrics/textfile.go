package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes all metrics of reg in the text exposition format to
// path, for pickup by a node_exporter textfile collector. The file is
// written to a temporary name and renamed into place.
func WriteTextfile(path string, reg *prom.Registry) error {
	return prom.WriteToTextfile(path, reg)
}
