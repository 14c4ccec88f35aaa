package config

// ExportConfig writes the winning plan to local files. Empty paths disable
// the corresponding writer.
type ExportConfig struct {
	PlanJSONPath string `json:"plan_json_path"`
	PlanCSVPath  string `json:"plan_csv_path"`
	// GrafanaJSONPath receives the colored polyline for map dashboards. It
	// requires a GPX route source.
	GrafanaJSONPath string `json:"grafana_json_path"`
}
