package httpapi

type ScanStatus struct {
	LastRunAt     string `json:"last_run_at"`
	LastOkAt      string `json:"last_ok_at"`
	LastError     string `json:"last_error"`
	LastURL       string `json:"last_url"`
	LastProcessed int    `json:"last_processed"`
	LastAdded     int    `json:"last_added"`
	Running       int    `json:"running"`
}
