package domain

type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunEmpty   RunStatus = "empty"
	RunError   RunStatus = "error"
)

// IngestStats counts what happened to fetched items during one ingestion.
type IngestStats struct {
	Accounts       int `json:"accounts"`
	FailedAccounts int `json:"failed_accounts"`
	Fetched        int `json:"fetched"`
	Rejected       int `json:"rejected"`
	Inserted       int `json:"inserted"`
	Duplicates     int `json:"duplicates"`
	StoreErrors    int `json:"store_errors"`
}

// Add accumulates o into s.
func (s *IngestStats) Add(o IngestStats) {
	s.Accounts += o.Accounts
	s.FailedAccounts += o.FailedAccounts
	s.Fetched += o.Fetched
	s.Rejected += o.Rejected
	s.Inserted += o.Inserted
	s.Duplicates += o.Duplicates
	s.StoreErrors += o.StoreErrors
}

// RunResult is the outcome of one pipeline invocation.
type RunResult struct {
	Status   RunStatus   `json:"status"`
	Message  string      `json:"message"`
	Date     string      `json:"date"`
	Ingest   IngestStats `json:"ingest"`
	Selected int         `json:"selected"`
	ReportID int64       `json:"report_id,omitempty"`
}
