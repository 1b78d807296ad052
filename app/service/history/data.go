package history

// Record is one archived analysis outcome. Failed analyses are stored the
// same way with an "Error: ..." response text.
type Record struct {
	ID         string `json:"id"`
	Response   string `json:"response"`
	Screenshot string `json:"screenshot"`
	Timestamp  int64  `json:"timestamp"`
	URL        string `json:"url"`
}
