package classification

// BatchRequest submits several answers from one respondent.
type BatchRequest struct {
	Answers      []string `json:"answers"`
	RespondentID string   `json:"respondentId,omitempty"`
}

// BatchItem is the outcome of one answer in a batch. Exactly one of
// Record or Error is set.
type BatchItem struct {
	Answer string  `json:"answer"`
	Record *Record `json:"record,omitempty"`
	Error  string  `json:"error,omitempty"`
	Kind   Kind    `json:"kind,omitempty"`
}

// BatchResult collects the outcomes of a batch in request order.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}
