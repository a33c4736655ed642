package models

import "encoding/json"

// Record is a provider-native article or claim, kept byte-for-byte as the
// provider returned it.
type Record = json.RawMessage

// Status tells why a provider produced the records it did.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusEmpty   Status = "empty"
	StatusFound   Status = "found"
	StatusFailed  Status = "failed"
)

// Outcome is the result of running one provider's candidate chain.
type Outcome struct {
	Provider string
	Status   Status
	Attempts int
	Query    string
	Records  []Record
	Err      error
}

// ErrorText returns the joined attempt errors, or "" when there were none.
func (o Outcome) ErrorText() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Found reports whether the provider returned at least one record.
func (o Outcome) Found() bool {
	return o.Status == StatusFound && len(o.Records) > 0
}
