package models

import (
	"encoding/json"
	"net/http"
)

// RunResult is returned to the trigger (Lambda, CLI, HTTP) after each run
type RunResult struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// RunSummary is the JSON document carried in RunResult.Body
type RunSummary struct {
	Message   string `json:"message"`
	Date      string `json:"date,omitempty"`
	EmailSent *bool  `json:"email_sent,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewSuccessResult builds a 200 result
func NewSuccessResult(date, messageID string) RunResult {
	sent := true
	return newRunResult(http.StatusOK, RunSummary{
		Message:   "Daily briefing generated and sent successfully",
		Date:      date,
		EmailSent: &sent,
		MessageID: messageID,
	})
}

// NewFailureResult builds a 500 result
func NewFailureResult(date string, err error) RunResult {
	return newRunResult(http.StatusInternalServerError, RunSummary{
		Message: "Failed to generate daily briefing",
		Date:    date,
		Error:   err.Error(),
	})
}

func newRunResult(status int, summary RunSummary) RunResult {
	body, err := json.Marshal(summary)
	if err != nil {
		// RunSummary only holds strings and a bool
		body = []byte(`{"message":"` + summary.Message + `"}`)
	}
	return RunResult{StatusCode: status, Body: string(body)}
}

// Summary decodes the JSON body
func (r RunResult) Summary() (RunSummary, error) {
	var s RunSummary
	err := json.Unmarshal([]byte(r.Body), &s)
	return s, err
}

// OK reports whether the run succeeded
func (r RunResult) OK() bool {
	return r.StatusCode == http.StatusOK
}
