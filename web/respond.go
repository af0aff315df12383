package web

import (
	"encoding/json"
	"net/http"

	"github.com/quotagate/quotagate/domain/entitlement"
)

// errorBody is the error envelope shared with the platform frontend.
type errorBody struct {
	Error   string        `json:"error"`
	Message string        `json:"message,omitempty"`
	Details *denialDetail `json:"details,omitempty"`
}

// denialDetail carries the actionable part of a limit denial.
type denialDetail struct {
	Current       float64 `json:"current"`
	Limit         float64 `json:"limit"`
	UpgradePrompt bool    `json:"upgrade_prompt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, errorBody{Error: title, Message: message})
}

// writeDenial renders a gate rejection. Counter denials are 429 with the
// current/limit detail; feature-flag and unknown-account denials carry
// no counters.
func writeDenial(w http.ResponseWriter, status int, title string, d entitlement.Decision) {
	body := errorBody{Error: title, Message: d.Reason}
	if d.UpgradePrompt || d.Limit != 0 || d.Current != 0 {
		body.Details = &denialDetail{
			Current:       d.Current,
			Limit:         d.Limit,
			UpgradePrompt: d.UpgradePrompt,
		}
	}
	writeJSON(w, status, body)
}
