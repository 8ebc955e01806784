// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Suggestion types.
const (
	SuggestionCourse     = "COURSE"
	SuggestionUserReform = "USER_REFORM"
	SuggestionInterface  = "INTERFACE"
)

// Suggestion statuses.
const (
	SuggestionPending  = "PENDING"
	SuggestionApproved = "APPROVED"
	SuggestionRejected = "REJECTED"
)

// Suggestion is a free-text proposal filed by a developer and reviewed by
// an admin. UserID is not referentially enforced against the user
// collection; a dangling author is possible and tolerated.
type Suggestion struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// IsValidSuggestionType reports whether t is a known suggestion type.
func IsValidSuggestionType(t string) bool {
	switch t {
	case SuggestionCourse, SuggestionUserReform, SuggestionInterface:
		return true
	}
	return false
}
