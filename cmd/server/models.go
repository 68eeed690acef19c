package main

import (
	"time"

	"github.com/shiftwise/compliance/compliance"
)

// API request and response models.

// CheckRequest is the optional body for running a compliance check.
type CheckRequest struct {
	StopOnFirstFailure bool `json:"stopOnFirstFailure"`
}

// CheckResponse mirrors compliance.CheckResult for API consumers.
type CheckResponse struct {
	TimesheetID    string           `json:"timesheetId"`
	Passed         bool             `json:"passed"`
	Results        []RuleResultView `json:"results"`
	Violations     []ViolationView  `json:"violations"`
	RulesEvaluated int              `json:"rulesEvaluated"`
	CheckedAt      time.Time        `json:"checkedAt"`
}

// RuleResultView is one rule outcome in a check response.
type RuleResultView struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Status   string `json:"status"`
}

// ViolationView is the stable violation shape consumed by the UI layer.
type ViolationView struct {
	RuleID          string   `json:"ruleId"`
	RuleName        string   `json:"ruleName"`
	Message         string   `json:"message"`
	Remediation     string   `json:"remediation"`
	AffectedDates   []string `json:"affectedDates,omitempty"`
	AffectedEntries []string `json:"affectedEntries,omitempty"`
}

// RuleView describes a registered rule.
type RuleView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	AgeBands []string `json:"ageBands,omitempty"`
}

// CreateRuleRequest is the body for registering a custom rule.
type CreateRuleRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	AgeBands    []string `json:"ageBands"`
	Expression  string   `json:"expression"`
	Message     string   `json:"message"`
	Remediation string   `json:"remediation"`
}

// HistoryEntry is one audit record in a history response.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Passed         bool      `json:"passed"`
	RulesEvaluated int       `json:"rulesEvaluated"`
	ViolationCount int       `json:"violationCount"`
	CheckedAt      time.Time `json:"checkedAt"`
}

func toCheckResponse(result *compliance.CheckResult) CheckResponse {
	resp := CheckResponse{
		TimesheetID:    result.TimesheetID,
		Passed:         result.Passed,
		Results:        []RuleResultView{},
		Violations:     []ViolationView{},
		RulesEvaluated: result.RulesEvaluated,
		CheckedAt:      result.CheckedAt,
	}
	for _, rr := range result.Results {
		resp.Results = append(resp.Results, RuleResultView{
			RuleID:   rr.RuleID,
			RuleName: rr.RuleName,
			Status:   string(rr.Status),
		})
	}
	for _, v := range result.Violations {
		resp.Violations = append(resp.Violations, ViolationView{
			RuleID:          v.RuleID,
			RuleName:        v.RuleName,
			Message:         v.Violation.Message,
			Remediation:     v.Violation.Remediation,
			AffectedDates:   v.Violation.AffectedDates,
			AffectedEntries: v.Violation.AffectedEntries,
		})
	}
	return resp
}

func toRuleView(r compliance.Rule) RuleView {
	view := RuleView{
		ID:       r.ID,
		Name:     r.Name,
		Category: string(r.Category),
	}
	for _, b := range r.AppliesTo {
		view.AgeBands = append(view.AgeBands, string(b))
	}
	return view
}
