package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shiftwise/compliance/internal/logger"
	"github.com/shiftwise/compliance/internal/metrics"
	"github.com/shiftwise/compliance/store"
)

// CheckOptions tunes a single invocation.
type CheckOptions struct {
	// StopOnFirstFailure truncates evaluation at the first failing
	// rule. The default is to evaluate everything, so one check
	// surfaces every violation instead of forcing a fix-one/resubmit
	// cycle.
	StopOnFirstFailure bool
}

// CheckResult aggregates all rule results for one timesheet. Built
// fresh per invocation, never mutated afterwards, never cached across
// calls.
type CheckResult struct {
	TimesheetID    string       `json:"timesheetId"`
	Passed         bool         `json:"passed"`
	Results        []RuleResult `json:"results"`
	Violations     []RuleResult `json:"violations"`
	RulesEvaluated int          `json:"rulesEvaluated"`
	CheckedAt      time.Time    `json:"checkedAt"`
}

// Checker runs the registered rules against a built context. One
// Checker serves concurrent invocations: each call builds its own
// context and the rule set is read-only during evaluation.
type Checker struct {
	builder *ContextBuilder
	rules   *RuleSet
	audit   store.AuditStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewChecker wires the evaluation engine. audit and m may be nil when
// the caller has no audit sink or metrics (tests, preview-only tools).
func NewChecker(builder *ContextBuilder, rules *RuleSet, audit store.AuditStore, m *metrics.Metrics) *Checker {
	return NewCheckerWithClock(builder, rules, audit, m, time.Now)
}

// NewCheckerWithClock injects the result-timestamp clock. Evaluation
// itself never reads the clock; only the aggregate's CheckedAt does.
func NewCheckerWithClock(builder *ContextBuilder, rules *RuleSet, audit store.AuditStore, m *metrics.Metrics, now func() time.Time) *Checker {
	return &Checker{builder: builder, rules: rules, audit: audit, metrics: m, now: now}
}

// RuleCount returns the number of registered rules. Diagnostic use.
func (c *Checker) RuleCount() int {
	return c.rules.Len()
}

// RunComplianceCheck evaluates the timesheet and records the result in
// the audit sink. An audit write failure is logged and counted but does
// not fail the check: the result itself is still valid and returned.
func (c *Checker) RunComplianceCheck(ctx context.Context, timesheetID string, opts CheckOptions) (*CheckResult, error) {
	result, err := c.evaluate(ctx, timesheetID, opts)
	if err != nil {
		return nil, err
	}

	c.recordAudit(ctx, result)
	return result, nil
}

// ValidateCompliance is the preview path: identical evaluation, no
// audit write.
func (c *Checker) ValidateCompliance(ctx context.Context, timesheetID string) (*CheckResult, error) {
	return c.evaluate(ctx, timesheetID, CheckOptions{})
}

func (c *Checker) evaluate(ctx context.Context, timesheetID string, opts CheckOptions) (result *CheckResult, err error) {
	cc, err := c.builder.Build(ctx, timesheetID)
	if err != nil {
		return nil, err
	}

	// A rule tripping a context invariant means the engine itself is
	// broken. Fail the whole check loudly rather than skipping the
	// rule: a silently-skipped rule is a compliance gap.
	defer func() {
		if r := recover(); r != nil {
			if inv, ok := r.(*InvariantError); ok {
				logger.Error("compliance check aborted", "timesheet", timesheetID, "error", inv.Msg)
				result, err = nil, inv
				return
			}
			panic(r)
		}
	}()

	result = &CheckResult{
		TimesheetID: timesheetID,
		Passed:      true,
		Results:     []RuleResult{},
		Violations:  []RuleResult{},
		CheckedAt:   c.now(),
	}

	for _, rule := range c.rules.Rules() {
		var rr RuleResult
		if !rule.appliesTo(cc) {
			rr = rule.notApplicable()
		} else {
			rr = rule.Evaluate(cc)
		}

		result.Results = append(result.Results, rr)
		result.RulesEvaluated++

		if rr.Status == StatusFail {
			result.Passed = false
			result.Violations = append(result.Violations, rr)
			if c.metrics != nil {
				c.metrics.ViolationsTotal.WithLabelValues(string(rule.Category)).Inc()
			}
			if opts.StopOnFirstFailure {
				break
			}
		}
	}

	if c.metrics != nil {
		outcome := "pass"
		if !result.Passed {
			outcome = "fail"
		}
		c.metrics.ChecksTotal.WithLabelValues(outcome).Inc()
	}

	return result, nil
}

func (c *Checker) recordAudit(ctx context.Context, result *CheckResult) {
	if c.audit == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		// CheckResult is plain data; a marshal failure is a bug.
		payload = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}

	rec := store.AuditRecord{
		TimesheetID:    result.TimesheetID,
		Passed:         result.Passed,
		RulesEvaluated: result.RulesEvaluated,
		ViolationCount: len(result.Violations),
		Result:         payload,
		CheckedAt:      result.CheckedAt,
	}

	if err := c.audit.RecordComplianceCheck(ctx, rec); err != nil {
		// Never conflate an audit failure with a compliance failure;
		// surface it operationally instead.
		logger.Error("audit write failed", "timesheet", result.TimesheetID, "error", err)
		if c.metrics != nil {
			c.metrics.AuditWriteFailures.Inc()
		}
	}
}
