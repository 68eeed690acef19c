// Package compliance implements the youth-labor rule engine: a derived
// per-employee/per-week context, a registry of declarative rules, and a
// deterministic evaluator producing structured, actionable violations.
package compliance

// AgeBand classifies an employee's age on a specific day. The band
// determines which statutory limits apply; it can change mid-week on a
// birthday, so it is always derived per date.
type AgeBand string

const (
	Band12To13 AgeBand = "12-13"
	Band14To15 AgeBand = "14-15"
	Band16To17 AgeBand = "16-17"
	BandAdult  AgeBand = "18+"
)

// AllBands lists every band in display order.
var AllBands = []AgeBand{Band12To13, Band14To15, Band16To17, BandAdult}

// MinorBands lists the bands subject to youth-labor limits.
var MinorBands = []AgeBand{Band12To13, Band14To15, Band16To17}

// BandForAge maps a whole-year age to its band. Ages below the legal
// working floor fall into the most restrictive band.
func BandForAge(age int) AgeBand {
	switch {
	case age >= 18:
		return BandAdult
	case age >= 16:
		return Band16To17
	case age >= 14:
		return Band14To15
	default:
		return Band12To13
	}
}

// Minor reports whether the band is subject to youth-labor limits.
func (b AgeBand) Minor() bool { return b != BandAdult }

// Category groups rules into the five statutory families.
type Category string

const (
	CategoryDocumentation   Category = "documentation"
	CategoryHourLimit       Category = "hour_limit"
	CategoryTimeWindow      Category = "time_window"
	CategoryTaskRestriction Category = "task_restriction"
	CategoryBreak           Category = "break"
)

// Categories lists every rule category.
var Categories = []Category{
	CategoryDocumentation,
	CategoryHourLimit,
	CategoryTimeWindow,
	CategoryTaskRestriction,
	CategoryBreak,
}

// Status is the outcome of one rule against one context.
type Status string

const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusNotApplicable Status = "not_applicable"
)

// Violation carries the evidence and remediation for a failed rule.
// Present on a RuleResult exactly when the status is fail.
type Violation struct {
	Message         string   `json:"message"`
	Remediation     string   `json:"remediation"`
	AffectedDates   []string `json:"affectedDates,omitempty"`
	AffectedEntries []string `json:"affectedEntries,omitempty"`
}

// RuleResult is the outcome of evaluating a single rule.
type RuleResult struct {
	RuleID    string     `json:"ruleId"`
	RuleName  string     `json:"ruleName"`
	Status    Status     `json:"status"`
	Violation *Violation `json:"violation,omitempty"`
}

// Rule is an immutable unit of compliance logic. Evaluate must be pure:
// no mutation of the context, no I/O, no wall clock. The engine relies
// on that to keep results reproducible for identical inputs.
type Rule struct {
	ID       string
	Name     string
	Category Category

	// AppliesTo limits the rule to contexts where at least one day
	// falls in one of these bands. Empty means the rule applies to
	// every context.
	AppliesTo []AgeBand

	Evaluate func(*Context) RuleResult
}

// appliesTo reports whether the rule is in scope for the context's
// band set. Rules out of scope yield not_applicable, never pass/fail.
func (r Rule) appliesTo(c *Context) bool {
	if len(r.AppliesTo) == 0 {
		return true
	}
	for _, band := range r.AppliesTo {
		if c.bandPresent[band] {
			return true
		}
	}
	return false
}

func (r Rule) pass() RuleResult {
	return RuleResult{RuleID: r.ID, RuleName: r.Name, Status: StatusPass}
}

func (r Rule) notApplicable() RuleResult {
	return RuleResult{RuleID: r.ID, RuleName: r.Name, Status: StatusNotApplicable}
}

func (r Rule) fail(v Violation) RuleResult {
	return RuleResult{RuleID: r.ID, RuleName: r.Name, Status: StatusFail, Violation: &v}
}
