package compliance

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/shiftwise/compliance/store"
)

// Custom rules let supervisors add declarative constraints without a
// code change. An expression is compiled once against the weekly fact
// schema and adapted into the same Rule shape as the built-in catalog;
// it must evaluate to a boolean where true means the timesheet
// complies.
//
// Exposed facts:
//
//	weekTotalHours  double            total worked hours in the week
//	daysWorked      int               days with any worked time
//	minAge, maxAge  int               employee age range over the week
//	schoolWeek      bool              any day of the week is a school day
//	dailyHours      map[string]double ISO date -> worked hours
//	bands           list[string]      distinct age bands present

var customEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("weekTotalHours", cel.DoubleType),
		cel.Variable("daysWorked", cel.IntType),
		cel.Variable("minAge", cel.IntType),
		cel.Variable("maxAge", cel.IntType),
		cel.Variable("schoolWeek", cel.BoolType),
		cel.Variable("dailyHours", cel.MapType(cel.StringType, cel.DoubleType)),
		cel.Variable("bands", cel.ListType(cel.StringType)),
	)
})

// celCostLimit bounds expression evaluation so a pathological custom
// rule cannot stall the check loop.
const celCostLimit = 1_000_000

// CompileCustomRule validates and compiles a stored custom rule into an
// evaluable Rule. Compilation errors are returned verbatim so the admin
// surface can show them to the rule author.
func CompileCustomRule(cr *store.CustomRule) (Rule, error) {
	category, err := parseCategory(cr.Category)
	if err != nil {
		return Rule{}, err
	}
	bands, err := parseBands(cr.AgeBands)
	if err != nil {
		return Rule{}, err
	}

	env, err := customEnv()
	if err != nil {
		return Rule{}, fmt.Errorf("cel environment: %w", err)
	}

	ast, issues := env.Compile(cr.Expression)
	if issues != nil && issues.Err() != nil {
		return Rule{}, fmt.Errorf("compile error: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return Rule{}, fmt.Errorf("expression must produce a boolean, got %s", ast.OutputType())
	}

	prog, err := env.Program(ast, cel.CostLimit(celCostLimit))
	if err != nil {
		return Rule{}, fmt.Errorf("program creation error: %w", err)
	}

	r := Rule{
		ID:        cr.ID,
		Name:      cr.Name,
		Category:  category,
		AppliesTo: bands,
	}
	message := cr.Message
	if message == "" {
		message = fmt.Sprintf("Timesheet violates custom rule %q", cr.Name)
	}
	remediation := cr.Remediation

	r.Evaluate = func(c *Context) RuleResult {
		out, _, err := prog.Eval(customFacts(c))
		if err != nil {
			// An evaluation error means the rule cannot certify the
			// week. Surface it as a violation the author can act on
			// rather than silently passing.
			return r.fail(Violation{
				Message:     fmt.Sprintf("Custom rule %q failed to evaluate: %v", cr.Name, err),
				Remediation: "Fix or disable this custom rule; its expression does not evaluate against weekly facts.",
			})
		}
		if ok, _ := out.Value().(bool); ok {
			return r.pass()
		}
		return r.fail(Violation{
			Message:     message,
			Remediation: remediation,
		})
	}
	return r, nil
}

func customFacts(c *Context) map[string]any {
	daily := make(map[string]float64, len(c.Dates))
	minAge, maxAge := 0, 0
	for i, date := range c.Dates {
		daily[date] = c.HoursOn(date)
		age := c.DailyAges[date]
		if i == 0 || age < minAge {
			minAge = age
		}
		if age > maxAge {
			maxAge = age
		}
	}

	var bands []string
	for _, b := range AllBands {
		if c.bandPresent[b] {
			bands = append(bands, string(b))
		}
	}

	return map[string]any{
		"weekTotalHours": c.WeekHours(),
		"daysWorked":     c.DaysWorked,
		"minAge":         minAge,
		"maxAge":         maxAge,
		"schoolWeek":     c.IsSchoolWeek(),
		"dailyHours":     daily,
		"bands":          bands,
	}
}

func parseCategory(s string) (Category, error) {
	for _, cat := range Categories {
		if string(cat) == s {
			return cat, nil
		}
	}
	return "", fmt.Errorf("unknown rule category %q", s)
}

func parseBands(bands []string) ([]AgeBand, error) {
	var out []AgeBand
	for _, s := range bands {
		found := false
		for _, b := range AllBands {
			if string(b) == s {
				out = append(out, b)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown age band %q", s)
		}
	}
	return out, nil
}
