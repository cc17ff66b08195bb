package manifest

import "github.com/banking/credit-scoring-engine/logger"

// RuleResult is the outcome of one rule across all manifests.
type RuleResult struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Checked  int       `json:"checked"`
	Passed   bool      `json:"passed"`
	Findings []Finding `json:"findings,omitempty"`
}

// Report collects every rule's result. Unlike a fail-fast check it keeps
// going, so one run lists everything that needs fixing.
type Report struct {
	Manifests int          `json:"manifests"`
	Results   []RuleResult `json:"results"`
}

// Passed reports whether every rule passed.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Findings flattens all findings in rule order.
func (r Report) Findings() []Finding {
	var out []Finding
	for _, res := range r.Results {
		out = append(out, res.Findings...)
	}
	return out
}

// Validate runs every rule over manifests.
func Validate(manifests []Manifest) Report {
	return ValidateWith(manifests, Rules())
}

// ValidateWith runs the given rules over manifests.
func ValidateWith(manifests []Manifest, rules []Rule) Report {
	log := logger.GetLogger()
	report := Report{Manifests: len(manifests), Results: make([]RuleResult, 0, len(rules))}

	for _, rule := range rules {
		res := RuleResult{ID: rule.ID, Name: rule.Name}
		for _, m := range manifests {
			if !rule.Applies(m) {
				continue
			}
			res.Checked++
			for _, msg := range rule.Check(m) {
				res.Findings = append(res.Findings, Finding{Rule: rule.ID, Resource: m.Ref(), Message: msg})
			}
		}
		res.Passed = len(res.Findings) == 0
		if !res.Passed {
			log.Debugw("Manifest rule failed", "rule", rule.ID, "findings", len(res.Findings))
		}
		report.Results = append(report.Results, res)
	}
	return report
}
