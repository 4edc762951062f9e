package exec

import (
	"regexp"
	"strings"
)

// Risk grades a generated command. It never blocks execution; the user
// still decides what to do with the command.
type Risk int

const (
	RiskNone Risk = iota
	RiskCaution
	RiskDestructive
)

func (r Risk) String() string {
	switch r {
	case RiskCaution:
		return "caution"
	case RiskDestructive:
		return "destructive"
	}
	return "none"
}

// Assessment is the first rule a command matched.
type Assessment struct {
	Risk   Risk
	Reason string
	Hint   string
}

type rule struct {
	re     *regexp.Regexp
	risk   Risk
	reason string
	hint   string
}

// RiskAnalyzer matches commands against known dangerous shapes.
type RiskAnalyzer struct {
	rules []rule
}

// NewRiskAnalyzer returns an analyzer with the built-in rules.
func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{rules: builtinRules}
}

var builtinRules = []rule{
	{
		re:     regexp.MustCompile(`\brm\s+(-[a-zA-Z]*\s+)*(/|/\*|~|\.\.)(\s|$)`),
		risk:   RiskDestructive,
		reason: "deletes a top-level or home directory",
		hint:   "name the exact path to remove",
	},
	{
		re:     regexp.MustCompile(`\bmkfs(\.\w+)?\s`),
		risk:   RiskDestructive,
		reason: "formats a filesystem",
	},
	{
		re:     regexp.MustCompile(`\bdd\s+.*\bof=/dev/`),
		risk:   RiskDestructive,
		reason: "writes directly to a device",
	},
	{
		re:     regexp.MustCompile(`:\(\)\s*\{\s*:\|:&\s*\};:`),
		risk:   RiskDestructive,
		reason: "fork bomb",
	},
	{
		re:     regexp.MustCompile(`\bchmod\s+(-R\s+)?[0-7]*777\s+/(\s|$)`),
		risk:   RiskDestructive,
		reason: "makes the root filesystem world-writable",
	},
	{
		re:     regexp.MustCompile(`\bgit\s+push\s+.*--force(\s|$)`),
		risk:   RiskCaution,
		reason: "rewrites remote history",
		hint:   "git push --force-with-lease",
	},
	{
		re:     regexp.MustCompile(`\bgit\s+(reset\s+--hard|clean\s+-[a-zA-Z]*f)`),
		risk:   RiskCaution,
		reason: "discards uncommitted changes",
		hint:   "git stash first",
	},
	{
		re:     regexp.MustCompile(`(?i)\bDROP\s+(DATABASE|TABLE)\b`),
		risk:   RiskCaution,
		reason: "drops database objects",
	},
	{
		re:     regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+\w+\s*(;|"|'|$)`),
		risk:   RiskCaution,
		reason: "DELETE without WHERE affects all rows",
	},
	{
		re:     regexp.MustCompile(`\b(curl|wget)\s+.*\|\s*(sudo\s+)?(ba|z)?sh\b`),
		risk:   RiskCaution,
		reason: "pipes a download straight into a shell",
		hint:   "download, inspect, then run",
	},
	{
		re:     regexp.MustCompile(`\bsudo\s`),
		risk:   RiskCaution,
		reason: "runs with elevated privileges",
	},
}

// Assess returns the first matching rule, or RiskNone.
func (a *RiskAnalyzer) Assess(command string) Assessment {
	cmd := strings.TrimSpace(command)
	for _, r := range a.rules {
		if r.re.MatchString(cmd) {
			return Assessment{Risk: r.risk, Reason: r.reason, Hint: r.hint}
		}
	}
	return Assessment{}
}
