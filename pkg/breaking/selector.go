package breaking

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/platinummonkey/protosign/pkg/canonical"
)

// Selection is the resolved breaking configuration handed to the
// selector. At most one of UseCategories and UseRules may be non-empty.
type Selection struct {
	UseCategories          []string
	UseRules               []string
	ExceptRules            []string
	Ignore                 []string
	IgnoreUnstablePackages bool
}

// DefaultCategories is the effective selection when a configuration
// names neither categories nor rules.
var DefaultCategories = []string{CategoryFile, CategoryWireJSON}

// VerdictCategories is the full selection the verdict layer runs.
var VerdictCategories = []string{CategoryFile, CategoryPackage, CategoryWire, CategoryWireJSON}

// Plan is an effective rule set plus the change-level filters, ready to
// run over file pairs.
type Plan struct {
	rules          []Rule
	categories     map[string][]string // per rule: categories carried on changes
	ignoreGlobs    []*regexp.Regexp
	ignoreUnstable bool
}

// unstablePackage matches the conventional pre-stability package
// segments: v1alpha1, v2beta, v3, and the literal "unstable".
var unstablePackage = regexp.MustCompile(`^(v\d+(alpha|beta)?\d*|unstable)$`)

// Resolve computes the effective rule set for a selection: the union of
// rules from the selected categories or the explicitly named rules,
// minus exceptions, ordered by rule id.
func Resolve(sel Selection) (*Plan, error) {
	if err := verifyOnce(); err != nil {
		return nil, err
	}
	if len(sel.UseCategories) > 0 && len(sel.UseRules) > 0 {
		return nil, fmt.Errorf("use_categories and use_rules are mutually exclusive")
	}

	plan := &Plan{
		categories:     make(map[string][]string),
		ignoreUnstable: sel.IgnoreUnstablePackages,
	}

	if len(sel.UseRules) > 0 {
		for _, id := range sel.UseRules {
			rule, ok := ByID(id)
			if !ok {
				return nil, fmt.Errorf("unknown rule id %q", id)
			}
			if _, seen := plan.categories[id]; seen {
				continue
			}
			plan.rules = append(plan.rules, rule)
			plan.categories[id] = rule.Categories
		}
	} else {
		categories := sel.UseCategories
		if len(categories) == 0 {
			categories = DefaultCategories
		}
		selected := make(map[string]bool, len(categories))
		for _, c := range categories {
			if !isValidCategory(c) {
				return nil, fmt.Errorf("unknown category %q", c)
			}
			selected[c] = true
		}
		for _, rule := range All() {
			carried := intersectCategories(rule.Categories, selected)
			if len(carried) == 0 {
				continue
			}
			plan.rules = append(plan.rules, rule)
			plan.categories[rule.ID] = carried
		}
	}

	if len(sel.ExceptRules) > 0 {
		except := make(map[string]bool, len(sel.ExceptRules))
		for _, id := range sel.ExceptRules {
			if !IsKnown(id) {
				return nil, fmt.Errorf("unknown rule id %q in except_rules", id)
			}
			except[id] = true
		}
		kept := plan.rules[:0]
		for _, rule := range plan.rules {
			if !except[rule.ID] {
				kept = append(kept, rule)
			}
		}
		plan.rules = kept
	}

	sort.Slice(plan.rules, func(i, j int) bool { return plan.rules[i].ID < plan.rules[j].ID })

	for _, pattern := range sel.Ignore {
		re, err := compileGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("malformed ignore pattern %q: %w", pattern, err)
		}
		plan.ignoreGlobs = append(plan.ignoreGlobs, re)
	}
	return plan, nil
}

// Rules returns the effective rule set in evaluation order.
func (p *Plan) Rules() []Rule {
	return p.rules
}

// Run evaluates the plan over a file pair and returns the filtered,
// deterministically ordered changes.
func (p *Plan) Run(prev, curr *canonical.File, ctx *Context) []Change {
	if ctx == nil {
		ctx = &Context{}
	}
	var out []Change
	for _, rule := range p.rules {
		for _, c := range rule.Func(prev, curr, ctx) {
			c.RuleID = rule.ID
			c.Categories = p.categories[rule.ID]
			c.CurrentLocation.FilePath = ctx.CurrentPath
			c.CurrentLocation.Line = ctx.CurrentPositions.Line(c.CurrentLocation.EntityKind, c.CurrentLocation.EntityName)
			if c.PreviousLocation != nil {
				c.PreviousLocation.FilePath = ctx.PreviousPath
				c.PreviousLocation.Line = ctx.PreviousPositions.Line(c.PreviousLocation.EntityKind, c.PreviousLocation.EntityName)
			}
			if p.ignored(c, curr) {
				continue
			}
			out = append(out, c)
		}
	}
	sortChanges(out)
	return out
}

func (p *Plan) ignored(c Change, curr *canonical.File) bool {
	for _, glob := range p.ignoreGlobs {
		if glob.MatchString(c.CurrentLocation.FilePath) {
			return true
		}
	}
	if p.ignoreUnstable && curr != nil && curr.Package != "" {
		segments := strings.Split(curr.Package, ".")
		if unstablePackage.MatchString(segments[len(segments)-1]) {
			return true
		}
	}
	return false
}

func isValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func intersectCategories(have []string, want map[string]bool) []string {
	var out []string
	for _, c := range have {
		if want[c] {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// compileGlob translates a **-aware glob into an anchored regexp:
// ** crosses path separators, * and ? do not.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
				// Collapse "**/" so it also matches zero directories.
				if i+1 < len(pattern) && pattern[i+1] == '/' {
					b.WriteString("/?")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated character class")
			}
			b.WriteString(pattern[i : i+end+1])
			i += end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
