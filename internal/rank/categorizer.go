package rank

import (
	"strings"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

// OtherCategory buckets titles that pass the role filter without
// carrying a tagged rule.
const OtherCategory = "Other-matched"

// Categorizer maps job titles onto the configured role taxonomy. The
// same rules drive the role filter and the summary counting, so a job
// can never pass the filter yet fall outside every category.
type Categorizer struct {
	rules []rule
}

type rule struct {
	tag     string
	phrases []string // folded
}

func NewCategorizer(rules []config.RoleRule) *Categorizer {
	c := &Categorizer{}
	for _, r := range rules {
		var ps []string
		for _, p := range r.Any {
			if p = strings.TrimSpace(p); p != "" {
				ps = append(ps, util.Fold(p))
			}
		}
		if len(ps) == 0 {
			continue
		}
		c.rules = append(c.rules, rule{tag: strings.TrimSpace(r.Tag), phrases: ps})
	}
	return c
}

// Match reports whether the title contains any configured role phrase.
func (c *Categorizer) Match(title string) bool {
	t := util.Fold(title)
	for _, r := range c.rules {
		for _, p := range r.phrases {
			if strings.Contains(t, p) {
				return true
			}
		}
	}
	return false
}

// Category returns the tag of the first rule the title hits, walking
// rules in configured order. Untagged rules and non-hits both land in
// OtherCategory.
func (c *Categorizer) Category(title string) string {
	t := util.Fold(title)
	for _, r := range c.rules {
		for _, p := range r.phrases {
			if strings.Contains(t, p) {
				if r.tag != "" {
					return r.tag
				}
				return OtherCategory
			}
		}
	}
	return OtherCategory
}
