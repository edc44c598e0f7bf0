package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var titleCaser = cases.Title(language.English)

// NormalizeAndValidate returns a normalized copy: defaults applied,
// lists trimmed and de-duplicated, company display names derived from
// slugs where missing.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	normCompanies := func(source string, cos []Company) []Company {
		seen := map[string]bool{}
		var ys []Company
		for _, c := range cos {
			c.Slug = strings.TrimSpace(c.Slug)
			c.Name = strings.TrimSpace(c.Name)
			if c.Slug == "" {
				res.addWarn("sources.%s: dropping company with empty slug", source)
				continue
			}
			if strings.ContainsAny(c.Slug, " \t") {
				res.addWarn("sources.%s: slug %q contains whitespace", source, c.Slug)
			}
			key := strings.ToLower(c.Slug)
			if seen[key] {
				res.addWarn("sources.%s: duplicate slug %q", source, c.Slug)
				continue
			}
			seen[key] = true
			if c.Name == "" {
				c.Name = titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(c.Slug))
			}
			ys = append(ys, c)
		}
		return ys
	}

	// ---- Normalization ----

	out.Filters.Locations = trimList(out.Filters.Locations)
	out.Sources.Greenhouse.Companies = normCompanies("greenhouse", out.Sources.Greenhouse.Companies)
	out.Sources.Lever.Companies = normCompanies("lever", out.Sources.Lever.Companies)
	out.Sources.RemoteOK.Companies = normCompanies("remoteok", out.Sources.RemoteOK.Companies)

	for i := range out.Filters.Roles {
		out.Filters.Roles[i].Tag = strings.TrimSpace(out.Filters.Roles[i].Tag)
		out.Filters.Roles[i].Any = trimList(out.Filters.Roles[i].Any)
	}

	// ---- Defaults ----

	if out.Scraper.RequestTimeoutSecs == 0 {
		out.Scraper.RequestTimeoutSecs = 30
	}
	if out.Scraper.MaxRetries == 0 {
		out.Scraper.MaxRetries = 3
	}
	if out.Scraper.MaxConcurrent <= 0 {
		out.Scraper.MaxConcurrent = 4
	}
	if out.Scraper.PerPage <= 0 {
		out.Scraper.PerPage = 100
	}
	if out.Scraper.DedupeWindowHours == 0 {
		out.Scraper.DedupeWindowHours = 72
	}
	if out.Polling.IntervalSeconds <= 0 {
		out.Polling.IntervalSeconds = 3600
	}

	// ---- Validation rules ----

	if !out.Sources.Greenhouse.Enabled && !out.Sources.Lever.Enabled && !out.Sources.RemoteOK.Enabled {
		res.addErr("no sources enabled: enable greenhouse, lever, or remoteok")
	}
	checkSource := func(name string, sc SourceConfig) {
		if sc.Enabled && len(sc.Companies) == 0 {
			res.addErr("sources.%s is enabled but lists no companies", name)
		}
	}
	checkSource("greenhouse", out.Sources.Greenhouse)
	checkSource("lever", out.Sources.Lever)
	checkSource("remoteok", out.Sources.RemoteOK)

	if out.Scraper.RequestDelayMS < 0 {
		res.addErr("scraper.request_delay_ms must be >= 0")
	} else if out.Scraper.RequestDelayMS == 0 {
		res.addWarn("scraper.request_delay_ms is 0; upstream APIs may throttle back-to-back page requests.")
	}
	if out.Scraper.RequestTimeoutSecs < 0 {
		res.addErr("scraper.request_timeout_seconds must be >= 0")
	}
	if out.Scraper.MaxRetries < 0 {
		res.addErr("scraper.max_retries must be >= 0")
	}
	if out.Scraper.RunTimeoutSecs < 0 {
		res.addErr("scraper.run_timeout_seconds must be >= 0")
	}
	if out.Scraper.DedupeWindowHours < 0 {
		res.addErr("scraper.dedupe_window_hours must be >= 0")
	}
	if out.Scraper.PerPage > 500 {
		res.addWarn("scraper.per_page %d exceeds what boards typically serve; pages may come back short.", out.Scraper.PerPage)
	}

	if out.App.Port != 0 && (out.App.Port < 1 || out.App.Port > 65535) {
		res.addErr("app.port must be 1..65535")
	}

	for i, r := range out.Filters.Roles {
		if len(r.Any) == 0 {
			res.addErr("filters.roles[%d].any must have at least 1 phrase", i)
		}
	}
	if len(out.Filters.Roles) == 0 {
		res.addWarn("filters.roles is empty; the role filter will reject every posting.")
	}
	if !out.Filters.RemoteOK && len(out.Filters.Locations) == 0 {
		res.addWarn("remote_ok is false and locations is empty; you may filter out almost everything.")
	}
	if len(out.Filters.Locations) > 50 {
		res.addWarn("locations has %d entries; consider tightening it for faster filtering.", len(out.Filters.Locations))
	}

	return out, res
}
