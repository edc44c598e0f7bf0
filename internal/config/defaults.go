package config

// DefaultConfig is the starting point written on first run. Company
// names are left blank here; normalization derives display names from
// the slugs.
func DefaultConfig() Config {
	var cfg Config

	cfg.App.Port = 38471
	cfg.App.DataDir = "."

	cfg.Scraper.RequestDelayMS = 1000
	cfg.Scraper.RequestTimeoutSecs = 30
	cfg.Scraper.MaxRetries = 3
	cfg.Scraper.MaxConcurrent = 4
	cfg.Scraper.PerPage = 100
	cfg.Scraper.RunTimeoutSecs = 0 // no overall deadline
	cfg.Scraper.DedupeWindowHours = 72

	cfg.Polling.IntervalSeconds = 3600

	cfg.Sources.Greenhouse.Enabled = true
	cfg.Sources.Greenhouse.Companies = slugs(
		"airbnb", "stripe", "notion", "figma", "databricks", "snowflake",
		"coinbase", "instacart", "robinhood", "doordash", "lyft",
		"square", "twitch", "gitlab", "hashicorp", "datadog",
	)

	cfg.Sources.Lever.Enabled = true
	cfg.Sources.Lever.Companies = slugs(
		"netflix", "uber", "shopify", "zoom", "atlassian", "spotify",
		"pinterest", "reddit", "discord", "box", "lever", "mixpanel",
		"pagerduty", "segment", "twilio", "zendesk",
	)

	cfg.Sources.RemoteOK.Enabled = true
	cfg.Sources.RemoteOK.Companies = []Company{
		{Slug: "machine-learning", Name: "Machine Learning feed"},
		{Slug: "data-science", Name: "Data Science feed"},
	}

	cfg.Filters.RemoteOK = true
	cfg.Filters.Locations = []string{
		"United States", "USA", "US",
		"New York", "San Francisco", "Los Angeles", "Chicago", "Boston",
		"Seattle", "Austin", "Denver", "Atlanta", "Portland", "Miami",
		"Dallas", "Phoenix", "San Diego",
	}
	cfg.Filters.Roles = []RoleRule{
		{Tag: "AI/ML", Any: []string{
			"AI Engineer", "Artificial Intelligence Engineer",
			"Machine Learning Engineer", "ML Engineer",
			"AI/ML Engineer", "Applied AI Engineer",
		}},
		{Tag: "Data Engineering", Any: []string{"Data Engineer"}},
		{Tag: "Data Science", Any: []string{"Data Scientist"}},
	}

	return cfg
}

func slugs(ss ...string) []Company {
	out := make([]Company, 0, len(ss))
	for _, s := range ss {
		out = append(out, Company{Slug: s})
	}
	return out
}
