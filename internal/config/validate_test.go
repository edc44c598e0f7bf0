package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validCfg builds the smallest config that passes validation cleanly.
func validCfg() Config {
	var cfg Config
	cfg.Scraper.RequestDelayMS = 500
	cfg.Sources.Greenhouse.Enabled = true
	cfg.Sources.Greenhouse.Companies = []Company{{Slug: "acme", Name: "Acme"}}
	cfg.Filters.RemoteOK = true
	cfg.Filters.Roles = []RoleRule{{Tag: "Data Engineering", Any: []string{"Data Engineer"}}}
	return cfg
}

func hasLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestNormalizeDerivesCompanyNames(t *testing.T) {
	cfg := validCfg()
	cfg.Sources.Greenhouse.Companies = []Company{
		{Slug: "gitlab"},
		{Slug: "machine-learning"},
		{Slug: "snake_case"},
		{Slug: "stripe", Name: "Stripe, Inc."},
	}

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK())

	got := out.Sources.Greenhouse.Companies
	require.Len(t, got, 4)
	assert.Equal(t, "Gitlab", got[0].Name)
	assert.Equal(t, "Machine Learning", got[1].Name)
	assert.Equal(t, "Snake Case", got[2].Name)
	assert.Equal(t, "Stripe, Inc.", got[3].Name) // explicit names win
}

func TestNormalizeDropsBadCompanies(t *testing.T) {
	cfg := validCfg()
	cfg.Sources.Greenhouse.Companies = []Company{
		{Slug: "acme"},
		{Slug: ""},
		{Slug: "ACME"}, // same board, different case
	}

	out, v := NormalizeAndValidate(cfg)

	require.Len(t, out.Sources.Greenhouse.Companies, 1)
	assert.Equal(t, "acme", out.Sources.Greenhouse.Companies[0].Slug)
	assert.True(t, hasLine(v.Warnings, "empty slug"))
	assert.True(t, hasLine(v.Warnings, `duplicate slug "ACME"`))
}

func TestNormalizeTrimsFilterLists(t *testing.T) {
	cfg := validCfg()
	cfg.Filters.Locations = []string{" New York ", "new york", "", "Austin"}
	cfg.Filters.Roles = []RoleRule{{Tag: "  AI/ML  ", Any: []string{" ML Engineer ", "ml engineer"}}}

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK())

	assert.Equal(t, []string{"New York", "Austin"}, out.Filters.Locations)
	assert.Equal(t, "AI/ML", out.Filters.Roles[0].Tag)
	assert.Equal(t, []string{"ML Engineer"}, out.Filters.Roles[0].Any)
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	out, _ := NormalizeAndValidate(validCfg())

	assert.Equal(t, 30, out.Scraper.RequestTimeoutSecs)
	assert.Equal(t, 3, out.Scraper.MaxRetries)
	assert.Equal(t, 4, out.Scraper.MaxConcurrent)
	assert.Equal(t, 100, out.Scraper.PerPage)
	assert.Equal(t, 72, out.Scraper.DedupeWindowHours)
	assert.Equal(t, 3600, out.Polling.IntervalSeconds)
	assert.Equal(t, 0, out.Scraper.RunTimeoutSecs) // zero means no deadline, not a default
}

func TestValidationErrors(t *testing.T) {
	t.Run("no sources enabled", func(t *testing.T) {
		cfg := validCfg()
		cfg.Sources.Greenhouse.Enabled = false
		_, v := NormalizeAndValidate(cfg)
		assert.False(t, v.OK())
		assert.True(t, hasLine(v.Errors, "no sources enabled"))
	})

	t.Run("enabled source without companies", func(t *testing.T) {
		cfg := validCfg()
		cfg.Sources.Lever.Enabled = true
		_, v := NormalizeAndValidate(cfg)
		assert.True(t, hasLine(v.Errors, "sources.lever is enabled but lists no companies"))
	})

	t.Run("negative delay", func(t *testing.T) {
		cfg := validCfg()
		cfg.Scraper.RequestDelayMS = -1
		_, v := NormalizeAndValidate(cfg)
		assert.True(t, hasLine(v.Errors, "request_delay_ms"))
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := validCfg()
		cfg.App.Port = 70000
		_, v := NormalizeAndValidate(cfg)
		assert.True(t, hasLine(v.Errors, "app.port"))
	})

	t.Run("role rule with no phrases", func(t *testing.T) {
		cfg := validCfg()
		cfg.Filters.Roles = append(cfg.Filters.Roles, RoleRule{Tag: "Empty", Any: []string{"  "}})
		_, v := NormalizeAndValidate(cfg)
		assert.True(t, hasLine(v.Errors, "filters.roles[1].any"))
	})
}

func TestValidationWarnings(t *testing.T) {
	cfg := validCfg()
	cfg.Scraper.RequestDelayMS = 0
	cfg.Filters.Roles = nil
	cfg.Filters.RemoteOK = false
	cfg.Filters.Locations = nil

	_, v := NormalizeAndValidate(cfg)

	// warnings never block
	assert.True(t, v.OK())
	assert.True(t, hasLine(v.Warnings, "request_delay_ms is 0"))
	assert.True(t, hasLine(v.Warnings, "filters.roles is empty"))
	assert.True(t, hasLine(v.Warnings, "remote_ok is false"))
}

func TestDefaultConfigIsValid(t *testing.T) {
	out, v := NormalizeAndValidate(DefaultConfig())

	require.True(t, v.OK(), "errors: %v", v.Errors)
	assert.Empty(t, v.Warnings)

	// spot-check the slug-derived names
	var gitlab Company
	for _, c := range out.Sources.Greenhouse.Companies {
		if c.Slug == "gitlab" {
			gitlab = c
		}
	}
	assert.Equal(t, "Gitlab", gitlab.Name)
}
