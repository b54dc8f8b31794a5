package main

import (
	"net/url"
	"strconv"
	"time"
)

// Filters mirrors the sidebar fields. Zero values mean "not filtering".
type Filters struct {
	Keyword         string
	Category        string
	RiskLevel       string
	Status          string
	DateFrom        string
	DateTo          string
	ExcludeResolved bool

	// ActivePreset is 1, 7 or 30 while a period shortcut is in effect,
	// 0 otherwise. It never reaches the query.
	ActivePreset int
}

const (
	fieldKeyword         = "keyword"
	fieldCategory        = "category"
	fieldRiskLevel       = "risk_level"
	fieldStatus          = "status"
	fieldDateFrom        = "date_from"
	fieldDateTo          = "date_to"
	fieldExcludeResolved = "exclude_resolved"
)

var timeNow = time.Now

func DefaultFilters() Filters {
	return Filters{}
}

// buildQuery maps filter state onto the articles endpoint's parameters.
// Empty strings and false booleans are omitted entirely, never sent as "".
func buildQuery(f Filters, page int, pageSize int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(pageSize))
	set := func(key, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}
	set(fieldKeyword, f.Keyword)
	set(fieldCategory, f.Category)
	set(fieldRiskLevel, f.RiskLevel)
	set(fieldStatus, f.Status)
	set(fieldDateFrom, f.DateFrom)
	set(fieldDateTo, f.DateTo)
	if f.ExcludeResolved {
		query.Set(fieldExcludeResolved, "true")
	}
	return query
}

// applyFilterChange replaces one field. Editing a date by hand drops the
// active period preset. Page reset is the orchestrator's job.
func applyFilterChange(f Filters, field string, value any) Filters {
	switch field {
	case fieldKeyword:
		f.Keyword, _ = value.(string)
	case fieldCategory:
		f.Category, _ = value.(string)
	case fieldRiskLevel:
		f.RiskLevel, _ = value.(string)
	case fieldStatus:
		f.Status, _ = value.(string)
	case fieldDateFrom:
		f.DateFrom, _ = value.(string)
		f.ActivePreset = 0
	case fieldDateTo:
		f.DateTo, _ = value.(string)
		f.ActivePreset = 0
	case fieldExcludeResolved:
		f.ExcludeResolved, _ = value.(bool)
	}
	return f
}

// periodShortcut applies the 1/7/30-day date presets relative to today.
func periodShortcut(f Filters, days int) Filters {
	now := timeNow()
	f.DateFrom = now.AddDate(0, 0, -days).Format("2006-01-02")
	f.DateTo = now.Format("2006-01-02")
	f.ActivePreset = days
	return f
}

func clearFilters() Filters {
	return DefaultFilters()
}
