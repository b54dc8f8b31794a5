package main

import (
	"strings"
	"time"
)

const (
	RiskRed   = "red"
	RiskAmber = "amber"
	RiskGreen = "green"
)

const (
	StatusPending   = "pending"
	StatusReviewing = "reviewing"
	StatusResolved  = "resolved"
	StatusIgnored   = "ignored"
)

// apiTime tolerates the backend's bare ISO-8601 timestamps, which carry no
// timezone and may include fractional seconds.
type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range apiTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t apiTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

type User struct {
	ID      int    `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Role    string `json:"role,omitempty"`
}

type ActionItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type SimilarCase struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Article struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Content      string        `json:"content,omitempty"`
	URL          string        `json:"url"`
	Source       string        `json:"source"`
	Author       string        `json:"author,omitempty"`
	PublishedAt  apiTime       `json:"published_date"`
	Category     string        `json:"category"`
	Keywords     []string      `json:"keywords"`
	RiskLevel    string        `json:"risk_level"`
	RiskScore    int           `json:"risk_score"`
	Status       string        `json:"status"`
	AssigneeID   *int          `json:"assignee_id"`
	Assignee     *User         `json:"assignee"`
	AISummary    string        `json:"ai_summary"`
	AIAnalysis   string        `json:"ai_risk_analysis"`
	ActionItems  []ActionItem  `json:"action_items"`
	SimilarCases []SimilarCase `json:"similar_cases"`
	ResolvedAt   apiTime       `json:"resolved_at"`
	ResolvedBy   *User         `json:"resolved_by"`
	CreatedAt    apiTime       `json:"created_at"`
	UpdatedAt    apiTime       `json:"updated_at"`
}

// Analyzed reports whether the backend has run AI analysis on the article.
func (a Article) Analyzed() bool {
	return strings.TrimSpace(a.AISummary) != ""
}

// SummaryText is the single place that decides what to show when the AI
// summary is absent.
func (a Article) SummaryText() string {
	if a.Analyzed() {
		return a.AISummary
	}
	return "Not analyzed yet."
}

func (a Article) AssigneeName() string {
	if a.Assignee == nil || strings.TrimSpace(a.Assignee.Name) == "" {
		return "Unassigned"
	}
	return a.Assignee.Name
}

type Comment struct {
	ID        int     `json:"id"`
	Content   string  `json:"content"`
	ArticleID int     `json:"article_id"`
	AuthorID  int     `json:"author_id"`
	Author    *User   `json:"author"`
	CreatedAt apiTime `json:"created_at"`
}

func (c Comment) AuthorName() string {
	if c.Author == nil || strings.TrimSpace(c.Author.Name) == "" {
		return "Unknown"
	}
	return c.Author.Name
}

// Alert is client-generated from polled stats; it never leaves the process.
type Alert struct {
	ID        string
	Title     string
	RiskLevel string
	CreatedAt time.Time
	Read      bool
}

type ArticlesPage struct {
	Articles   []Article `json:"articles"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
}

type RiskLevelCounts struct {
	Red   int `json:"red"`
	Amber int `json:"amber"`
	Green int `json:"green"`
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	Reviewing int `json:"reviewing"`
	Resolved  int `json:"resolved"`
}

type DashboardStats struct {
	RiskLevels       RiskLevelCounts `json:"risk_levels"`
	Status           StatusCounts    `json:"status"`
	RecentCritical7d int             `json:"recent_critical_7d"`
}

type AssigneeLoad struct {
	UserID        int    `json:"user_id"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	AssignedCount int    `json:"assigned_count"`
}

type WorkflowStats struct {
	ByAssignee      []AssigneeLoad `json:"by_assignee"`
	UnassignedCount int            `json:"unassigned_count"`
}
