package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// APIClient is a pass-through facade over the dashboard backend. The bearer
// token is instance state, not a package-level default, so authenticated
// behavior stays testable in isolation. Sign-in and requests can run on
// different goroutines, so the token is guarded.
type APIClient struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	token string
}

// APIError carries a non-2xx response. The backend reports failures as
// {"error": ...} and occasionally adds a human "message".
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: http %d", e.StatusCode)
	}
	return fmt.Sprintf("api: http %d: %s", e.StatusCode, e.Message)
}

var apiJSONMarshal = json.Marshal

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *APIClient) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *APIClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *APIClient) do(method string, path string, query url.Values, payload any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var body *bytes.Reader
	if payload != nil {
		blob, err := apiJSONMarshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(blob)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("content-type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr == nil {
			apiErr.Message = parsed.Error
			if parsed.Message != "" {
				apiErr.Message = parsed.Message
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mutationResponse is the {message, article} envelope every article PATCH
// and the ai-analyze POST come back in.
type mutationResponse struct {
	Message string  `json:"message"`
	Article Article `json:"article"`
}

// --- Articles ---

func (c *APIClient) Articles(query url.Values) (ArticlesPage, error) {
	var page ArticlesPage
	err := c.do(http.MethodGet, "/articles/", query, nil, &page)
	return page, err
}

func (c *APIClient) Article(id int) (Article, error) {
	var article Article
	err := c.do(http.MethodGet, fmt.Sprintf("/articles/%d", id), nil, nil, &article)
	return article, err
}

func (c *APIClient) Categories() ([]string, error) {
	var parsed struct {
		Categories []string `json:"categories"`
	}
	err := c.do(http.MethodGet, "/articles/categories", nil, nil, &parsed)
	return parsed.Categories, err
}

type Stats struct {
	TotalArticles      int            `json:"total_articles"`
	TodayArticles      int            `json:"today_articles"`
	CategoryCounts     map[string]int `json:"category_counts"`
	SentimentCounts    map[string]int `json:"sentiment_counts"`
	NeedsResponseCount int            `json:"needs_response_count"`
}

func (c *APIClient) Stats() (Stats, error) {
	var stats Stats
	err := c.do(http.MethodGet, "/articles/stats", nil, nil, &stats)
	return stats, err
}

func (c *APIClient) DashboardStats() (DashboardStats, error) {
	var stats DashboardStats
	err := c.do(http.MethodGet, "/articles/dashboard-stats", nil, nil, &stats)
	return stats, err
}

func (c *APIClient) WorkflowStats() (WorkflowStats, error) {
	var stats WorkflowStats
	err := c.do(http.MethodGet, "/articles/workflow-stats", nil, nil, &stats)
	return stats, err
}

func (c *APIClient) CriticalArticles() ([]Article, error) {
	var parsed struct {
		Articles []Article `json:"articles"`
		Total    int       `json:"total"`
	}
	err := c.do(http.MethodGet, "/articles/critical", nil, nil, &parsed)
	return parsed.Articles, err
}

func (c *APIClient) UpdateStatus(articleID int, status string) (Article, error) {
	var parsed mutationResponse
	payload := map[string]string{"status": status}
	err := c.do(http.MethodPatch, fmt.Sprintf("/articles/%d/status", articleID), nil, payload, &parsed)
	return parsed.Article, err
}

func (c *APIClient) UpdateRiskLevel(articleID int, riskLevel string) (Article, error) {
	var parsed mutationResponse
	payload := map[string]string{"risk_level": riskLevel}
	err := c.do(http.MethodPatch, fmt.Sprintf("/articles/%d/risk-level", articleID), nil, payload, &parsed)
	return parsed.Article, err
}

// UpdateAssignee with assigneeID 0 clears the assignment.
func (c *APIClient) UpdateAssignee(articleID int, assigneeID int) (Article, error) {
	var parsed mutationResponse
	payload := map[string]any{"assignee_id": assigneeID}
	if assigneeID == 0 {
		payload["assignee_id"] = nil
	}
	err := c.do(http.MethodPatch, fmt.Sprintf("/articles/%d/assignee", articleID), nil, payload, &parsed)
	return parsed.Article, err
}

// UpdateActionItems sends the complete sequence, not a delta.
func (c *APIClient) UpdateActionItems(articleID int, items []ActionItem) (Article, error) {
	var parsed mutationResponse
	payload := map[string]any{"action_items": items}
	err := c.do(http.MethodPatch, fmt.Sprintf("/articles/%d/action-items", articleID), nil, payload, &parsed)
	return parsed.Article, err
}

func (c *APIClient) AnalyzeArticle(articleID int) (Article, error) {
	var parsed mutationResponse
	err := c.do(http.MethodPost, fmt.Sprintf("/articles/%d/ai-analyze", articleID), nil, nil, &parsed)
	return parsed.Article, err
}

func (c *APIClient) CollectArticles() (string, error) {
	var parsed struct {
		Message string `json:"message"`
	}
	err := c.do(http.MethodPost, "/scheduler/collect", nil, nil, &parsed)
	return parsed.Message, err
}

// --- Auth ---

func (c *APIClient) AuthURL() (string, error) {
	var parsed struct {
		AuthURL string `json:"auth_url"`
	}
	err := c.do(http.MethodGet, "/auth/google", nil, nil, &parsed)
	return parsed.AuthURL, err
}

func (c *APIClient) ExchangeCode(code string) (string, User, error) {
	var parsed struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	payload := map[string]string{"code": code}
	err := c.do(http.MethodPost, "/auth/google/callback", nil, payload, &parsed)
	return parsed.Token, parsed.User, err
}

func (c *APIClient) CurrentUser() (User, error) {
	var user User
	err := c.do(http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

func (c *APIClient) Users() ([]User, error) {
	var users []User
	err := c.do(http.MethodGet, "/auth/users", nil, nil, &users)
	return users, err
}

func (c *APIClient) Logout() error {
	return c.do(http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *APIClient) ValidateToken() (bool, User, error) {
	var parsed struct {
		Valid bool `json:"valid"`
		User  User `json:"user"`
	}
	err := c.do(http.MethodGet, "/auth/validate", nil, nil, &parsed)
	return parsed.Valid, parsed.User, err
}

// --- Comments ---

func (c *APIClient) ArticleComments(articleID int) ([]Comment, error) {
	var comments []Comment
	err := c.do(http.MethodGet, fmt.Sprintf("/comments/article/%d", articleID), nil, nil, &comments)
	return comments, err
}

func (c *APIClient) CreateComment(articleID int, content string) (Comment, error) {
	var parsed struct {
		Message string  `json:"message"`
		Comment Comment `json:"comment"`
	}
	payload := map[string]string{"content": content}
	err := c.do(http.MethodPost, fmt.Sprintf("/comments/article/%d", articleID), nil, payload, &parsed)
	return parsed.Comment, err
}

func (c *APIClient) DeleteComment(commentID int) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil, nil)
}

// --- Notifications ---

func (c *APIClient) SendTestNotification(channel string) (string, error) {
	var parsed struct {
		Message string `json:"message"`
	}
	err := c.do(http.MethodPost, "/notifications/"+channel+"/test", nil, nil, &parsed)
	return parsed.Message, err
}
