package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
)

type ListState string

const (
	ListIdle    ListState = "idle"
	ListLoading ListState = "loading"
	ListLoaded  ListState = "loaded"
	ListError   ListState = "error"
)

type AnalysisState string

const (
	AnalysisIdle    AnalysisState = "idle"
	AnalysisRunning AnalysisState = "analyzing"
	AnalysisDone    AnalysisState = "done"
	AnalysisFailed  AnalysisState = "failed"
)

const maxAlerts = 10

var errNoSelection = errors.New("no article selected")

// App is the dashboard orchestrator: the single owner of everything the
// user sees. All mutation happens through its methods on the event loop;
// async work only re-enters through Apply* calls.
type App struct {
	config  Config
	api     *APIClient
	session *SessionStore
	logger  *slog.Logger

	articles   []Article
	categories []string
	dashboard  *DashboardStats
	workflow   *WorkflowStats
	users      []User
	alerts     []Alert

	filters    Filters
	page       int
	totalPages int

	listState ListState
	listErr   string
	fetchGen  int

	selected *Article
	comments []Comment
	analysis AnalysisState

	cursor int

	notice   string
	noticeAt time.Time
	status   string
}

func NewApp(cfg Config, api *APIClient, session *SessionStore, logger *slog.Logger) *App {
	return &App{
		config:     cfg,
		api:        api,
		session:    session,
		logger:     logger,
		filters:    DefaultFilters(),
		page:       1,
		totalPages: 1,
		listState:  ListIdle,
		analysis:   AnalysisIdle,
		status:     "Ready",
	}
}

func (a *App) setNotice(message string) {
	a.notice = message
	a.noticeAt = timeNow()
}

// --- list fetching ---

// BeginFetch starts a list load and returns the request generation plus the
// query to issue. Previously loaded articles are cleared eagerly, so a
// failed refetch leaves the list blank until the next successful load.
func (a *App) BeginFetch() (int, url.Values) {
	a.fetchGen++
	a.listState = ListLoading
	a.listErr = ""
	a.articles = nil
	return a.fetchGen, buildQuery(a.filters, a.page, a.config.PageSize)
}

// ApplyFetch reconciles a list response. Responses from a superseded
// generation are discarded on arrival; only the latest request wins.
func (a *App) ApplyFetch(gen int, page ArticlesPage, err error) bool {
	if gen != a.fetchGen {
		a.logger.Debug("discarding stale list response", "gen", gen, "current", a.fetchGen)
		return false
	}
	if err != nil {
		a.listState = ListError
		a.listErr = "Failed to load articles."
		a.logger.Error("list fetch failed", "err", err)
		return true
	}
	a.articles = page.Articles
	a.totalPages = page.TotalPages
	if a.totalPages < 1 {
		a.totalPages = 1
	}
	if a.page > a.totalPages {
		a.page = a.totalPages
	}
	a.listState = ListLoaded
	if a.cursor >= len(a.articles) {
		a.cursor = len(a.articles) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	a.status = fmt.Sprintf("%d articles, page %d/%d", page.Total, a.page, a.totalPages)
	return true
}

// FetchArticles is the synchronous read cycle used outside bubbletea.
func (a *App) FetchArticles() error {
	gen, query := a.BeginFetch()
	page, err := a.api.Articles(query)
	a.ApplyFetch(gen, page, err)
	return err
}

// --- filters and pagination ---

// SetFilter changes one field; any change through this path resets the
// page to 1.
func (a *App) SetFilter(field string, value any) {
	a.filters = applyFilterChange(a.filters, field, value)
	a.page = 1
}

func (a *App) ApplyPeriodPreset(days int) {
	a.filters = periodShortcut(a.filters, days)
	a.page = 1
}

func (a *App) ClearFilters() {
	a.filters = clearFilters()
	a.page = 1
}

func (a *App) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if page > a.totalPages {
		page = a.totalPages
	}
	a.page = page
}

func (a *App) NextPage() bool {
	if a.page >= a.totalPages {
		return false
	}
	a.page++
	return true
}

func (a *App) PrevPage() bool {
	if a.page <= 1 {
		return false
	}
	a.page--
	return true
}

// CardClick mirrors clicking an aggregate risk count: red/amber filter by
// risk level, green shows resolved work instead.
func (a *App) CardClick(riskLevel string) {
	if riskLevel == RiskGreen {
		a.filters.Status = StatusResolved
		a.filters.RiskLevel = ""
	} else {
		a.filters.RiskLevel = riskLevel
		a.filters.Status = ""
	}
	a.page = 1
}

// --- cursor and selection ---

func (a *App) MoveCursor(delta int) {
	if len(a.articles) == 0 {
		a.cursor = 0
		return
	}
	idx := a.cursor + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(a.articles) {
		idx = len(a.articles) - 1
	}
	a.cursor = idx
}

func (a *App) CursorArticle() *Article {
	if len(a.articles) == 0 || a.cursor < 0 || a.cursor >= len(a.articles) {
		return nil
	}
	article := a.articles[a.cursor]
	return &article
}

// SelectCursor opens the strategy panel for the cursor article. Selection
// is panel focus only; it never refetches the list.
func (a *App) SelectCursor() {
	article := a.CursorArticle()
	if article == nil {
		return
	}
	a.selected = article
	a.comments = nil
	a.analysis = AnalysisIdle
}

func (a *App) ClearSelection() {
	a.selected = nil
	a.comments = nil
	a.analysis = AnalysisIdle
}

func (a *App) Selected() *Article {
	return a.selected
}

// --- AI analysis ---

// BeginAnalyze requires a selection; without one it warns and guarantees no
// backend call is made.
func (a *App) BeginAnalyze() (int, error) {
	if a.selected == nil {
		a.setNotice("Select an article to analyze.")
		return 0, errNoSelection
	}
	a.analysis = AnalysisRunning
	return a.selected.ID, nil
}

// ApplyAnalyze installs the server's updated article in the panel. The
// caller is responsible for the follow-up list refetch that keeps the card
// summary consistent with the panel.
func (a *App) ApplyAnalyze(article Article, err error) {
	if err != nil {
		a.analysis = AnalysisFailed
		a.setNotice("AI analysis failed.")
		a.logger.Error("ai analysis failed", "err", err)
		return
	}
	a.analysis = AnalysisDone
	a.selected = &article
	a.setNotice("AI analysis completed.")
}

// Analyze is the synchronous variant: analyze, then reconcile the list.
func (a *App) Analyze() error {
	id, err := a.BeginAnalyze()
	if err != nil {
		return err
	}
	article, err := a.api.AnalyzeArticle(id)
	a.ApplyAnalyze(article, err)
	if err != nil {
		return err
	}
	return a.FetchArticles()
}

// --- mutations (optimistic) ---

// mutation is one optimistic round trip. The local patch is applied while
// the mutation is built, on the caller's goroutine; call only talks to the
// backend and returns the success notice, so a tea.Cmd can run it from
// another goroutine without touching orchestrator state.
type mutation struct {
	name     string
	call     func() (string, error)
	failed   string
	comments bool // reload the comment thread instead of list and stats
}

// ApplyMutation records the outcome of a mutation's backend half.
func (a *App) ApplyMutation(mut mutation, notice string, err error) error {
	if err != nil {
		if mut.failed != "" {
			a.setNotice(mut.failed)
		}
		a.logger.Error("mutation failed", "op", mut.name, "err", err)
		return err
	}
	if notice != "" {
		a.setNotice(notice)
	}
	return nil
}

// runMutation is the synchronous cycle used outside bubbletea.
func (a *App) runMutation(mut mutation) error {
	notice, err := mut.call()
	return a.ApplyMutation(mut, notice, err)
}

// patchSelected applies a local edit to the panel copy so it feels
// responsive; there is no rollback if the backend call later fails.
func (a *App) patchSelected(articleID int, patch func(*Article)) {
	if a.selected != nil && a.selected.ID == articleID {
		patch(a.selected)
	}
}

// BeginStatusChange patches the panel immediately and hands back the call.
// The caller refetches list and stats afterward regardless of outcome.
func (a *App) BeginStatusChange(articleID int, status string) mutation {
	a.patchSelected(articleID, func(article *Article) {
		article.Status = status
	})
	api := a.api
	return mutation{
		name:   "status change",
		failed: "Status change failed.",
		call: func() (string, error) {
			if _, err := api.UpdateStatus(articleID, status); err != nil {
				return "", err
			}
			return "Status updated.", nil
		},
	}
}

func (a *App) ChangeStatus(articleID int, status string) error {
	return a.runMutation(a.BeginStatusChange(articleID, status))
}

// BeginRiskLevelChange overrides the classifier's verdict for an article.
func (a *App) BeginRiskLevelChange(articleID int, riskLevel string) mutation {
	a.patchSelected(articleID, func(article *Article) {
		article.RiskLevel = riskLevel
	})
	api := a.api
	return mutation{
		name:   "risk level change",
		failed: "Risk level change failed.",
		call: func() (string, error) {
			if _, err := api.UpdateRiskLevel(articleID, riskLevel); err != nil {
				return "", err
			}
			return "Risk level updated.", nil
		},
	}
}

func (a *App) ChangeRiskLevel(articleID int, riskLevel string) error {
	return a.runMutation(a.BeginRiskLevelChange(articleID, riskLevel))
}

// BeginAssign sets the assignee. Assigning a pending article moves it to
// reviewing, matching what the backend will report back.
func (a *App) BeginAssign(articleID int, assignee User) mutation {
	a.patchSelected(articleID, func(article *Article) {
		id := assignee.ID
		article.AssigneeID = &id
		article.Assignee = &assignee
		if article.Status == StatusPending {
			article.Status = StatusReviewing
		}
	})
	api := a.api
	return mutation{
		name:   "assignment",
		failed: "Assignment failed.",
		call: func() (string, error) {
			if _, err := api.UpdateAssignee(articleID, assignee.ID); err != nil {
				return "", err
			}
			return "Assigned to " + assignee.Name + ".", nil
		},
	}
}

func (a *App) Assign(articleID int, assignee User) error {
	return a.runMutation(a.BeginAssign(articleID, assignee))
}

func (a *App) BeginAssignToMe(articleID int) (mutation, error) {
	user := a.session.User()
	if user == nil {
		a.setNotice("Not signed in.")
		return mutation{}, errors.New("no session user")
	}
	return a.BeginAssign(articleID, *user), nil
}

func (a *App) AssignToMe(articleID int) error {
	mut, err := a.BeginAssignToMe(articleID)
	if err != nil {
		return err
	}
	return a.runMutation(mut)
}

// BeginActionItemToggle flips exactly one item's checked flag and sends the
// full updated sequence back, never a delta. The article is looked up in the
// current list first, then the selection.
func (a *App) BeginActionItemToggle(articleID int, index int) (mutation, error) {
	article := a.findArticle(articleID)
	if article == nil {
		return mutation{}, fmt.Errorf("article %d not visible", articleID)
	}
	if index < 0 || index >= len(article.ActionItems) {
		return mutation{}, fmt.Errorf("action item %d out of range", index)
	}
	updated := make([]ActionItem, len(article.ActionItems))
	copy(updated, article.ActionItems)
	updated[index].Checked = !updated[index].Checked
	a.patchSelected(articleID, func(selected *Article) {
		selected.ActionItems = updated
	})
	api := a.api
	return mutation{
		name: "action item update",
		call: func() (string, error) {
			if _, err := api.UpdateActionItems(articleID, updated); err != nil {
				return "", err
			}
			return "", nil
		},
	}, nil
}

func (a *App) ToggleActionItem(articleID int, index int) error {
	mut, err := a.BeginActionItemToggle(articleID, index)
	if err != nil {
		return err
	}
	return a.runMutation(mut)
}

func (a *App) findArticle(articleID int) *Article {
	for i := range a.articles {
		if a.articles[i].ID == articleID {
			return &a.articles[i]
		}
	}
	if a.selected != nil && a.selected.ID == articleID {
		return a.selected
	}
	return nil
}

// --- stats polling and alerts ---

// RefreshStats runs one polling tick: dashboard stats, workflow stats and
// categories. Failures are logged, never surfaced. A tick reporting any red
// articles appends a fresh alert even if the previous tick already did;
// duplicates are accepted behavior.
func (a *App) RefreshStats() {
	dash, dashErr := a.api.DashboardStats()
	work, workErr := a.api.WorkflowStats()
	cats, catsErr := a.api.Categories()
	a.ApplyStats(dash, dashErr, work, workErr, cats, catsErr)
}

// ApplyStats reconciles one tick's worth of polled data.
func (a *App) ApplyStats(dash DashboardStats, dashErr error, work WorkflowStats, workErr error, cats []string, catsErr error) {
	if dashErr != nil {
		a.logger.Warn("dashboard stats fetch failed", "err", dashErr)
	} else {
		a.dashboard = &dash
		if dash.RiskLevels.Red > 0 {
			a.appendAlert(dash.RiskLevels.Red)
		}
	}
	if workErr != nil {
		a.logger.Warn("workflow stats fetch failed", "err", workErr)
	} else {
		a.workflow = &work
	}
	if catsErr != nil {
		a.logger.Warn("categories fetch failed", "err", catsErr)
	} else {
		a.categories = cats
	}
}

func (a *App) appendAlert(redCount int) {
	alert := Alert{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("%d critical risk articles flagged", redCount),
		RiskLevel: RiskRed,
		CreatedAt: timeNow(),
	}
	alerts := make([]Alert, 0, maxAlerts)
	alerts = append(alerts, alert)
	rest := a.alerts
	if len(rest) > maxAlerts-1 {
		rest = rest[:maxAlerts-1]
	}
	a.alerts = append(alerts, rest...)
}

// AlertClick marks the alert read and applies its risk level as a filter.
func (a *App) AlertClick(alertID string) {
	for i := range a.alerts {
		if a.alerts[i].ID == alertID {
			a.alerts[i].Read = true
			a.SetFilter(fieldRiskLevel, a.alerts[i].RiskLevel)
			return
		}
	}
}

// --- comments ---

// ApplyComments installs a reloaded thread for the panel.
func (a *App) ApplyComments(comments []Comment, err error) {
	if err != nil {
		a.logger.Error("comments fetch failed", "err", err)
		return
	}
	a.comments = comments
}

func (a *App) LoadComments() error {
	if a.selected == nil {
		return errNoSelection
	}
	comments, err := a.api.ArticleComments(a.selected.ID)
	a.ApplyComments(comments, err)
	return err
}

func (a *App) BeginCommentAdd(content string) (mutation, error) {
	if a.selected == nil {
		a.setNotice("Select an article to comment on.")
		return mutation{}, errNoSelection
	}
	api := a.api
	articleID := a.selected.ID
	return mutation{
		name:     "comment create",
		failed:   "Comment failed.",
		comments: true,
		call: func() (string, error) {
			if _, err := api.CreateComment(articleID, content); err != nil {
				return "", err
			}
			return "Comment added.", nil
		},
	}, nil
}

func (a *App) AddComment(content string) error {
	mut, err := a.BeginCommentAdd(content)
	if err != nil {
		return err
	}
	if err := a.runMutation(mut); err != nil {
		return err
	}
	return a.LoadComments()
}

func (a *App) BeginCommentDelete(commentID int) mutation {
	api := a.api
	return mutation{
		name:     "comment delete",
		failed:   "Delete failed.",
		comments: true,
		call: func() (string, error) {
			if err := api.DeleteComment(commentID); err != nil {
				return "", err
			}
			return "Comment deleted.", nil
		},
	}
}

func (a *App) DeleteComment(commentID int) error {
	if err := a.runMutation(a.BeginCommentDelete(commentID)); err != nil {
		return err
	}
	if a.selected != nil {
		return a.LoadComments()
	}
	return nil
}

// --- misc actions ---

func (a *App) LoadUsers() error {
	users, err := a.api.Users()
	if err != nil {
		return err
	}
	a.users = users
	return nil
}

func (a *App) userByID(userID int) (User, bool) {
	for _, user := range a.users {
		if user.ID == userID {
			return user, true
		}
	}
	return User{}, false
}

func (a *App) BeginCollect() mutation {
	api := a.api
	return mutation{
		name:   "collection trigger",
		failed: "Collection trigger failed.",
		call: func() (string, error) {
			message, err := api.CollectArticles()
			if err != nil {
				return "", err
			}
			if message == "" {
				message = "Collection started."
			}
			return message, nil
		},
	}
}

func (a *App) CollectNow() error {
	return a.runMutation(a.BeginCollect())
}

func (a *App) BeginNotificationTest(channel string) mutation {
	api := a.api
	return mutation{
		name:   channel + " notification test",
		failed: channel + " test failed.",
		call: func() (string, error) {
			message, err := api.SendTestNotification(channel)
			if err != nil {
				return "", err
			}
			if message == "" {
				message = channel + " test sent."
			}
			return message, nil
		},
	}
}

func (a *App) TestNotification(channel string) error {
	return a.runMutation(a.BeginNotificationTest(channel))
}

func (a *App) OpenSelected() error {
	if a.selected == nil {
		return errNoSelection
	}
	return openURL(a.selected.URL)
}

func (a *App) CopySelectedURL() error {
	if a.selected == nil {
		return errNoSelection
	}
	if err := copyToClipboard(a.selected.URL); err != nil {
		return err
	}
	a.setNotice("Link copied to clipboard.")
	return nil
}

// Logout tears down the session and every user-scoped piece of state.
func (a *App) Logout() {
	a.session.Logout()
	a.articles = nil
	a.selected = nil
	a.comments = nil
	a.alerts = nil
	a.dashboard = nil
	a.workflow = nil
	a.users = nil
	a.filters = DefaultFilters()
	a.page = 1
	a.totalPages = 1
	a.listState = ListIdle
	a.status = "Signed out"
}
