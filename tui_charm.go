package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAuthCode
	inputKeyword
	inputCategory
	inputStatus
	inputRisk
	inputDateFrom
	inputDateTo
	inputSelectedStatus
	inputSelectedRisk
	inputAssignUser
	inputComment
)

type spinnerTickMsg struct{}

type pollTickMsg struct{}

type articlesMsg struct {
	gen  int
	page ArticlesPage
	err  error
}

type statsMsg struct {
	dash    DashboardStats
	dashErr error
	work    WorkflowStats
	workErr error
	cats    []string
	catsErr error
}

type analyzeMsg struct {
	article Article
	err     error
}

// mutationMsg reports the backend half of an optimistic round trip. The
// outcome is applied on the event loop, and the affected data is refetched
// regardless of err.
type mutationMsg struct {
	mut    mutation
	notice string
	err    error
}

type commentsMsg struct {
	comments []Comment
	err      error
}

type loginURLMsg struct {
	url string
	err error
}

type sessionMsg struct {
	user User
	err  error
}

type tuiModel struct {
	app           *App
	width         int
	height        int
	input         textinput.Model
	inputMode     inputMode
	showHelp      bool
	actionCursor  int
	alertCursor   int
	spinnerIndex  int
	spinnerFrames []string
	loginHint     string
}

var (
	teaNewProgram = tea.NewProgram
	runTeaProgram = defaultRunTeaProgram
)

func defaultRunTeaProgram(program *tea.Program) (tea.Model, error) {
	return program.Run()
}

func RunTUI(app *App) error {
	model := newTUIModel(app)
	program := teaNewProgram(model, tea.WithAltScreen())
	_, err := runTeaProgram(program)
	return err
}

func newTUIModel(app *App) tuiModel {
	input := textinput.New()
	input.CharLimit = 512
	input.Width = 50
	input.Prompt = "> "
	return tuiModel{
		app:           app,
		input:         input,
		spinnerFrames: []string{"|", "/", "-", "\\"},
	}
}

func (m tuiModel) authenticated() bool {
	return authBypass || m.app.session.Authenticated()
}

func (m tuiModel) pollInterval() time.Duration {
	return time.Duration(m.app.config.PollIntervalSeconds) * time.Second
}

func (m tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{spinnerTick()}
	if m.authenticated() {
		cmds = append(cmds, m.fetchCmd(), statsCmd(m.app), pollTick(m.pollInterval()))
	}
	return tea.Batch(cmds...)
}

func spinnerTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// pollTick drives the recurring stats refresh. It is only rescheduled while
// the dashboard view is active, so logging out tears the timer down.
func pollTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// fetchCmd starts a list load. The generation is taken on the event loop so
// a stale in-flight response can never overwrite a newer request's result.
func (m *tuiModel) fetchCmd() tea.Cmd {
	gen, query := m.app.BeginFetch()
	api := m.app.api
	return func() tea.Msg {
		page, err := api.Articles(query)
		return articlesMsg{gen: gen, page: page, err: err}
	}
}

func statsCmd(app *App) tea.Cmd {
	return func() tea.Msg {
		var msg statsMsg
		msg.dash, msg.dashErr = app.api.DashboardStats()
		msg.work, msg.workErr = app.api.WorkflowStats()
		msg.cats, msg.catsErr = app.api.Categories()
		return msg
	}
}

func analyzeCmd(app *App, articleID int) tea.Cmd {
	return func() tea.Msg {
		article, err := app.api.AnalyzeArticle(articleID)
		return analyzeMsg{article: article, err: err}
	}
}

// mutationCmd runs the backend half of a mutation that was built, patch and
// all, on the event loop.
func mutationCmd(mut mutation) tea.Cmd {
	return func() tea.Msg {
		notice, err := mut.call()
		return mutationMsg{mut: mut, notice: notice, err: err}
	}
}

// commentsCmd reloads the selected article's thread.
func commentsCmd(app *App) tea.Cmd {
	selected := app.Selected()
	if selected == nil {
		return nil
	}
	api := app.api
	articleID := selected.ID
	return func() tea.Msg {
		comments, err := api.ArticleComments(articleID)
		return commentsMsg{comments: comments, err: err}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinnerTickMsg:
		if len(m.spinnerFrames) > 0 {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(m.spinnerFrames)
		}
		return m, spinnerTick()
	case pollTickMsg:
		if !m.authenticated() {
			return m, nil
		}
		return m, tea.Batch(statsCmd(m.app), pollTick(m.pollInterval()))
	case articlesMsg:
		m.app.ApplyFetch(msg.gen, msg.page, msg.err)
		return m, nil
	case statsMsg:
		m.app.ApplyStats(msg.dash, msg.dashErr, msg.work, msg.workErr, msg.cats, msg.catsErr)
		return m, nil
	case analyzeMsg:
		m.app.ApplyAnalyze(msg.article, msg.err)
		if msg.err != nil {
			return m, nil
		}
		// keep the card summary consistent with the panel
		return m, m.fetchCmd()
	case mutationMsg:
		m.app.ApplyMutation(msg.mut, msg.notice, msg.err)
		if msg.mut.comments {
			return m, commentsCmd(m.app)
		}
		return m, tea.Batch(m.fetchCmd(), statsCmd(m.app))
	case commentsMsg:
		m.app.ApplyComments(msg.comments, msg.err)
		return m, nil
	case loginURLMsg:
		if msg.err != nil {
			m.loginHint = "Login failed: " + msg.err.Error()
			return m, nil
		}
		m.loginHint = "Browser opened. Paste the callback code or token."
		m = m.startInput(inputAuthCode, "Authorization code or token")
		return m, nil
	case sessionMsg:
		if msg.err != nil {
			m.loginHint = "Sign-in failed: " + msg.err.Error()
			return m, nil
		}
		m.app.session.setUser(msg.user)
		m.loginHint = ""
		return m, tea.Batch(m.fetchCmd(), statsCmd(m.app), pollTick(m.pollInterval()))
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.showHelp {
		if key == "/" || key == "esc" || key == "q" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.inputMode != inputNone {
		var cmd tea.Cmd
		switch key {
		case "esc":
			m.inputMode = inputNone
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		case "enter":
			return m.commitInput()
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if !m.authenticated() {
		return m.handleLoginKey(key)
	}
	return m.handleDashboardKey(key)
}

func (m tuiModel) handleLoginKey(key string) (tuiModel, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "l", "enter":
		session := m.app.session
		return m, func() tea.Msg {
			url, err := session.BeginOAuthLogin()
			return loginURLMsg{url: url, err: err}
		}
	case "t":
		m = m.startInput(inputAuthCode, "Authorization code or token")
	}
	return m, nil
}

func (m tuiModel) handleDashboardKey(key string) (tuiModel, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		m.showHelp = true
	case "j", "down":
		m.app.MoveCursor(1)
	case "k", "up":
		m.app.MoveCursor(-1)
	case "enter":
		m.app.SelectCursor()
		m.actionCursor = 0
		if m.app.Selected() != nil {
			return m, commentsCmd(m.app)
		}
	case "esc":
		m.app.ClearSelection()
	case "n", "right":
		if m.app.NextPage() {
			return m, m.fetchCmd()
		}
	case "p", "left":
		if m.app.PrevPage() {
			return m, m.fetchCmd()
		}
	case "r":
		return m, tea.Batch(m.fetchCmd(), statsCmd(m.app))
	case "R":
		return m, mutationCmd(m.app.BeginCollect())
	case "w":
		m = m.startInput(inputKeyword, "Keyword")
	case "c":
		m = m.startInput(inputCategory, "Category (empty for all)")
	case "t":
		m = m.startInput(inputStatus, "Status filter (pending/reviewing/resolved/ignored)")
	case "v":
		m = m.startInput(inputRisk, "Risk level filter (red/amber/green)")
	case "d":
		m = m.startInput(inputDateFrom, "From date (YYYY-MM-DD)")
	case "D":
		m = m.startInput(inputDateTo, "To date (YYYY-MM-DD)")
	case "e":
		m.app.SetFilter(fieldExcludeResolved, !m.app.filters.ExcludeResolved)
		return m, m.fetchCmd()
	case "C":
		m.app.ClearFilters()
		return m, m.fetchCmd()
	case "1":
		m.app.ApplyPeriodPreset(1)
		return m, m.fetchCmd()
	case "7":
		m.app.ApplyPeriodPreset(7)
		return m, m.fetchCmd()
	case "3":
		m.app.ApplyPeriodPreset(30)
		return m, m.fetchCmd()
	case "!":
		m.app.CardClick(RiskRed)
		return m, m.fetchCmd()
	case "@":
		m.app.CardClick(RiskAmber)
		return m, m.fetchCmd()
	case "#":
		m.app.CardClick(RiskGreen)
		return m, m.fetchCmd()
	case "A":
		articleID, err := m.app.BeginAnalyze()
		if err != nil {
			return m, nil
		}
		return m, analyzeCmd(m.app, articleID)
	case "S":
		if m.app.Selected() != nil {
			m = m.startInput(inputSelectedStatus, "New status (pending/reviewing/resolved/ignored)")
		}
	case "V":
		if m.app.Selected() != nil {
			m = m.startInput(inputSelectedRisk, "New risk level (red/amber/green)")
		}
	case "a":
		if selected := m.app.Selected(); selected != nil {
			mut, err := m.app.BeginAssignToMe(selected.ID)
			if err != nil {
				return m, nil
			}
			return m, mutationCmd(mut)
		}
	case "u":
		if m.app.Selected() != nil {
			app := m.app
			_ = app.LoadUsers()
			m = m.startInput(inputAssignUser, "Assignee user id ("+userChoices(app.users)+")")
		}
	case "[":
		m.moveActionCursor(-1)
	case "]":
		m.moveActionCursor(1)
	case "x", " ":
		if selected := m.app.Selected(); selected != nil && len(selected.ActionItems) > 0 {
			mut, err := m.app.BeginActionItemToggle(selected.ID, m.actionCursor)
			if err != nil {
				return m, nil
			}
			return m, mutationCmd(mut)
		}
	case "g":
		if m.app.Selected() != nil {
			m = m.startInput(inputComment, "Comment")
		}
	case "G":
		if m.app.Selected() != nil {
			return m, commentsCmd(m.app)
		}
	case "z":
		if len(m.app.alerts) > 0 {
			if m.alertCursor >= len(m.app.alerts) {
				m.alertCursor = len(m.app.alerts) - 1
			}
			m.app.AlertClick(m.app.alerts[m.alertCursor].ID)
			return m, m.fetchCmd()
		}
	case "o":
		_ = m.app.OpenSelected()
	case "y":
		_ = m.app.CopySelectedURL()
	case "N":
		return m, mutationCmd(m.app.BeginNotificationTest("slack"))
	case "T":
		return m, mutationCmd(m.app.BeginNotificationTest("telegram"))
	case "L":
		m.app.Logout()
		m.loginHint = "Signed out."
	}
	return m, nil
}

func (m *tuiModel) moveActionCursor(delta int) {
	selected := m.app.Selected()
	if selected == nil || len(selected.ActionItems) == 0 {
		m.actionCursor = 0
		return
	}
	idx := m.actionCursor + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(selected.ActionItems) {
		idx = len(selected.ActionItems) - 1
	}
	m.actionCursor = idx
}

func userChoices(users []User) string {
	if len(users) == 0 {
		return "none loaded"
	}
	parts := make([]string, 0, len(users))
	for _, user := range users {
		parts = append(parts, fmt.Sprintf("%d=%s", user.ID, user.Name))
	}
	return strings.Join(parts, ", ")
}

func (m tuiModel) startInput(mode inputMode, placeholder string) tuiModel {
	m.inputMode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	return m
}

func (m tuiModel) commitInput() (tuiModel, tea.Cmd) {
	mode := m.inputMode
	value := strings.TrimSpace(m.input.Value())
	m.inputMode = inputNone
	m.input.Blur()
	m.input.SetValue("")

	switch mode {
	case inputAuthCode:
		if value == "" {
			return m, nil
		}
		session := m.app.session
		return m, func() tea.Msg {
			user, err := session.exchange(value)
			return sessionMsg{user: user, err: err}
		}
	case inputKeyword:
		m.app.SetFilter(fieldKeyword, value)
	case inputCategory:
		m.app.SetFilter(fieldCategory, value)
	case inputStatus:
		m.app.SetFilter(fieldStatus, value)
	case inputRisk:
		m.app.SetFilter(fieldRiskLevel, value)
	case inputDateFrom:
		m.app.SetFilter(fieldDateFrom, value)
	case inputDateTo:
		m.app.SetFilter(fieldDateTo, value)
	case inputSelectedStatus:
		if selected := m.app.Selected(); selected != nil && value != "" {
			return m, mutationCmd(m.app.BeginStatusChange(selected.ID, value))
		}
		return m, nil
	case inputSelectedRisk:
		if selected := m.app.Selected(); selected != nil && value != "" {
			return m, mutationCmd(m.app.BeginRiskLevelChange(selected.ID, value))
		}
		return m, nil
	case inputAssignUser:
		if selected := m.app.Selected(); selected != nil && value != "" {
			var userID int
			if _, err := fmt.Sscanf(value, "%d", &userID); err != nil {
				m.app.setNotice("Invalid user id.")
				return m, nil
			}
			assignee, ok := m.app.userByID(userID)
			if !ok {
				m.app.setNotice("Unknown user id.")
				return m, nil
			}
			return m, mutationCmd(m.app.BeginAssign(selected.ID, assignee))
		}
		return m, nil
	case inputComment:
		if value != "" {
			mut, err := m.app.BeginCommentAdd(value)
			if err != nil {
				return m, nil
			}
			return m, mutationCmd(mut)
		}
		return m, nil
	default:
		return m, nil
	}
	return m, m.fetchCmd()
}

// --- rendering ---

var (
	riskStyles = map[string]lipgloss.Style{
		RiskRed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		RiskAmber: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		RiskGreen: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func riskBadge(level string) string {
	style, ok := riskStyles[level]
	if !ok {
		return "?"
	}
	return style.Render(strings.ToUpper(level))
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	var base string
	if m.authenticated() {
		base = m.renderDashboard()
	} else {
		base = m.renderLogin()
	}
	if m.inputMode != inputNone {
		return m.renderInputOverlay()
	}
	return base
}

func (m tuiModel) renderLogin() string {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3).BorderForeground(lipgloss.Color("63"))
	lines := []string{
		headerStyle.Render("Hashed Risk Monitor"),
		"",
		"l - sign in with Google",
		"t - paste a token directly",
		"q - quit",
	}
	if m.loginHint != "" {
		lines = append(lines, "", dimStyle.Render(m.loginHint))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(strings.Join(lines, "\n")))
}

func (m tuiModel) renderDashboard() string {
	leftWidth := clamp(int(float64(m.width)*0.45), 40, 72)
	rightWidth := m.width - leftWidth - 2
	if rightWidth < 32 {
		rightWidth = 32
	}
	paneHeight := m.height - 1
	if paneHeight < 10 {
		paneHeight = 10
	}
	left := m.renderList(leftWidth, paneHeight)
	right := m.renderSidePanel(rightWidth, paneHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	status := m.renderStatusBar(m.width)
	return lipgloss.JoinVertical(lipgloss.Top, body, status)
}

func (m tuiModel) renderList(width int, height int) string {
	style := lipgloss.NewStyle().Width(width).Height(height).Padding(1, 1, 0, 1)
	lines := []string{headerStyle.Render("Risk Monitor"), m.renderCards(), ""}

	switch m.app.listState {
	case ListLoading:
		spinner := ""
		if len(m.spinnerFrames) > 0 {
			spinner = m.spinnerFrames[m.spinnerIndex] + " "
		}
		lines = append(lines, spinner+"Loading articles...")
	case ListError:
		lines = append(lines, errorStyle.Render(m.app.listErr), "Press r to retry.")
	default:
		if len(m.app.articles) == 0 {
			lines = append(lines, "No articles match the current filters.")
		}
		max := height - 8
		if max < 3 {
			max = 3
		}
		for i, article := range m.app.articles {
			if i >= max {
				break
			}
			prefix := " "
			if i == m.app.cursor {
				prefix = "▸"
			}
			marker := ""
			if m.app.Selected() != nil && m.app.Selected().ID == article.ID {
				marker = "*"
			}
			titleWidth := width - 16
			if titleWidth < 10 {
				titleWidth = 10
			}
			line := fmt.Sprintf("%s %s %3d %s%s", prefix, riskBadge(article.RiskLevel), article.RiskScore, marker, truncate(article.Title, titleWidth))
			if i == m.app.cursor {
				line = cursorStyle.Render(line)
			}
			lines = append(lines, line)
			lines = append(lines, dimStyle.Render(fmt.Sprintf("    %s · %s · %s", article.Source, article.Status, article.AssigneeName())))
		}
		lines = append(lines, "", dimStyle.Render(fmt.Sprintf("Page %d/%d  (n/p to change)", m.app.page, m.app.totalPages)))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m tuiModel) renderCards() string {
	dash := m.app.dashboard
	if dash == nil {
		return dimStyle.Render("stats pending...")
	}
	return fmt.Sprintf("%s %d  %s %d  %s %d  resolved %d",
		riskBadge(RiskRed), dash.RiskLevels.Red,
		riskBadge(RiskAmber), dash.RiskLevels.Amber,
		riskBadge(RiskGreen), dash.RiskLevels.Green,
		dash.Status.Resolved)
}

func (m tuiModel) renderSidePanel(width int, height int) string {
	style := lipgloss.NewStyle().Width(width).Height(height).Padding(1, 1, 0, 1)
	panelHeight := (height * 5) / 10
	alertsHeight := (height * 25) / 100
	workflowHeight := height - panelHeight - alertsHeight - 2

	panel := m.renderStrategyPanel(width-2, panelHeight)
	alerts := m.renderAlerts(width-2, alertsHeight)
	workflow := m.renderWorkflow(width-2, workflowHeight)
	return style.Render(lipgloss.JoinVertical(lipgloss.Top, panel, alerts, workflow))
}

func (m tuiModel) renderStrategyPanel(width int, height int) string {
	style := lipgloss.NewStyle().Height(height)
	article := m.app.Selected()
	if article == nil {
		return style.Render(headerStyle.Render("AI Strategy") + "\n" + dimStyle.Render("Select an article (enter) to view the response plan."))
	}
	lines := []string{
		headerStyle.Render("AI Strategy"),
		fmt.Sprintf("%s %3d  %s", riskBadge(article.RiskLevel), article.RiskScore, article.Status),
		"",
	}
	for _, line := range wrapText(truncate(article.Title, 200), width) {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(line))
	}
	lines = append(lines, "")
	switch m.app.analysis {
	case AnalysisRunning:
		spinner := ""
		if len(m.spinnerFrames) > 0 {
			spinner = m.spinnerFrames[m.spinnerIndex] + " "
		}
		lines = append(lines, spinner+"Analyzing...")
	case AnalysisFailed:
		lines = append(lines, errorStyle.Render("Analysis failed. Press A to retry."))
	default:
		lines = append(lines, wrapText(article.SummaryText(), width)...)
	}
	if article.AIAnalysis != "" {
		lines = append(lines, "", dimStyle.Render("Risk analysis:"))
		lines = append(lines, wrapText(article.AIAnalysis, width)...)
	}
	if len(article.ActionItems) > 0 {
		lines = append(lines, "", dimStyle.Render("Action items ([/] move, x toggle):"))
		for i, item := range article.ActionItems {
			check := "[ ]"
			if item.Checked {
				check = "[x]"
			}
			prefix := "  "
			if i == m.actionCursor {
				prefix = "▸ "
			}
			lines = append(lines, prefix+check+" "+truncate(item.Text, width-8))
		}
	}
	if len(article.SimilarCases) > 0 {
		lines = append(lines, "", dimStyle.Render("Similar cases:"))
		for _, similar := range article.SimilarCases {
			lines = append(lines, "  "+truncate(similar.Title, width-4))
		}
	}
	if len(m.app.comments) > 0 {
		lines = append(lines, "", dimStyle.Render("Comments:"))
		for _, comment := range m.app.comments {
			lines = append(lines, "  "+comment.AuthorName()+": "+truncate(comment.Content, width-6))
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m tuiModel) renderAlerts(width int, height int) string {
	style := lipgloss.NewStyle().Height(height)
	lines := []string{headerStyle.Render("Realtime Alerts")}
	if len(m.app.alerts) == 0 {
		lines = append(lines, dimStyle.Render("No alerts."))
	}
	for i, alert := range m.app.alerts {
		if i >= height-1 {
			break
		}
		read := " "
		if alert.Read {
			read = "·"
		}
		prefix := "  "
		if i == m.alertCursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s %s %s", prefix, read, riskBadge(alert.RiskLevel), truncate(alert.Title, width-12))
		lines = append(lines, line)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m tuiModel) renderWorkflow(width int, height int) string {
	style := lipgloss.NewStyle().Height(height)
	lines := []string{headerStyle.Render("Team Workflow")}
	work := m.app.workflow
	if work == nil {
		lines = append(lines, dimStyle.Render("No workflow data."))
		return style.Render(strings.Join(lines, "\n"))
	}
	for i, load := range work.ByAssignee {
		if i >= height-2 {
			break
		}
		lines = append(lines, fmt.Sprintf("  %s  %d in progress", truncate(load.Name, width-18), load.AssignedCount))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("  unassigned: %d", work.UnassignedCount)))
	return style.Render(strings.Join(lines, "\n"))
}

const noticeDuration = 3 * time.Second

func (m tuiModel) renderStatusBar(width int) string {
	style := lipgloss.NewStyle().Width(width).Padding(0, 1).Foreground(lipgloss.Color("241"))
	status := m.app.status
	if m.app.notice != "" && timeNow().Sub(m.app.noticeAt) < noticeDuration {
		status = m.app.notice
	}
	tip := "Press / for help"
	if m.inputMode != inputNone {
		tip = "Enter to confirm, Esc to cancel"
	}
	padding := width - lipgloss.Width(status) - lipgloss.Width(tip) - 2
	if padding < 1 {
		padding = 1
	}
	return style.Render(status + strings.Repeat(" ", padding) + tip)
}

func (m tuiModel) renderHelpOverlay() string {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).BorderForeground(lipgloss.Color("63"))
	content := []string{
		"Quick Commands",
		"",
		"j/k or arrows  - navigate articles",
		"enter          - open strategy panel",
		"esc            - close panel",
		"n/p            - next/previous page",
		"r              - refresh list and stats",
		"R              - trigger article collection",
		"w/c/t/v        - keyword/category/status/risk filter",
		"d/D            - from/to date filter",
		"e              - toggle exclude-resolved",
		"1/7/3          - last 1/7/30 days preset",
		"C              - clear filters",
		"!/@/#          - red/amber/green card filter",
		"A              - run AI analysis",
		"S              - change status",
		"V              - override risk level",
		"a/u            - assign to me / assign by user",
		"[/]/x          - move/toggle action item",
		"g/G            - add/reload comments",
		"z              - open top alert as filter",
		"o/y            - open/copy article link",
		"N/T            - slack/telegram test",
		"L              - sign out",
		"/ or esc       - close help",
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(strings.Join(content, "\n")))
}

func (m tuiModel) renderInputOverlay() string {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).BorderForeground(lipgloss.Color("62"))
	content := m.input.Placeholder + "\n\n" + m.input.View()
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(content))
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func truncate(value string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{""}
	}
	lines := []string{}
	for _, para := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range strings.Fields(trimmed) {
			if line == "" {
				if len(word) > width {
					lines = append(lines, truncate(word, width))
					continue
				}
				line = word
				continue
			}
			if len(line)+1+len(word) > width {
				lines = append(lines, line)
				if len(word) > width {
					lines = append(lines, truncate(word, width))
					line = ""
				} else {
					line = word
				}
				continue
			}
			line = line + " " + word
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
