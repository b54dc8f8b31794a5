package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Run drives the plain-terminal mode used when stdin or stdout is not a
// TTY. Commands map onto the same App operations as the full dashboard.
func Run(app *App, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, render(app))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := handleCommand(app, line, out); err != nil {
			fmt.Fprintln(out, "error: "+err.Error())
		}
		if line == "q" || line == "quit" {
			break
		}
		fmt.Fprintln(out, render(app))
	}
	return scanner.Err()
}

// reconcile mirrors the dashboard's post-mutation behavior: list and stats
// are refetched regardless of how the round trip went.
func reconcile(app *App, err error) error {
	app.RefreshStats()
	if fetchErr := app.FetchArticles(); err == nil {
		err = fetchErr
	}
	return err
}

func handleCommand(app *App, line string, out io.Writer) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	switch parts[0] {
	case "q", "quit":
		return nil
	case "j", "down":
		app.MoveCursor(1)
	case "k", "up":
		app.MoveCursor(-1)
	case "enter", "select":
		if len(parts) > 1 {
			index, err := strconv.Atoi(parts[1])
			if err != nil {
				return fmt.Errorf("bad index %q", parts[1])
			}
			app.cursor = index - 1
			app.MoveCursor(0)
		}
		app.SelectCursor()
		if app.Selected() != nil {
			return app.LoadComments()
		}
	case "close":
		app.ClearSelection()
	case "r", "refresh":
		app.RefreshStats()
		return app.FetchArticles()
	case "n", "next":
		if app.NextPage() {
			return app.FetchArticles()
		}
	case "p", "prev":
		if app.PrevPage() {
			return app.FetchArticles()
		}
	case "page":
		if len(parts) < 2 {
			return fmt.Errorf("missing page number")
		}
		page, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad page %q", parts[1])
		}
		app.SetPage(page)
		return app.FetchArticles()
	case "keyword":
		app.SetFilter(fieldKeyword, strings.Join(parts[1:], " "))
		return app.FetchArticles()
	case "category":
		app.SetFilter(fieldCategory, strings.Join(parts[1:], " "))
		return app.FetchArticles()
	case "status-filter":
		app.SetFilter(fieldStatus, strings.Join(parts[1:], ""))
		return app.FetchArticles()
	case "risk":
		app.SetFilter(fieldRiskLevel, strings.Join(parts[1:], ""))
		return app.FetchArticles()
	case "from":
		app.SetFilter(fieldDateFrom, strings.Join(parts[1:], ""))
		return app.FetchArticles()
	case "to":
		app.SetFilter(fieldDateTo, strings.Join(parts[1:], ""))
		return app.FetchArticles()
	case "exclude-resolved":
		app.SetFilter(fieldExcludeResolved, !app.filters.ExcludeResolved)
		return app.FetchArticles()
	case "days":
		if len(parts) < 2 {
			return fmt.Errorf("missing day count")
		}
		days, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad day count %q", parts[1])
		}
		app.ApplyPeriodPreset(days)
		return app.FetchArticles()
	case "clear":
		app.ClearFilters()
		return app.FetchArticles()
	case "card":
		if len(parts) < 2 {
			return fmt.Errorf("missing risk level")
		}
		app.CardClick(parts[1])
		return app.FetchArticles()
	case "A", "analyze":
		return app.Analyze()
	case "S", "status":
		if len(parts) < 2 {
			return fmt.Errorf("missing status")
		}
		selected := app.Selected()
		if selected == nil {
			return fmt.Errorf("no article selected")
		}
		return reconcile(app, app.ChangeStatus(selected.ID, parts[1]))
	case "grade":
		if len(parts) < 2 {
			return fmt.Errorf("missing risk level")
		}
		selected := app.Selected()
		if selected == nil {
			return fmt.Errorf("no article selected")
		}
		return reconcile(app, app.ChangeRiskLevel(selected.ID, parts[1]))
	case "a", "mine":
		selected := app.Selected()
		if selected == nil {
			return fmt.Errorf("no article selected")
		}
		mut, err := app.BeginAssignToMe(selected.ID)
		if err != nil {
			return err
		}
		return reconcile(app, app.runMutation(mut))
	case "assign":
		if len(parts) < 2 {
			return fmt.Errorf("missing user id")
		}
		selected := app.Selected()
		if selected == nil {
			return fmt.Errorf("no article selected")
		}
		userID, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad user id %q", parts[1])
		}
		if err := app.LoadUsers(); err != nil {
			return err
		}
		assignee, ok := app.userByID(userID)
		if !ok {
			return fmt.Errorf("unknown user %d", userID)
		}
		return reconcile(app, app.Assign(selected.ID, assignee))
	case "users":
		if err := app.LoadUsers(); err != nil {
			return err
		}
		for _, user := range app.users {
			fmt.Fprintf(out, "  %d  %s <%s>\n", user.ID, user.Name, user.Email)
		}
	case "x", "toggle":
		if len(parts) < 2 {
			return fmt.Errorf("missing item index")
		}
		selected := app.Selected()
		if selected == nil {
			return fmt.Errorf("no article selected")
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad item index %q", parts[1])
		}
		mut, err := app.BeginActionItemToggle(selected.ID, index-1)
		if err != nil {
			return err
		}
		return reconcile(app, app.runMutation(mut))
	case "comment":
		if len(parts) < 2 {
			return fmt.Errorf("missing comment text")
		}
		return app.AddComment(strings.Join(parts[1:], " "))
	case "uncomment":
		if len(parts) < 2 {
			return fmt.Errorf("missing comment id")
		}
		commentID, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad comment id %q", parts[1])
		}
		return app.DeleteComment(commentID)
	case "critical":
		critical, err := app.api.CriticalArticles()
		if err != nil {
			return err
		}
		for _, article := range critical {
			fmt.Fprintf(out, "  %-5s %3d  %s\n", strings.ToUpper(article.RiskLevel), article.RiskScore, article.Title)
		}
	case "stats":
		stats, err := app.api.Stats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  total: %d  today: %d  needs response: %d\n",
			stats.TotalArticles, stats.TodayArticles, stats.NeedsResponseCount)
	case "show":
		if len(parts) < 2 {
			return fmt.Errorf("missing article id")
		}
		articleID, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("bad article id %q", parts[1])
		}
		article, err := app.api.Article(articleID)
		if err != nil {
			return err
		}
		app.selected = &article
		app.comments = nil
		app.analysis = AnalysisIdle
	case "alerts":
		for _, alert := range app.alerts {
			read := " "
			if alert.Read {
				read = "x"
			}
			fmt.Fprintf(out, "  [%s] %s %s\n", read, alert.RiskLevel, alert.Title)
		}
	case "collect":
		return app.CollectNow()
	case "notify":
		if len(parts) < 2 {
			return fmt.Errorf("missing channel (slack/telegram)")
		}
		return app.TestNotification(parts[1])
	case "o", "open":
		return app.OpenSelected()
	case "y", "copy":
		return app.CopySelectedURL()
	case "logout":
		app.Logout()
	case "?", "help":
		fmt.Fprintln(out, helpText())
	}
	return nil
}

func render(app *App) string {
	lines := []string{}
	lines = append(lines, headerLine(app))
	switch app.listState {
	case ListError:
		lines = append(lines, "  "+app.listErr)
	default:
		if len(app.articles) == 0 {
			lines = append(lines, "  No articles match the current filters.")
		}
		for i, article := range app.articles {
			prefix := " "
			if i == app.cursor {
				prefix = ">"
			}
			lines = append(lines, fmt.Sprintf("%s %-5s %3d  %s", prefix, strings.ToUpper(article.RiskLevel), article.RiskScore, truncate(article.Title, 56)))
		}
		lines = append(lines, fmt.Sprintf("  page %d/%d", app.page, app.totalPages))
	}
	if selected := app.Selected(); selected != nil {
		lines = append(lines, "", "Selected: "+selected.Title)
		lines = append(lines, "  Status: "+selected.Status+"  Assignee: "+selected.AssigneeName())
		lines = append(lines, "  Summary: "+truncate(selected.SummaryText(), 70))
		for i, item := range selected.ActionItems {
			check := "[ ]"
			if item.Checked {
				check = "[x]"
			}
			lines = append(lines, fmt.Sprintf("  %d. %s %s", i+1, check, truncate(item.Text, 60)))
		}
		for _, comment := range app.comments {
			lines = append(lines, "  # "+comment.AuthorName()+": "+truncate(comment.Content, 60))
		}
	}
	if app.status != "" {
		lines = append(lines, "", app.status)
	}
	return strings.Join(lines, "\n")
}

func headerLine(app *App) string {
	dash := app.dashboard
	if dash == nil {
		return "Risk Monitor"
	}
	return fmt.Sprintf("Risk Monitor  red:%d amber:%d green:%d  resolved:%d",
		dash.RiskLevels.Red, dash.RiskLevels.Amber, dash.RiskLevels.Green, dash.Status.Resolved)
}

func helpText() string {
	return strings.Join([]string{
		"Commands:",
		"  j/k: move cursor",
		"  enter [n]: select article",
		"  close: clear selection",
		"  r: refresh list and stats",
		"  n/p, page <n>: pagination",
		"  keyword/category/status-filter/risk/from/to <v>: filters",
		"  exclude-resolved: toggle",
		"  days <n>: period preset",
		"  clear: reset filters",
		"  card <red|amber|green>: summary card filter",
		"  analyze: run AI analysis",
		"  status <v>: change status",
		"  grade <red|amber|green>: override risk level",
		"  mine / assign <user-id>: assignment",
		"  users: list team members",
		"  toggle <n>: action item checkbox",
		"  critical: list critical articles",
		"  stats: collection totals",
		"  show <id>: open article by id",
		"  comment <text> / uncomment <id>: comments",
		"  alerts: show alerts",
		"  collect: trigger collection",
		"  notify <slack|telegram>: test notification",
		"  o: open url, y: copy url",
		"  logout, q: quit",
	}, "\n")
}
