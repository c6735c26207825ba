// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/stats"
	"github.com/verte-zerg/shotlog/internal/store"
)

const (
	tabOverview = iota
	tabGrinder
	tabDistributions
)

const (
	plotHeight = 8
)

const (
	inputSince = iota
	inputLast
	inputDays
	inputWindow
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F3E9DC")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#B5835A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A89888")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#5C4A3D"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A6A5E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5534B"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#5C4A3D"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9C8B7E"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F3E9DC")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8B8A8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	grinderTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Grinder", "Distributions"},
	}
	m.initInputs()
	m.grinderTable = newGrinderTable()
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabGrinder {
				m.grinderTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabGrinder {
				m.grinderTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabGrinder {
			m.grinderTable, cmd = m.grinderTable.Update(msg)
			return m, cmd
		}
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	prompts := []string{"Since (YYYY-MM-DD): ", "Last: ", "Trend days: ", "Curve window: "}
	m.filterInputs = make([]textinput.Model, len(prompts))
	for i, p := range prompts {
		input := textinput.New()
		input.Prompt = p
		input.Cursor.SetMode(cursor.CursorBlink)
		m.filterInputs[i] = input
	}
}

func (m *Model) setInputsFromConfig() {
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.filterInputs[inputSince].SetValue(since)
	m.filterInputs[inputLast].SetValue(last)
	m.filterInputs[inputDays].SetValue(strconv.Itoa(m.cfg.Days))
	m.filterInputs[inputWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.grinderTable.SetWidth(m.width)
	m.grinderTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabGrinder {
		m.grinderTable.Focus()
	} else {
		m.grinderTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	bean := "all beans"
	if m.report.Bean != nil {
		bean = m.report.Bean.Name
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: bean=%s  since=%s  last=%s  days=%d  window=%d",
		bean, since, last, m.report.Config.Days, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return fitLines(strings.Join(lines, "\n"), m.width, height)
	}
	if m.activeTab == tabGrinder {
		if len(m.report.Grinder.Settings) == 0 {
			return fitLines("No shots found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.grinderTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.grinderTable.SetRows(grinderRows(report.Grinder))
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabDistributions].SetContent(renderDistributions(m.report))
}

func renderOverview(r stats.Report, window, width int) string {
	if len(r.Shots) == 0 {
		return "No shots found."
	}
	cards := summaryCards(r)
	var body string
	if width < 80 {
		body = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
		body = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	opts := stats.PlotOptions{Width: stats.PlotWidthFor(width), Height: plotHeight, Color: true}
	if err := stats.RenderCurves(&buf, r.WindowShots, window, opts); err != nil {
		return body + "\n\n" + fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(body+"\n\n"+buf.String(), "\n")
}

func summaryCards(r stats.Report) []string {
	if r.Bean != nil {
		a := r.Analytics
		best := "-"
		if a.BestShot != nil {
			best = fmt.Sprintf("%ds @ %s", a.BestShot.ExtractionTimeSeconds, a.BestShot.GrinderSetting)
		}
		return []string{
			metricCard("Shots", strconv.Itoa(a.TotalShots)),
			metricCard("Avg Ratio", fmt.Sprintf("1:%.2f", a.AvgBrewRatio)),
			metricCard("Avg Time", fmt.Sprintf("%.1fs", a.AvgExtractionTime)),
			metricCard("Optimal", fmt.Sprintf("%.1f%%", a.OptimalExtractionPercentage)),
			metricCard("Consistency", fmt.Sprintf("%.0f/100", a.ConsistencyScore)),
			metricCard("Best Shot", best),
		}
	}
	o := r.Overall
	return []string{
		metricCard("Shots", strconv.Itoa(o.TotalShots)),
		metricCard("Beans", strconv.Itoa(o.UniqueBeans)),
		metricCard("Avg Ratio", fmt.Sprintf("1:%.2f", o.AvgBrewRatio)),
		metricCard("Optimal", fmt.Sprintf("%.1f%%", o.OptimalExtractionPercentage)),
		metricCard("Recent Ratio", fmt.Sprintf("1:%.2f", o.RecentAvgBrewRatio)),
		metricCard("Usual Grind", o.MostUsedGrinderSetting),
	}
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDistributions(r stats.Report) string {
	if len(r.Shots) == 0 {
		return "No shots found."
	}
	var buf bytes.Buffer
	if err := stats.RenderDistributions(&buf, r.BrewRatio, r.Extraction); err != nil {
		return fmt.Sprintf("Failed to render distributions: %v", err)
	}
	t := r.Trends
	fmt.Fprintf(&buf, "\nTrend over %d days: %d shots, ratio %+.2f, time %+.1fs",
		t.DaysAnalyzed, t.TotalShots, t.BrewRatioTrend, t.ExtractionTimeTrend)
	times := make([]float64, len(r.WindowShots))
	for i, s := range r.WindowShots {
		times[i] = float64(s.ExtractionTimeSeconds)
	}
	fmt.Fprintf(&buf, "\nRecent times: %s", stats.Sparkline(times))
	return buf.String()
}

func newGrinderTable() table.Model {
	columns := []table.Column{
		{Title: "Setting", Width: 10},
		{Title: "Shots", Width: 6},
		{Title: "Avg Ratio", Width: 10},
		{Title: "Avg Time", Width: 9},
		{Title: "Optimal", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#5C4A3D")).
		Foreground(lipgloss.Color("#D6C6B6")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F3E9DC")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func grinderRows(g stats.GrinderSettingAnalysis) []table.Row {
	rows := make([]table.Row, 0, len(g.Settings))
	for _, s := range g.Settings {
		setting := s.Setting
		if g.Best != nil && s.Setting == g.Best.Setting {
			setting += " *"
		}
		rows = append(rows, table.Row{
			setting,
			strconv.Itoa(s.ShotCount),
			fmt.Sprintf("1:%.2f", s.AvgBrewRatio),
			fmt.Sprintf("%.1fs", s.AvgExtractionTime),
			fmt.Sprintf("%.1f%%", s.OptimalExtractionPercentage),
		})
	}
	return rows
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx%count + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// parseFilter validates the settings form. The bean scope is kept.
func (m *Model) parseFilter() (model.StatsConfig, error) {
	cfg := m.cfg
	value := func(i int) string { return strings.TrimSpace(m.filterInputs[i].Value()) }

	cfg.Since = nil
	if v := value(inputSince); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	var err error
	if cfg.Last, err = parseNonNegative(value(inputLast), "last value"); err != nil {
		return cfg, err
	}
	if cfg.Days, err = parseNonNegative(value(inputDays), "trend days"); err != nil {
		return cfg, err
	}
	window, err := parseNonNegative(value(inputWindow), "curve window")
	if err != nil {
		return cfg, err
	}
	if window < 1 {
		return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
	}
	cfg.CurveWindow = window
	return cfg, nil
}

func parseNonNegative(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid %s (use 0 or positive integer)", name)
	}
	return parsed, nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
