// Package tui provides the Bubble Tea shot entry interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/shotlog/internal/advice"
	"github.com/verte-zerg/shotlog/internal/grind"
	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/stats"
)

// ShotStore is the persistence the entry UI needs.
type ShotStore interface {
	InsertShot(ctx context.Context, shot model.Shot) (model.Shot, error)
	ListShots(ctx context.Context, filter model.ShotFilter) ([]model.Shot, error)
}

type stage int

const (
	stageForm stage = iota
	stageTaste
	stageResult
)

const (
	fieldDose = iota
	fieldYield
	fieldTime
	fieldGrind
	fieldNotes
)

// Model implements the Bubble Tea shot entry UI.
type Model struct {
	store  ShotStore
	engine *grind.Engine
	bean   model.Bean
	log    zerolog.Logger

	width  int
	height int

	stage   stage
	inputs  []textinput.Model
	focus   int
	formErr string

	pending  model.Shot
	taste    model.TastePrimary
	strength model.TasteSecondary

	saved     model.Shot
	rec       grind.Recommendation
	hasRec    bool
	tips      []advice.ShotRecommendation
	saveErr   string
	shots     []model.Shot
	analytics stats.BeanAnalytics
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F3E9DC")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9C8B7E"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B5835A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5534B"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A6A5E"))
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#B5835A")).
			Padding(1, 2)
)

// NewModel constructs the entry UI for a bean. The grind field starts at the
// bean's last setting.
func NewModel(st ShotStore, engine *grind.Engine, bean model.Bean, dose float64, log zerolog.Logger) *Model {
	m := &Model{
		store:  st,
		engine: engine,
		bean:   bean,
		log:    log,
	}
	m.initInputs(dose)
	m.loadHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.stage {
		case stageTaste:
			return m.updateTaste(msg)
		case stageResult:
			return m.updateResult(msg)
		default:
			return m.updateForm(msg)
		}
	}
	if m.stage == stageForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.stage {
	case stageTaste:
		content = m.renderTaste()
	case stageResult:
		content = m.renderResult()
	default:
		content = m.renderForm()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) initInputs(dose float64) {
	prompts := []string{"Dose (g):  ", "Yield (g): ", "Time (s):  ", "Grind:     ", "Notes:     "}
	m.inputs = make([]textinput.Model, len(prompts))
	for i, p := range prompts {
		in := textinput.New()
		in.Prompt = p
		in.Cursor.SetMode(cursor.CursorBlink)
		in.Width = 24
		m.inputs[i] = in
	}
	m.inputs[fieldYield].Placeholder = "36"
	m.inputs[fieldTime].Placeholder = "27"
	if dose > 0 {
		m.inputs[fieldDose].SetValue(strconv.FormatFloat(dose, 'f', -1, 64))
	}
	if m.bean.LastGrinderSetting != nil {
		m.inputs[fieldGrind].SetValue(*m.bean.LastGrinderSetting)
	}
	m.setFocus(fieldYield)
}

func (m *Model) setFocus(idx int) tea.Cmd {
	count := len(m.inputs)
	m.focus = (idx%count + count) % count
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = activeStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = labelStyle
		}
	}
	return cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFocus(m.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFocus(m.focus - 1)
	case tea.KeyEnter:
		if m.focus < fieldNotes {
			return m, m.setFocus(m.focus + 1)
		}
		return m.submitForm()
	case tea.KeyCtrlS:
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	shot, err := m.parseForm()
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.formErr = ""
	m.pending = shot
	m.taste = model.TasteNone
	m.strength = model.StrengthNone
	m.stage = stageTaste
	return m, nil
}

func (m *Model) parseForm() (model.Shot, error) {
	value := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }
	dose, err := strconv.ParseFloat(value(fieldDose), 64)
	if err != nil {
		return model.Shot{}, fmt.Errorf("dose must be a number")
	}
	yield, err := strconv.ParseFloat(value(fieldYield), 64)
	if err != nil {
		return model.Shot{}, fmt.Errorf("yield must be a number")
	}
	seconds, err := strconv.Atoi(value(fieldTime))
	if err != nil {
		return model.Shot{}, fmt.Errorf("time must be whole seconds")
	}
	shot := model.Shot{
		BeanID:                m.bean.ID,
		CoffeeWeightIn:        dose,
		CoffeeWeightOut:       yield,
		ExtractionTimeSeconds: seconds,
		GrinderSetting:        value(fieldGrind),
		Notes:                 value(fieldNotes),
	}
	if shot.GrinderSetting == "" {
		return model.Shot{}, fmt.Errorf("grind setting is required")
	}
	if err := shot.Validate(); err != nil {
		return model.Shot{}, err
	}
	return shot, nil
}

func (m *Model) updateTaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stage = stageForm
		return m, m.setFocus(m.focus)
	case tea.KeyEnter:
		m.saveShot()
		m.stage = stageResult
		return m, nil
	case tea.KeyRunes:
		key := string(msg.Runes)
		if t, err := model.ParseTastePrimary(key); err == nil {
			m.taste = t
			return m, nil
		}
		if key == "n" {
			m.strength = model.StrengthNone
			return m, nil
		}
		if s, err := model.ParseTasteSecondary(key); err == nil {
			m.strength = s
		}
	}
	return m, nil
}

func (m *Model) saveShot() {
	m.saveErr = ""
	saved, err := m.store.InsertShot(context.Background(), m.pending)
	if err != nil {
		m.log.Error().Err(err).Str("bean", m.bean.ID).Msg("failed to save shot")
		m.saveErr = fmt.Sprintf("failed to save shot: %v", err)
		saved = m.pending
	} else {
		m.shots = append(m.shots, saved)
		m.analytics = stats.ComputeBeanAnalytics(m.shots)
	}
	m.saved = saved
	m.rec, m.hasRec = m.engine.ForShot(saved, m.taste, m.strength)
	m.tips = advice.ForShot(saved)
	m.log.Debug().
		Str("shot", saved.ID).
		Bool("recommendation", m.hasRec).
		Int("tips", len(m.tips)).
		Msg("shot recorded")
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m, m.nextShot()
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m, tea.Quit
		case "n":
			return m, m.nextShot()
		}
	}
	return m, nil
}

// nextShot clears the per-shot fields and carries the suggested grind forward.
func (m *Model) nextShot() tea.Cmd {
	grindValue := m.saved.GrinderSetting
	if m.hasRec {
		grindValue = m.rec.SuggestedGrindSetting
	}
	m.inputs[fieldYield].SetValue("")
	m.inputs[fieldTime].SetValue("")
	m.inputs[fieldNotes].SetValue("")
	m.inputs[fieldGrind].SetValue(grindValue)
	m.stage = stageForm
	m.hasRec = false
	m.tips = nil
	return m.setFocus(fieldYield)
}

func (m *Model) loadHistory() {
	shots, err := m.store.ListShots(context.Background(), model.ShotFilter{BeanID: m.bean.ID})
	if err != nil {
		m.log.Error().Err(err).Str("bean", m.bean.ID).Msg("failed to load shot history")
		return
	}
	m.shots = shots
	m.analytics = stats.ComputeBeanAnalytics(shots)
}

func (m *Model) renderForm() string {
	lines := []string{titleStyle.Render("New shot: " + m.bean.Name), ""}
	for _, in := range m.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "", labelStyle.Render("tab: next field  enter on notes / ctrl+s: continue  esc: quit"))
	if m.formErr != "" {
		lines = append(lines, errorStyle.Render(m.formErr))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTaste() string {
	s := m.pending
	lines := []string{
		titleStyle.Render("How did it taste?"),
		labelStyle.Render(fmt.Sprintf("%.1fg -> %.1fg in %ds at %s", s.CoffeeWeightIn, s.CoffeeWeightOut, s.ExtractionTimeSeconds, s.GrinderSetting)),
		"",
		choiceLine([]string{"[s]our", "[p]erfect", "[b]itter"}, int(m.taste)-1),
		choiceLine([]string{"[w]eak", "[n]ormal", "s[t]rong"}, strengthIndex(m.strength)),
		"",
		labelStyle.Render("enter: save (taste optional)  esc: back"),
	}
	return strings.Join(lines, "\n")
}

func choiceLine(options []string, selected int) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if i == selected {
			parts[i] = activeStyle.Render("> " + o)
		} else {
			parts[i] = labelStyle.Render("  " + o)
		}
	}
	return strings.Join(parts, "  ")
}

func strengthIndex(s model.TasteSecondary) int {
	switch s {
	case model.StrengthWeak:
		return 0
	case model.StrengthStrong:
		return 2
	default:
		return 1
	}
}

func (m *Model) renderResult() string {
	s := m.saved
	lines := []string{
		titleStyle.Render("Shot saved"),
		fmt.Sprintf("Ratio 1:%.2f  Time %ds", s.BrewRatio(), s.ExtractionTimeSeconds),
		"",
	}
	if m.saveErr != "" {
		lines[0] = errorStyle.Render(m.saveErr)
	}
	if m.hasRec {
		r := m.rec
		lines = append(lines,
			activeStyle.Render(fmt.Sprintf("Grind %s: %s -> %s (%s confidence)", r.Direction, r.CurrentGrindSetting, r.SuggestedGrindSetting, r.Confidence)),
			r.Explanation,
		)
	} else {
		lines = append(lines, "No grind change needed.")
	}
	for _, tip := range m.tips {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("[%s] %s", tip.Priority, tip.Message())))
	}
	lines = append(lines, "", labelStyle.Render("enter/n: next shot  q: quit"))
	width := 60
	if m.width > 0 && m.width-8 < width {
		width = max(20, m.width-8)
	}
	return dialogStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	segments := []string{m.bean.Name}
	if n := len(m.shots); n > 0 {
		last := m.shots[n-1]
		segments = append(segments, fmt.Sprintf("Last 1:%.2f · %ds", last.BrewRatio(), last.ExtractionTimeSeconds))
		a := m.analytics
		segments = append(segments, fmt.Sprintf("All-time 1:%.2f · %.1fs · %.0f%% optimal (%d shots)",
			a.AvgBrewRatio, a.AvgExtractionTime, a.OptimalExtractionPercentage, a.TotalShots))
	} else {
		segments = append(segments, "No shots yet")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
