package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/shotlog/internal/grind"
	"github.com/verte-zerg/shotlog/internal/model"
)

type memStore struct {
	shots   []model.Shot
	failing bool
}

func (s *memStore) InsertShot(_ context.Context, shot model.Shot) (model.Shot, error) {
	if s.failing {
		return model.Shot{}, errors.New("disk full")
	}
	shot.ID = "shot"
	s.shots = append(s.shots, shot)
	return shot, nil
}

func (s *memStore) ListShots(_ context.Context, filter model.ShotFilter) ([]model.Shot, error) {
	var out []model.Shot
	for _, shot := range s.shots {
		if filter.BeanID == "" || shot.BeanID == filter.BeanID {
			out = append(out, shot)
		}
	}
	return out, nil
}

func newTestModel(st ShotStore) *Model {
	setting := "5.5"
	bean := model.Bean{ID: "bean", Name: "Kenya AA", LastGrinderSetting: &setting}
	return NewModel(st, grind.New(model.DefaultBrewConfig()), bean, 18, zerolog.Nop())
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(m *Model, t tea.KeyType) {
	m.Update(tea.KeyMsg{Type: t})
}

func TestEntryFlowRecommendsGrind(t *testing.T) {
	st := &memStore{}
	m := newTestModel(st)
	assert.Equal(t, "18", m.inputs[fieldDose].Value())
	assert.Equal(t, "5.5", m.inputs[fieldGrind].Value())
	assert.Equal(t, fieldYield, m.focus)

	typeText(m, "36")
	press(m, tea.KeyTab)
	typeText(m, "18")
	press(m, tea.KeyCtrlS)
	require.Equal(t, stageTaste, m.stage, m.formErr)

	typeText(m, "s")
	typeText(m, "t")
	assert.Equal(t, model.TasteSour, m.taste)
	assert.Equal(t, model.StrengthStrong, m.strength)

	press(m, tea.KeyEnter)
	require.Equal(t, stageResult, m.stage)
	require.Len(t, st.shots, 1)
	assert.Equal(t, 18, st.shots[0].ExtractionTimeSeconds)
	require.True(t, m.hasRec)
	assert.Equal(t, grind.Finer, m.rec.Direction)
	assert.Equal(t, 4, m.rec.Steps)
	assert.Equal(t, "3.5", m.rec.SuggestedGrindSetting)
	require.NotEmpty(t, m.tips)
	assert.Equal(t, 1, m.analytics.TotalShots)

	typeText(m, "n")
	assert.Equal(t, stageForm, m.stage)
	assert.Equal(t, "3.5", m.inputs[fieldGrind].Value())
	assert.Empty(t, m.inputs[fieldYield].Value())
	assert.Equal(t, "18", m.inputs[fieldDose].Value())
}

func TestEntryFormValidation(t *testing.T) {
	m := newTestModel(&memStore{})
	typeText(m, "abc")
	press(m, tea.KeyCtrlS)
	assert.Equal(t, stageForm, m.stage)
	assert.Equal(t, "yield must be a number", m.formErr)
}

func TestEntryPerfectShotNeedsNoChange(t *testing.T) {
	m := newTestModel(&memStore{})
	typeText(m, "36")
	press(m, tea.KeyTab)
	typeText(m, "27")
	press(m, tea.KeyCtrlS)
	typeText(m, "p")
	press(m, tea.KeyEnter)
	assert.False(t, m.hasRec)
	assert.Empty(t, m.tips)
	assert.Contains(t, m.View(), "No grind change needed.")
}

func TestEntrySaveFailureStillRecommends(t *testing.T) {
	m := newTestModel(&memStore{failing: true})
	typeText(m, "36")
	press(m, tea.KeyTab)
	typeText(m, "40")
	press(m, tea.KeyCtrlS)
	press(m, tea.KeyEnter)
	assert.Contains(t, m.saveErr, "disk full")
	assert.True(t, m.hasRec)
	assert.Equal(t, grind.Coarser, m.rec.Direction)
	assert.Equal(t, 0, m.analytics.TotalShots)
}

func TestTasteEscReturnsToForm(t *testing.T) {
	m := newTestModel(&memStore{})
	typeText(m, "36")
	press(m, tea.KeyTab)
	typeText(m, "27")
	press(m, tea.KeyCtrlS)
	press(m, tea.KeyEsc)
	assert.Equal(t, stageForm, m.stage)
}
