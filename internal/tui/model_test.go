package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/ports"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
)

type fakePlayer struct {
	status  sequence.Status
	elapsed time.Duration
	values  map[string]effect.Props
	ticks   int
	calls   []string
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{values: map[string]effect.Props{"card": {"x": 0}}}
}

func (p *fakePlayer) Name() string            { return "intro" }
func (p *fakePlayer) Status() sequence.Status { return p.status }
func (p *fakePlayer) Start() {
	p.calls = append(p.calls, "start")
	p.status = sequence.StatusRunning
}
func (p *fakePlayer) Pause() {
	p.calls = append(p.calls, "pause")
	p.status = sequence.StatusPaused
}
func (p *fakePlayer) Resume() {
	p.calls = append(p.calls, "resume")
	p.status = sequence.StatusRunning
}
func (p *fakePlayer) Reset() {
	p.calls = append(p.calls, "reset")
	p.status = sequence.StatusIdle
	p.elapsed = 0
}
func (p *fakePlayer) Tick(time.Time) {
	p.ticks++
	p.elapsed += 10 * time.Millisecond
	p.values["card"] = effect.Props{"x": float64(p.ticks) * 10}
}
func (p *fakePlayer) Elapsed() time.Duration            { return p.elapsed }
func (p *fakePlayer) Values(target string) effect.Props { return p.values[target] }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitStartsPlayback(t *testing.T) {
	t.Parallel()

	player := newFakePlayer()
	m := NewModel("", player, []string{"card"}, time.Second, 0)
	cmd := m.Init()
	require.NotNil(t, cmd)
	require.Equal(t, []string{"start"}, player.calls)
	require.Equal(t, 16*time.Millisecond, m.interval)
}

func TestFrameTicksPlayerAndTracksRanges(t *testing.T) {
	t.Parallel()

	player := newFakePlayer()
	m := NewModel("demo", player, []string{"card"}, time.Second, 10*time.Millisecond)

	var model tea.Model = m
	var cmd tea.Cmd
	for range 3 {
		model, cmd = model.Update(FrameMsg(time.Now()))
		require.NotNil(t, cmd)
	}
	updated := model.(Model)
	require.Equal(t, 3, player.ticks)
	require.Equal(t, span{lo: 10, hi: 30}, updated.ranges["card.x"])
}

func TestSpaceTogglesPause(t *testing.T) {
	t.Parallel()

	player := newFakePlayer()
	m := NewModel("", player, nil, 0, 0)
	player.Start()

	model, _ := m.Update(key(" "))
	require.Equal(t, sequence.StatusPaused, player.Status())

	model, _ = model.Update(key(" "))
	require.Equal(t, sequence.StatusRunning, player.Status())

	player.status = sequence.StatusCompleted
	_, _ = model.Update(key(" "))
	require.Equal(t, []string{"start", "pause", "resume", "start"}, player.calls)
}

func TestResetRestartsAndClearsCounters(t *testing.T) {
	t.Parallel()

	player := newFakePlayer()
	m := NewModel("", player, nil, 0, 0)
	model, _ := m.Update(EventMsg{Event: ports.Event{Type: ports.EventStepCompleted}})
	require.Equal(t, 1, model.(Model).completed)

	model, _ = model.Update(key("r"))
	updated := model.(Model)
	require.Equal(t, 0, updated.completed)
	require.Equal(t, 0, updated.log.Len())
	require.Equal(t, []string{"reset", "start"}, player.calls)
}

func TestQuitKeys(t *testing.T) {
	t.Parallel()

	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := NewModel("", newFakePlayer(), nil, 0, 0)
		model, cmd := m.Update(k)
		require.NotNil(t, cmd)
		require.True(t, model.(Model).Quitting())

		_, cmd = model.Update(FrameMsg(time.Now()))
		require.Nil(t, cmd)
	}
}

func TestCollectedEventsAreRecordedOnNextFrame(t *testing.T) {
	t.Parallel()

	player := newFakePlayer()
	m := NewModel("", player, nil, 0, 0)
	handler := m.Collect()
	require.NoError(t, handler(ports.Event{Type: ports.EventStepSkipped}))
	require.NoError(t, handler(ports.Event{
		Type:    ports.EventStepFailed,
		Payload: map[string]any{"step": "intro/1", "error": errors.New("boom")},
	}))

	model, _ := m.Update(FrameMsg(time.Now()))
	updated := model.(Model)
	require.Equal(t, 1, updated.skipped)
	require.Equal(t, 1, updated.failed)
	require.Equal(t, []string{"boom"}, updated.errors)
	require.Empty(t, *updated.inbox)
}

func TestViewRendersSections(t *testing.T) {
	t.Parallel()

	player := newFakePlayer()
	m := NewModel("", player, []string{"card", "ghost"}, time.Second, 0)
	model, _ := m.Update(FrameMsg(time.Now()))
	model, _ = model.Update(EventMsg{Event: ports.Event{
		Type:    ports.EventStepStarted,
		Payload: map[string]any{"step": "intro/0", "target": "card"},
	}})

	view := model.View()
	for _, want := range []string{"intro", "Timeline", "Targets", "card", "x", "(no values yet)", "step.started intro/0 [card]", "Status: running", "q quit"} {
		require.True(t, strings.Contains(view, want), "view missing %q:\n%s", want, view)
	}
}

func TestStatusBadge(t *testing.T) {
	t.Parallel()

	cases := map[sequence.Status]string{
		sequence.StatusCompleted: "✓",
		sequence.StatusRunning:   "▶",
		sequence.StatusPaused:    "⏸",
		sequence.StatusFailed:    "✗",
		sequence.StatusCancelled: "⊘",
		sequence.StatusIdle:      "…",
	}
	for status, glyph := range cases {
		require.Contains(t, StatusBadge(status), glyph)
		require.Contains(t, StatusBadge(status), status.String())
	}
}
