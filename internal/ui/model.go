package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wavescope/internal/player"
	"github.com/olivier-w/wavescope/internal/track"
	"github.com/olivier-w/wavescope/internal/util"
	"github.com/olivier-w/wavescope/internal/wave"
)

// Model is the Bubbletea model for the waveform viewer screen.
type Model struct {
	track *track.Track
	cache *wave.SummaryCache
	load  <-chan track.LoadStatus

	width  int
	height int

	t0     float64 // target left edge in seconds
	pps    float64 // columns per second
	scroll scrollSpring
	follow bool

	loading    bool
	loadFrames int64
	loadTotal  int64
	loadBar    progress.Model

	player  *player.Player
	playing bool
	volume  float64

	exporting  bool
	statusMsg  string
	statusTime time.Time

	quitting bool
}

// New creates a viewer for a track whose decode may still be in flight.
// load carries decode progress and must be the channel returned by track.Open.
func New(tr *track.Track, load <-chan track.LoadStatus) Model {
	cache := wave.NewSummaryCache(tr.Clip)
	tr.Clip.SetOnChange(cache.MarkChanged)

	return Model{
		track:     tr,
		cache:     cache,
		load:      load,
		pps:       100,
		scroll:    newScrollSpring(),
		follow:    true,
		loading:   load != nil,
		loadTotal: -1,
		loadBar:   progress.New(progress.WithScaledGradient("#FF8C00", "#FF5F1F")),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), tea.SetWindowTitle(windowTitle(m.track.Meta.Title))}
	if m.load != nil {
		cmds = append(cmds, waitForLoad(m.load))
	}
	return tea.Batch(cmds...)
}

func checkDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadStatusMsg:
		m.loadFrames = msg.Frames
		m.loadTotal = msg.TotalFrames
		if msg.Done {
			m.loading = false
			if msg.Err != nil {
				m.setStatus(fmt.Sprintf("Load failed: %v", msg.Err))
			}
			return m, nil
		}
		return m, waitForLoad(m.load)

	case tickMsg:
		if m.follow {
			m.t0 = m.followOrigin()
		}
		m.scroll.step(m.t0)
		if m.player != nil {
			m.volume = m.player.Volume()
		}
		if m.statusMsg != "" && time.Since(m.statusTime) > 5*time.Second {
			m.statusMsg = ""
		}
		return m, tickCmd()

	case playbackEndedMsg:
		m.playing = false
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.err))
		} else {
			m.setStatus(fmt.Sprintf("Exported to %s", msg.path))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.loadBar.Width = m.viewCols()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		if m.player != nil {
			m.player.Close()
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case "left", "h":
		m.scrollByFraction(-0.2)
	case "right", "l":
		m.scrollByFraction(0.2)
	case "pgup", "shift+left", "H":
		m.scrollByFraction(-1)
	case "pgdown", "shift+right", "L":
		m.scrollByFraction(1)
	case "home", "g":
		m.follow = false
		m.t0 = 0
	case "end", "G":
		m.follow = false
		m.t0 = m.maxOrigin()
	case "+", "=":
		m.zoomBy(2)
	case "-", "_":
		m.zoomBy(0.5)
	case "0":
		m.zoomFit()
	case "f":
		m.follow = !m.follow
	case "[":
		m.track.Clip.SetTrimLeft(m.track.Clip.TrimLeft() + m.scroll.pos)
		m.t0 = 0
		m.scroll.snap(0)
	case "]":
		m.track.Clip.SetTrimLeft(0)
	case ",":
		if m.player != nil {
			m.player.Seek(-5 * time.Second)
		}
	case ".":
		if m.player != nil {
			m.player.Seek(5 * time.Second)
		}
	case " ":
		return m.togglePlayback()
	case "s":
		return m.startExport()
	case "up", "k":
		if m.player != nil {
			m.player.AdjustVolume(0.05)
			m.volume = m.player.Volume()
		}
	case "down", "j":
		if m.player != nil {
			m.player.AdjustVolume(-0.05)
			m.volume = m.player.Volume()
		}
	}
	return m, nil
}

func (m *Model) togglePlayback() (tea.Model, tea.Cmd) {
	if m.player == nil {
		p, err := player.New(m.track.Clip)
		if err != nil {
			m.setStatus(fmt.Sprintf("Playback failed: %v", err))
			return *m, nil
		}
		m.player = p
		m.playing = true
		m.volume = p.Volume()
		return *m, checkDone(p)
	}

	select {
	case <-m.player.Done():
		m.player.Restart()
		m.playing = true
		return *m, checkDone(m.player)
	default:
	}

	m.player.TogglePause()
	m.playing = !m.player.Paused()
	return *m, nil
}

func (m *Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporting {
		return *m, nil
	}
	m.exporting = true
	dst := exportPath(m.track.Path)
	c := m.track.Clip
	return *m, func() tea.Msg {
		return exportDoneMsg{path: dst, err: track.ExportWAV(dst, c)}
	}
}

func exportPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + "-export.wav"
}

// viewCols is the waveform width in columns.
func (m Model) viewCols() int {
	cols := m.width - 4
	if cols < 16 {
		cols = 16
	}
	return cols
}

// visibleSpan is the viewport length in seconds.
func (m Model) visibleSpan() float64 {
	return float64(m.viewCols()) / m.pps
}

// trimmedDuration is the clip duration past the trim point, in seconds.
func (m Model) trimmedDuration() float64 {
	d := m.track.Clip.Duration().Seconds() - m.track.Clip.TrimLeft()
	if d < 0 {
		d = 0
	}
	return d
}

// maxOrigin is the largest useful left edge: the end of the clip minus
// one viewport.
func (m Model) maxOrigin() float64 {
	max := m.trimmedDuration() - m.visibleSpan()
	if max < 0 {
		max = 0
	}
	return max
}

// followOrigin keeps the live end of the clip in view while loading.
func (m Model) followOrigin() float64 {
	return m.maxOrigin()
}

func (m *Model) scrollByFraction(frac float64) {
	m.follow = false
	m.t0 += frac * m.visibleSpan()
	m.clampOrigin()
}

func (m *Model) clampOrigin() {
	if max := m.maxOrigin(); m.t0 > max {
		m.t0 = max
	}
	if m.t0 < 0 {
		m.t0 = 0
	}
}

// zoomBy scales the zoom, keeping the viewport center fixed.
func (m *Model) zoomBy(factor float64) {
	m.follow = false
	center := m.scroll.pos + m.visibleSpan()/2
	m.pps *= factor
	if m.pps < 0.01 {
		m.pps = 0.01
	}
	if m.pps > float64(m.track.Clip.Rate()) {
		m.pps = float64(m.track.Clip.Rate())
	}
	m.t0 = center - m.visibleSpan()/2
	m.clampOrigin()
	m.scroll.snap(m.t0)
}

// zoomFit fits the whole clip into the viewport.
func (m *Model) zoomFit() {
	m.follow = false
	if d := m.trimmedDuration(); d > 0 {
		m.pps = float64(m.viewCols()) / d
	}
	m.t0 = 0
	m.scroll.snap(0)
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusTime = time.Now()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cols := m.viewCols()
	t0 := m.scroll.pos
	channels := m.track.Clip.Channels()
	rows := m.channelRows(channels)

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("wavescope") + "\n\n")
	b.WriteString("  " + titleStyle.Render(m.track.Meta.Title))
	if m.track.Meta.Artist != "" {
		b.WriteString("  " + artistStyle.Render(m.track.Meta.Artist))
	}
	b.WriteByte('\n')
	b.WriteString("  " + m.infoLine() + "\n\n")

	for ch := 0; ch < channels; ch++ {
		v, err := m.cache.Display(ch, cols, t0, m.pps)
		if err != nil {
			b.WriteString("  " + statusStyle.Render(fmt.Sprintf("display error: %v", err)) + "\n")
			continue
		}
		band := renderChannel(v, cols, rows, m.playheadCol(t0))
		for _, line := range strings.Split(band, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("  " + renderTimeRuler(t0+m.track.Clip.TrimLeft(), m.pps, cols) + "\n")

	if m.loading {
		b.WriteString("\n  " + m.loadLine() + "\n")
	}
	b.WriteString("\n  " + m.statusLine() + "\n")
	if m.statusMsg != "" {
		b.WriteString("  " + helpStyle.Render(m.statusMsg) + "\n")
	}
	b.WriteString("\n  " + helpStyle.Render(helpText(m.player != nil)) + "\n")
	return b.String()
}

// channelRows divides the vertical budget between channels.
func (m Model) channelRows(channels int) int {
	budget := m.height - 12
	if budget < channels*4 {
		budget = channels * 4
	}
	rows := budget / channels
	if rows > 12 {
		rows = 12
	}
	return rows
}

func (m Model) playheadCol(t0 float64) int {
	if m.player == nil {
		return -1
	}
	t := m.player.Position().Seconds() - m.track.Clip.TrimLeft()
	return int((t - t0) * m.pps)
}

func (m Model) infoLine() string {
	c := m.track.Clip
	s := fmt.Sprintf("%d Hz  %dch  %s", c.Rate(), c.Channels(), util.FormatDuration(c.Duration()))
	if trim := c.TrimLeft(); trim > 0 {
		s += fmt.Sprintf("  trim %s", util.FormatTimecode(trim))
	}
	if p := c.PendingLen(); p > 0 {
		s += fmt.Sprintf("  +%d pending", p)
	}
	return timeStyle.Render(s)
}

func (m Model) loadLine() string {
	if m.loadTotal > 0 {
		ratio := float64(m.loadFrames) / float64(m.loadTotal)
		return m.loadBar.ViewAs(ratio)
	}
	return statusStyle.Render(fmt.Sprintf("loading... %d samples", m.loadFrames))
}

func (m Model) statusLine() string {
	var left string
	switch {
	case m.playing:
		left = "▶  " + util.FormatDuration(m.player.Position()) + "/" + util.FormatDuration(m.player.Duration())
	case m.player != nil:
		left = "❚❚  " + util.FormatDuration(m.player.Position()) + "/" + util.FormatDuration(m.player.Duration())
	default:
		left = "■  stopped"
	}
	if m.follow {
		left += "  follow"
	}
	left += fmt.Sprintf("  %s/col", util.FormatTimecode(1/m.pps))

	if m.player == nil {
		return statusStyle.Render(left)
	}
	right := renderVolumePercent(m.volume)
	gap := m.viewCols() - len(left) - len(right)
	if gap < 2 {
		gap = 2
	}
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func windowTitle(title string) string {
	return title + " — wavescope"
}
