// Package terminal renders frames into a terminal with tcell, two pixel
// rows per character cell.
package terminal

import (
	"fmt"
	"log/slog"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/video"
)

const (
	// the game area is one cell per pixel column and per two pixel rows,
	// below a title line
	gameWidth  = video.Width
	gameHeight = video.Height / 2
	gameTop    = 1

	minTermWidth  = gameWidth
	minTermHeight = gameTop + gameHeight + 1

	logPaneX       = gameWidth + 2
	logBufferLines = 200

	upperHalfBlock = '▀'
)

// Backend draws frames and a log pane into a terminal.
type Backend struct {
	screen    tcell.Screen
	config    backend.Config
	logBuffer *LogBuffer
	logLevel  *slog.LevelVar
	paused    bool
}

// New creates a backend drawing to the process terminal.
func New() *Backend {
	return NewWithScreen(nil)
}

// NewWithScreen creates a backend drawing to the given screen. A nil screen
// means the process terminal, created in Init.
func NewWithScreen(screen tcell.Screen) *Backend {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	return &Backend{
		screen:    screen,
		logBuffer: NewLogBuffer(logBufferLines),
		logLevel:  level,
	}
}

// Logger returns a logger whose output is shown in the log pane. Writing
// to stderr while tcell owns the terminal would garble the screen.
func (t *Backend) Logger() *slog.Logger {
	return slog.New(NewLogHandler(t.logBuffer, t.logLevel))
}

// SetLogLevel changes the minimum level shown in the log pane.
func (t *Backend) SetLogLevel(level slog.Level) {
	t.logLevel.Set(level)
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()
	return nil
}

// Update draws the frame and collects key presses: q or Esc quit, p pauses.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.Event, error) {
	var events []backend.Event

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if e, ok := keyEvent(ev); ok {
				if e == backend.EventPauseToggle {
					t.paused = !t.paused
				}
				events = append(events, e)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func keyEvent(ev *tcell.EventKey) (backend.Event, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return backend.EventQuit, true
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'q':
			return backend.EventQuit, true
		case 'p':
			return backend.EventPauseToggle, true
		}
	}
	return 0, false
}

func (t *Backend) render(frame *video.FrameBuffer) {
	t.screen.Clear()

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	title := " " + t.config.Title + " "
	if t.paused {
		title += "[PAUSED] "
	}
	t.drawText(1, 0, gameWidth-1, title, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	t.drawFrame(frame)
	t.drawText(0, termHeight-1, termWidth, " q/Esc quit  p pause ", tcell.StyleDefault)

	if termWidth > logPaneX {
		t.drawLogs(termWidth, termHeight)
	}
}

func (t *Backend) drawFrame(frame *video.FrameBuffer) {
	for row := 0; row < gameHeight; row++ {
		for x := 0; x < gameWidth; x++ {
			top := frame.GetPixel(x, row*2)
			bottom := frame.GetPixel(x, row*2+1)
			style := tcell.StyleDefault.Foreground(shadeColor(top)).Background(shadeColor(bottom))
			t.screen.SetContent(x, gameTop+row, upperHalfBlock, nil, style)
		}
	}
}

func (t *Backend) drawLogs(termWidth, termHeight int) {
	border := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(gameWidth+1, y, '│', nil, border)
	}

	t.drawText(logPaneX, 0, termWidth-logPaneX, " Logs ", tcell.StyleDefault.Foreground(tcell.ColorYellow))
	for i, entry := range t.logBuffer.Recent(termHeight - 2) {
		t.drawText(logPaneX, 1+i, termWidth-logPaneX, entry.String(), logStyle(entry.Level))
	}
}

// drawText writes s at (x, y), clipped to width cells.
func (t *Backend) drawText(x, y, width int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		if i >= width {
			return
		}
		t.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func shadeColor(shade uint8) tcell.Color {
	return tcell.NewHexColor(int32(video.ShadeColor(shade) & 0xFFFFFF))
}

func logStyle(level slog.Level) tcell.Style {
	switch {
	case level >= slog.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case level >= slog.LevelWarn:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case level < slog.LevelInfo:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
	return tcell.StyleDefault
}
