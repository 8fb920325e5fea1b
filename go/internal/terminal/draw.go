package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/mcdev12/legoraffle/go/internal/raffle/confetti"
	"github.com/mcdev12/legoraffle/go/internal/raffle/view"
)

// Key hints shown in the footer of each view.
const (
	entryHint  = "Enter: new line   Ctrl+D/F2: " + view.StartLabel + "   Esc: quit"
	winnerHint = "a: " + view.AgainLabel + "   n: " + view.NewLabel + "   Esc: quit"
	spinHint   = "Esc: quit"
)

var (
	styleBase    = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.GetColor("#C91A09")).Bold(true)
	styleHeading = tcell.StyleDefault.Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBox     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

func (a *App) draw() {
	a.screen.Clear()
	a.screen.HideCursor()

	m := view.Build(a.state, a.pieces)
	m.Title = a.opts.Title

	switch m.Kind {
	case view.KindShuffling:
		a.drawShuffling(m)
	case view.KindWinner:
		a.drawWinner(m, a.opts.Clock.Now().Sub(a.mountedAt))
	default:
		a.drawEntry(m)
	}

	a.screen.Show()
}

func (a *App) drawEntry(m view.Model) {
	w, h := a.screen.Size()
	drawCentered(a.screen, 1, styleTitle, m.Title)
	drawCentered(a.screen, 3, styleBase, view.Subtitle)

	// Text box between rows 5 and h-5.
	top, bottom := 5, h-5
	if bottom-top < 3 {
		bottom = top + 3
	}
	left, right := 2, w-3
	drawBox(a.screen, left, top, right, bottom, styleBox)

	lines := strings.Split(m.Text, "\n")
	rows := bottom - top - 1
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	if m.Text == "" {
		for i, line := range strings.Split(view.Placeholder, "\n") {
			if i < rows {
				drawText(a.screen, left+2, top+1+i, styleDim, line)
			}
		}
		a.screen.ShowCursor(left+2, top+1)
	} else {
		for i, line := range lines {
			drawText(a.screen, left+2, top+1+i, styleBase, truncate(line, right-left-3))
		}
		last := lines[len(lines)-1]
		a.screen.ShowCursor(left+2+runewidth.StringWidth(last), top+len(lines))
	}

	count := fmt.Sprintf("%d participants", m.Count)
	if m.Count == 1 {
		count = "1 participant"
	}
	drawText(a.screen, left, bottom+1, styleDim, count)
	if m.Error != "" {
		drawText(a.screen, left, bottom+2, styleError, m.Error)
	}

	hintStyle := styleBase
	if !m.CanStart {
		hintStyle = styleDim
	}
	drawCentered(a.screen, h-1, hintStyle, entryHint)
}

func (a *App) drawShuffling(m view.Model) {
	w, h := a.screen.Size()
	drawCentered(a.screen, 1, styleHeading, m.Heading())

	cell := 0
	for _, b := range m.Bricks {
		cell = max(cell, runewidth.StringWidth(b.Name)+4)
	}
	cell = min(cell, w-2)
	cols := max(1, (w-2)/(cell+1))

	for i, b := range m.Bricks {
		x := 1 + (i%cols)*(cell+1)
		y := 3 + (i/cols)*2
		if y >= h-2 {
			break
		}
		drawBrick(a.screen, x, y, cell, b)
	}

	drawCentered(a.screen, h-1, styleDim, spinHint)
}

func (a *App) drawWinner(m view.Model, sinceMount time.Duration) {
	w, h := a.screen.Size()
	drawCentered(a.screen, 1, styleHeading, m.Heading())

	if m.Winner != nil {
		width := min(w-2, max(24, runewidth.StringWidth(m.Winner.Name)+8))
		drawBrick(a.screen, (w-width)/2, h/2-1, width, *m.Winner)
	}
	drawCentered(a.screen, h-1, styleBase, winnerHint)

	for _, p := range m.Confetti {
		x, y, ok := piecePosition(p, sinceMount, w, h)
		if !ok {
			continue
		}
		a.screen.SetContent(x, y, pieceGlyph(p), nil, styleBase.Foreground(tcell.GetColor(p.Color)))
	}
}

// piecePosition maps a falling piece to a cell at time t after mount.
func piecePosition(p confetti.Piece, t time.Duration, w, h int) (int, int, bool) {
	fall := t.Seconds() - p.Delay
	if fall < 0 || p.Duration <= 0 {
		return 0, 0, false
	}
	y := int(fall/p.Duration*float64(h+1)) - 1
	if y < 0 || y >= h {
		return 0, 0, false
	}
	x := int(p.X / confetti.MaxX * float64(w))
	if x >= w {
		x = w - 1
	}
	return x, y, true
}

func pieceGlyph(p confetti.Piece) rune {
	if p.Shape == confetti.ShapeCircle {
		if p.Size > 10 {
			return '●'
		}
		return '•'
	}
	switch {
	case p.Rotation < 90:
		return '▬'
	case p.Rotation < 180:
		return '▮'
	case p.Rotation < 270:
		return '■'
	default:
		return '▪'
	}
}

func drawBrick(s tcell.Screen, x, y, width int, b view.Brick) {
	style := styleBase.Background(tcell.GetColor(b.Color)).Foreground(tcell.ColorWhite).Bold(true)
	if b.Highlighted {
		style = style.Reverse(true)
	}
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
	name := truncate(b.Name, width-2)
	drawText(s, x+(width-runewidth.StringWidth(name))/2, y, style, name)
	if b.Highlighted {
		drawText(s, x-1, y, styleHeading, "▶")
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func drawCentered(s tcell.Screen, y int, style tcell.Style, text string) {
	w, _ := s.Size()
	drawText(s, max(0, (w-runewidth.StringWidth(text))/2), y, style, text)
}

func drawBox(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style) {
	for x := x1 + 1; x < x2; x++ {
		s.SetContent(x, y1, tcell.RuneHLine, nil, style)
		s.SetContent(x, y2, tcell.RuneHLine, nil, style)
	}
	for y := y1 + 1; y < y2; y++ {
		s.SetContent(x1, y, tcell.RuneVLine, nil, style)
		s.SetContent(x2, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(x1, y1, tcell.RuneULCorner, nil, style)
	s.SetContent(x2, y1, tcell.RuneURCorner, nil, style)
	s.SetContent(x1, y2, tcell.RuneLLCorner, nil, style)
	s.SetContent(x2, y2, tcell.RuneLRCorner, nil, style)
}

func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}
