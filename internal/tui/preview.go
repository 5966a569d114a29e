package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jsonl2md/jsonl2md/internal/index"
	"github.com/jsonl2md/jsonl2md/internal/render"
	"github.com/jsonl2md/jsonl2md/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	seq     int
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the transcript preview asynchronously.
func loadPreviewCmd(db *index.DB, h search.Hit, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.Transcript(db, h.Key, render.Options{
			HitSeq:  h.Seq,
			Context: -1,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			key:     h.Key,
			seq:     h.Seq,
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
