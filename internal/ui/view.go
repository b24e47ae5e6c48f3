package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"subattach/internal/progress"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("subattach")
	sub := m.styles.Subtitle.Render("q: cancel")
	return title + "  " + sub
}

// viewStages renders the stage trail, e.g. "✓ probe  ✓ plan  ⠋ mux".
func (m Model) viewStages(js *jobState) string {
	var parts []string
	for i, st := range js.reached {
		if st == progress.StageDeps {
			continue
		}
		last := i == len(js.reached)-1
		switch {
		case st == progress.StageError:
			parts = append(parts, m.styles.Error.Render("✗ error"))
		case st == progress.StageCompleted:
			parts = append(parts, m.styles.Success.Render("✓ done"))
		case last && !js.done:
			parts = append(parts, m.styles.Spinner.Render(js.spinner.View())+m.styles.StageActive.Render(string(st)))
		default:
			parts = append(parts, m.styles.Success.Render("✓ ")+m.styles.Faint.Render(string(st)))
		}
	}
	if len(parts) == 0 {
		return m.styles.Spinner.Render(js.spinner.View()) + m.styles.Faint.Render("starting")
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewJob(js *jobState) string {
	lines := []string{
		m.styles.JobTitle.Render(truncate(js.input, 72)),
		m.viewStages(js),
	}

	if js.stage == progress.StageMux && !js.done {
		var bar string
		if js.percent >= 0 && js.percent <= 100 {
			bar = fmt.Sprintf("%s %5.1f%%", js.bar.ViewAs(js.percent/100.0), js.percent)
		} else {
			bar = m.styles.StageMux.Render("muxing")
		}
		var extra []string
		if js.bytes > 0 {
			extra = append(extra, humanize.IBytes(uint64(js.bytes)))
		}
		if js.speed != "" {
			extra = append(extra, js.speed)
		}
		if len(extra) > 0 {
			bar += "  " + m.styles.Faint.Render(strings.Join(extra, " • "))
		}
		lines = append(lines, bar)
	}

	statusStyle := m.styles.JobInfo
	if js.err != nil {
		statusStyle = m.styles.Error
	} else if js.done {
		statusStyle = m.styles.Success
	}
	lines = append(lines, statusStyle.Render(js.status))

	if !js.done || js.err != nil {
		for _, l := range js.logsRing {
			lines = append(lines, m.styles.Faint.Render("  "+truncate(l, 100)))
		}
	}
	return m.styles.Box.Render(strings.Join(lines, "\n"))
}

func (m Model) viewSummary() string {
	if len(m.job.warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range m.job.warnings {
		b.WriteString(m.styles.Warning.Render("! " + w))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
