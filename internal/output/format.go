// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasklane/internal/state"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// MaxLists is the number of lists that get a letter. Tasks of later lists
	// are shown as "#n" and addressed with the list name.
	MaxLists = 26
)

// Options controls board rendering.
type Options struct {
	// Descriptions prints task descriptions under their titles.
	Descriptions bool
}

type styles struct {
	heading lipgloss.Style
	lane    lipgloss.Style
	pending lipgloss.Style
	meta    lipgloss.Style
}

// newStyles builds styles for w. Colors and attributes are dropped when w
// is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		lane:    r.NewStyle().Faint(true),
		pending: r.NewStyle().Italic(true).Foreground(lipgloss.Color("3")),
		meta:    r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Letter returns the letter of the i-th list on the board (0-based).
// Lists past MaxLists have no letter.
func Letter(i int) (rune, bool) {
	if i < 0 || i >= MaxLists {
		return 0, false
	}
	return rune('a' + i), true
}

// Ref formats a task reference such as "a3".
func Ref(letter rune, num int) string {
	return fmt.Sprintf("%c%d", letter, num)
}

// Board renders every list with its three lanes. Tasks are numbered per list
// in lane order, so "a3" is the third task shown under list a.
func Board(w io.Writer, board []state.ListView, opts Options) {
	st := newStyles(w)
	for i, lv := range board {
		renderList(w, st, i, lv, opts)
	}
}

// List renders a single list as it appears at position index on the board.
func List(w io.Writer, index int, lv state.ListView, opts Options) {
	renderList(w, newStyles(w), index, lv, opts)
}

func renderList(w io.Writer, st styles, index int, lv state.ListView, opts Options) {
	letter, ok := Letter(index)
	header := "   " + normalizeListTitle(lv.List.Name)
	if ok {
		header = fmt.Sprintf("%c  %s", letter, normalizeListTitle(lv.List.Name))
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, st.heading.Render(header))
	fmt.Fprintln(w, ListSeparator)

	num := 0
	for _, lane := range lv.Lanes {
		fmt.Fprintf(w, "  %s\n", st.lane.Render(string(lane.Bucket.Priority)))
		for _, t := range lane.Tasks {
			num++
			ref := fmt.Sprintf("#%d", num)
			if ok {
				ref = Ref(letter, num)
			}
			formatTask(w, st, ref, t, opts)
		}
	}
}

// formatTask formats a task line.
// Format: "    {REF:>4}  {TITLE}[  due {DATE}][  (moving)]\n"
func formatTask(w io.Writer, st styles, ref string, t state.TaskView, opts Options) {
	var b strings.Builder
	fmt.Fprintf(&b, "    %4s  %s", ref, normalizeTitle(t.Title))
	if t.DueDate != "" {
		b.WriteString("  " + st.meta.Render("due "+t.DueDate))
	}
	if t.Pending {
		b.WriteString("  " + st.pending.Render("(moving)"))
	}
	fmt.Fprintln(w, b.String())

	if opts.Descriptions && strings.TrimSpace(t.Description) != "" {
		for _, line := range strings.Split(strings.TrimSpace(t.Description), "\n") {
			fmt.Fprintf(w, "          %s\n", strings.TrimRight(line, "\r"))
		}
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
