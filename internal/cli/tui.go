package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/boardtex/pkg/manifest"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// Job kinds.
const (
	jobSheet = "sheet"
	jobSplit = "split"
)

// job is one selectable manifest entry.
type job struct {
	Kind   string
	Name   string
	Detail string
}

// manifestJobs lists every sheet, then every split, of m.
func manifestJobs(m *manifest.Manifest) []job {
	jobs := make([]job, 0, len(m.Sheets)+len(m.Splits))
	for i := range m.Sheets {
		s := &m.Sheets[i]
		jobs = append(jobs, job{Kind: jobSheet, Name: s.Name, Detail: s.OutputName()})
	}
	for i := range m.Splits {
		s := &m.Splits[i]
		detail := fmt.Sprintf("%s · chunk %d", s.Source, s.Chunk)
		if s.Mask != "" {
			detail += " · mask"
		}
		jobs = append(jobs, job{Kind: jobSplit, Name: s.Name, Detail: detail})
	}
	return jobs
}

// splitJobs separates selected jobs into sheet and split names.
func splitJobs(jobs []job) (sheets, splits []string) {
	for _, j := range jobs {
		if j.Kind == jobSheet {
			sheets = append(sheets, j.Name)
		} else {
			splits = append(splits, j.Name)
		}
	}
	return sheets, splits
}

// =============================================================================
// JobListModel - Interactive job selection
// =============================================================================

// JobListModel is the bubbletea model for choosing which manifest jobs to run.
type JobListModel struct {
	Jobs      []job
	Cursor    int
	Marked    map[int]bool
	Height    int
	Offset    int
	Done      bool
	Cancelled bool
}

// NewJobListModel creates a new job list model.
func NewJobListModel(jobs []job) JobListModel {
	return JobListModel{
		Jobs:   jobs,
		Marked: make(map[int]bool),
		Height: 15,
	}
}

func (m JobListModel) Init() tea.Cmd {
	return nil
}

func (m JobListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Cancelled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Jobs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			m.Marked[m.Cursor] = !m.Marked[m.Cursor]
		case "a":
			all := len(m.Selected()) < len(m.Jobs)
			for i := range m.Jobs {
				m.Marked[i] = all
			}
		case "enter":
			if len(m.Jobs) == 0 {
				return m, nil
			}
			if len(m.Selected()) == 0 {
				m.Marked[m.Cursor] = true
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// Selected returns the marked jobs in manifest order.
func (m JobListModel) Selected() []job {
	var out []job
	for i, j := range m.Jobs {
		if m.Marked[i] {
			out = append(out, j)
		}
	}
	return out
}

func (m JobListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Jobs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  a all  ⏎ build  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Jobs) {
		end = len(m.Jobs)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		j := m.Jobs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Marked[i] {
			mark = "[x]"
		}
		rows = append(rows, []string{cursor, mark, j.Kind, j.Name, j.Detail})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Kind", "Name", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Jobs) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = base.Foreground(colorDim)
			} else if m.Marked[idx] {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d marked", m.Cursor+1, len(m.Jobs), len(m.Selected()))))

	return b.String()
}

// pickJobs runs the picker on the terminal. A cancelled picker returns no
// jobs and no error.
func pickJobs(m *manifest.Manifest) ([]job, error) {
	final, err := tea.NewProgram(NewJobListModel(manifestJobs(m)), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("job picker: %w", err)
	}
	model, ok := final.(JobListModel)
	if !ok || model.Cancelled || !model.Done {
		return nil, nil
	}
	return model.Selected(), nil
}
