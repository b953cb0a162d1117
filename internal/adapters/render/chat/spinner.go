package chat

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

type workDoneMsg struct{ err error }

type spinnerModel struct {
	spinner spinner.Model
	label   string
	err     error
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(newStyles().spinner))
	return spinnerModel{spinner: s, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithSpinner runs work while a spinner labelled label animates on out.
// When out is not a terminal work simply runs.
func WithSpinner(out io.Writer, label string, work func() error) error {
	if !IsTerminal(out) {
		return work()
	}

	p := tea.NewProgram(newSpinnerModel(label), tea.WithInput(nil), tea.WithOutput(out))
	go func() {
		p.Send(workDoneMsg{err: work()})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := finalModel.(spinnerModel)
	if !ok {
		return ErrUnexpectedRenderModel
	}
	return m.err
}
