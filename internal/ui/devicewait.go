package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/gitsync/internal/auth"
)

var (
	codeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// authDoneMsg carries the poller's terminal outcome into the model.
type authDoneMsg struct {
	token string
	err   error
}

type deviceModel struct {
	spin   spinner.Model
	code   *auth.DeviceCode
	cancel context.CancelFunc

	token string
	err   error
}

func (m deviceModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m deviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			// The poller observes the cancelled context and delivers
			// authDoneMsg with ErrCancelled; quitting happens then.
			m.cancel()
			return m, nil
		}
	case authDoneMsg:
		m.token = msg.token
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m deviceModel) View() string {
	return fmt.Sprintf(
		"\nOpen %s and enter code %s\n\n%s Waiting for authorization... (esc to cancel)\n",
		m.code.VerificationURI,
		codeStyle.Render(m.code.UserCode),
		m.spin.View(),
	)
}

// WaitForAuthorization presents the user code and runs the device-flow
// poller until it terminates, with a spinner when attached to a terminal and
// a plain dotted line otherwise. Esc/Ctrl-C cancel the poll.
func WaitForAuthorization(flow *auth.Flow, code *auth.DeviceCode) (string, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !IsTerminal() {
		fmt.Printf("Open %s and enter code: %s\n", code.VerificationURI, code.UserCode)
		flow.OnPending = func() { fmt.Print(".") }
		token, err := flow.Wait(ctx, code)
		fmt.Println()
		return token, err
	}

	m := deviceModel{
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		code:   code,
		cancel: cancel,
	}

	p := tea.NewProgram(m)
	go func() {
		token, err := flow.Wait(ctx, code)
		p.Send(authDoneMsg{token: token, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return "", err
	}
	done := final.(deviceModel)
	return done.token, done.err
}
