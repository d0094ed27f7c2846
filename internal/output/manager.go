package output

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type AttemptOutput struct {
	ID          int
	Label       string
	Status      string
	Message     string
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	Attempt int
	Label   string
	Error   error
	Time    time.Time
}

// Manager keeps the per attempt status of a campaign and renders the
// running tally and the final summary.
type Manager struct {
	mutex    sync.RWMutex
	printer  *Printer
	outputs  []*AttemptOutput
	errors   []ErrorReport
	expected int
}

func NewManager(printer *Printer, expected int) *Manager {
	if printer == nil {
		printer = std
	}
	return &Manager{
		printer:  printer,
		outputs:  []*AttemptOutput{},
		errors:   []ErrorReport{},
		expected: expected,
	}
}

func (m *Manager) RegisterAttempt(label string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	id := len(m.outputs) + 1
	m.outputs = append(m.outputs, &AttemptOutput{
		ID:          id,
		Label:       label,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	})
	return id
}

func (m *Manager) get(id int) *AttemptOutput {
	if id < 1 || id > len(m.outputs) {
		return nil
	}
	return m.outputs[id-1]
}

func (m *Manager) GetStatus(id int) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if info := m.get(id); info != nil {
		return info.Status
	}
	return "unknown"
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.get(id); info != nil {
		if message == "" {
			info.Message = fmt.Sprintf("Completed %s", info.Label)
		} else {
			info.Message = message
		}
		info.Status = "success"
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info := m.get(id); info != nil {
		info.Status = "error"
		info.Error = err
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{
			Attempt: id,
			Label:   info.Label,
			Error:   err,
			Time:    time.Now(),
		})
	}
}

// Counts returns successes, failures and registered attempts.
func (m *Manager) Counts() (int, int, int) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var success, failures int
	for _, info := range m.outputs {
		switch info.Status {
		case "success":
			success++
		case "error":
			failures++
		}
	}
	return success, failures, len(m.outputs)
}

func (m *Manager) GetStatusIndicator(status string) string {
	switch status {
	case "success", "pass":
		return successStyle.Render(StyleSymbols["pass"])
	case "error", "fail":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

// ShowTally prints one line with the successes so far.
func (m *Manager) ShowTally() {
	success, _, done := m.Counts()
	m.printer.Println(fmt.Sprintf("%s%s %s",
		strings.Repeat(" ", 2),
		infoStyle.Render(StyleSymbols["arrow"]),
		debugStyle.Render(fmt.Sprintf("Tally: %d/%d successful (%d of %d sent)", success, done, done, m.expected))))
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	m.printer.Blank()
	m.printer.Println(strings.Repeat(" ", 2) + errorStyle.Bold(true).Render("Errors:"))
	for i, err := range m.errors {
		m.printer.Println(fmt.Sprintf("%s%s %s %s",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", err.Time.Format("15:04:05"))),
			errorStyle.Render(err.Label)))
		m.printer.Println(fmt.Sprintf("%s%s", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", err.Error))))
	}
}

func (m *Manager) ShowSummary() {
	success, failures, _ := m.Counts()
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	m.printer.Blank()
	for _, info := range m.outputs {
		elapsed := info.LastUpdated.Sub(info.StartTime).Round(time.Millisecond)
		m.printer.Println(fmt.Sprintf("%s%s %s %s", strings.Repeat(" ", 2),
			m.GetStatusIndicator(info.Status), debugStyle.Render(elapsed.String()), info.Label))
	}
	m.printer.Blank()
	succeeded := fmt.Sprintf("Sent %d/%d requests successfully", success, m.expected)
	m.printer.Println(strings.Repeat(" ", 2) + success2Style.Render(succeeded))
	if failures > 0 {
		failed := fmt.Sprintf("Failed %d of %d", failures, m.expected)
		m.printer.Println(strings.Repeat(" ", 2) + errorStyle.Render(failed))
	}
	m.displayErrors()
	m.printer.Blank()
}
