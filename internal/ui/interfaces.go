package ui

// Prompter defines interface for user interaction
type Prompter interface {
	ConfirmPush(summary string) (bool, error)
}

// DefaultPrompter implements the actual prompting logic
type DefaultPrompter struct{}

// ConfirmPush prompts user to confirm the push
func (p *DefaultPrompter) ConfirmPush(summary string) (bool, error) {
	return ConfirmPush(summary)
}

// MockPrompter for testing
type MockPrompter struct {
	Confirmed         bool
	ConfirmationError error

	// Call tracking
	ConfirmPushCalled bool
	LastSummary       string
}

// ConfirmPush mocks confirmation
func (m *MockPrompter) ConfirmPush(summary string) (bool, error) {
	m.ConfirmPushCalled = true
	m.LastSummary = summary
	return m.Confirmed, m.ConfirmationError
}
