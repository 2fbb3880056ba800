package ui

import tea "github.com/charmbracelet/bubbletea"

// BindingRegistry maps stable element IDs to action handlers. The tree
// content is replaced wholesale on every refresh, so handlers are
// registered against the registry (the stable container) and dispatched
// by target ID rather than being attached per element. Bind always
// removes any previously registered handler for the same ID before
// adding, so rebinding after a re-render can never cause duplicate
// invocation.
type BindingRegistry struct {
	handlers map[string]func() tea.Msg
}

// NewBindingRegistry creates an empty registry.
func NewBindingRegistry() *BindingRegistry {
	return &BindingRegistry{handlers: make(map[string]func() tea.Msg)}
}

// Bind registers a handler for the element ID, replacing any prior one.
func (b *BindingRegistry) Bind(elementID string, fn func() tea.Msg) {
	if fn == nil {
		delete(b.handlers, elementID)
		return
	}
	delete(b.handlers, elementID)
	b.handlers[elementID] = fn
}

// Unbind removes the handler for the element ID, if any.
func (b *BindingRegistry) Unbind(elementID string) {
	delete(b.handlers, elementID)
}

// Dispatch returns the command for the element ID, or nil when no
// handler is bound. Exactly one handler fires per dispatch.
func (b *BindingRegistry) Dispatch(elementID string) tea.Cmd {
	fn, ok := b.handlers[elementID]
	if !ok {
		return nil
	}
	return fn
}

// Len returns the number of bound handlers.
func (b *BindingRegistry) Len() int {
	return len(b.handlers)
}

// Reset drops every binding. Called before each re-render pass rebinds.
func (b *BindingRegistry) Reset() {
	b.handlers = make(map[string]func() tea.Msg)
}
