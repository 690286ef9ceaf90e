package conversation

import "sync"

// Table holds the active conversation of each chat. Absence means idle.
type Table struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{states: make(map[int64]State)}
}

// Get returns the chat's active state
func (t *Table) Get(chatID int64) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[chatID]
	return st, ok
}

// Set replaces the chat's state, discarding any previous one
func (t *Table) Set(chatID int64, st State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[chatID] = st
}

// Delete clears the chat's state
func (t *Table) Delete(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, chatID)
}

// Len returns the number of chats with an active conversation
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}
