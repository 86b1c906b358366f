// Package input maps physical keys to viewer actions with per-frame edge
// detection.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer action, not a physical key.
type Action int

const (
	ActionQuit Action = iota
	ActionCapture
	ActionToggleGeneration
	ActionFaster
	ActionSlower
	ActionToggleOrbit
	ActionToggleOverlay
	ActionCount // sentinel for array sizing
)

// Manager tracks which actions are held and which changed this frame. Key
// events arrive from GLFW callbacks; the frame loop reads and then calls
// PostUpdate.
type Manager struct {
	mu sync.RWMutex

	keyToActions map[glfw.Key][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// NewManager creates a manager with the default bindings.
func NewManager() *Manager {
	m := &Manager{keyToActions: make(map[glfw.Key][]Action)}

	m.BindKey(glfw.KeyEscape, ActionQuit)
	m.BindKey(glfw.KeyF12, ActionCapture)
	m.BindKey(glfw.KeyP, ActionToggleGeneration)
	m.BindKey(glfw.KeyEqual, ActionFaster)
	m.BindKey(glfw.KeyKPAdd, ActionFaster)
	m.BindKey(glfw.KeyMinus, ActionSlower)
	m.BindKey(glfw.KeyKPSubtract, ActionSlower)
	m.BindKey(glfw.KeySpace, ActionToggleOrbit)
	m.BindKey(glfw.KeyF3, ActionToggleOverlay)
	return m
}

// BindKey adds action to key. Several keys may share an action.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes every action bound to key.
func (m *Manager) UnbindKey(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyToActions, key)
}

// HandleKeyEvent updates state for a GLFW key event.
func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions, ok := m.keyToActions[key]
	if !ok {
		return
	}
	pressed := action == glfw.Press || action == glfw.Repeat
	for _, act := range actions {
		if pressed && !m.currentState[act] {
			m.justPressed[act] = true
		}
		if !pressed && m.currentState[act] {
			m.justReleased[act] = true
		}
		m.currentState[act] = pressed
	}
}

// Attach installs the manager as window's key callback.
func (m *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
}

// PostUpdate clears the edge flags; call it once per frame after reading.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.justPressed = [ActionCount]bool{}
	m.justReleased = [ActionCount]bool{}
}

// IsActive reports whether action is held.
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState[action]
}

// JustPressed reports whether action went down since the last PostUpdate.
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// JustReleased reports whether action went up since the last PostUpdate.
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[action]
}
