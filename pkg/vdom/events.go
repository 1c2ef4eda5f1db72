package vdom

import "strings"

// ListenerPrefix marks a property as an event listener.
const ListenerPrefix = "on"

// EventHandler is a listener property passed to an element factory.
type EventHandler struct {
	Event   string // Property name, e.g. "onClick"
	Handler any    // Host-specific callable
}

// IsListener reports whether a property name denotes an event listener:
// the lower-case prefix "on" followed by at least one character. Only and
// ONLINE are attributes.
func IsListener(name string) bool {
	return len(name) > len(ListenerPrefix) && strings.HasPrefix(name, ListenerPrefix)
}

// ListenerEvent derives the host event name from a listener property name:
// "onClick" becomes "click".
func ListenerEvent(name string) string {
	return strings.ToLower(name[len(ListenerPrefix):])
}

// isAttribute reports whether a property name is applied as a host attribute.
func isAttribute(name string) bool {
	return name != ChildrenKey && !IsListener(name)
}

// On creates a listener for an arbitrary event. The event name is
// capitalized into the property name: On("keydown", h) is "onKeydown".
func On(event string, handler any) EventHandler {
	if event == "" {
		return EventHandler{Event: ListenerPrefix, Handler: handler}
	}
	return EventHandler{Event: ListenerPrefix + strings.ToUpper(event[:1]) + event[1:], Handler: handler}
}

// Mouse events

// OnClick handles click events.
func OnClick(handler any) EventHandler { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) EventHandler { return On("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler any) EventHandler { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler any) EventHandler { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return On("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler any) EventHandler { return On("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return On("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return On("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) EventHandler { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return On("blur", handler) }
