// Package keys defines the keystroke vocabulary understood by the completion engine.
package keys

import (
	"strconv"
	"strings"
	"unicode"
)

// Code is a browser keyCode value.
type Code int

// Recognized key codes
const (
	Backspace Code = 8
	Tab       Code = 9
	Enter     Code = 13
	Shift     Code = 16
	Esc       Code = 27
	Space     Code = 32
	Left      Code = 37
	Up        Code = 38
	Right     Code = 39
	Down      Code = 40
	Delete    Code = 46
	Comma     Code = 188
)

var names = map[Code]string{
	Backspace: "BACKSPACE",
	Tab:       "TAB",
	Enter:     "ENTER",
	Shift:     "SHIFT",
	Esc:       "ESC",
	Space:     "SPACE",
	Left:      "LEFT",
	Up:        "UP",
	Right:     "RIGHT",
	Down:      "DOWN",
	Delete:    "DELETE",
	Comma:     "COMMA",
}

var aliases = map[string]Code{
	"ESCAPE": Esc,
	"RETURN": Enter,
	"DEL":    Delete,
	"BS":     Backspace,
}

// String returns the key name, or the numeric code for unnamed keys
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	if c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return string(rune(c))
	}
	return strconv.Itoa(int(c))
}

// Event is one physical keystroke phase as delivered by the host
type Event struct {
	TargetID  string
	Code      Code
	IsKeyDown bool
	IsShift   bool
}

// IsContent reports whether a key produces content in the text buffer.
// Navigation, modifier and deletion keys do not.
func IsContent(c Code) bool {
	switch c {
	case Enter, Esc, Tab, Up, Down, Left, Right, Shift, Backspace, Delete:
		return false
	}
	return true
}

// IsNavigation reports whether a key moves the selection or dismisses the list
func IsNavigation(c Code) bool {
	return c == Up || c == Down || c == Esc
}

// Composition is reported for characters without a key of their own on a
// US layout, as browsers do while an input method composes text
const Composition Code = 229

type physicalKey struct {
	code  Code
	shift bool
}

// punctuation maps US-layout symbols to the key that types them
var punctuation = map[rune]physicalKey{
	';': {186, false}, ':': {186, true},
	'=': {187, false}, '+': {187, true},
	'<': {Comma, true},
	'-': {189, false}, '_': {189, true},
	'.': {190, false}, '>': {190, true},
	'/': {191, false}, '?': {191, true},
	'`': {192, false}, '~': {192, true},
	'[': {219, false}, '{': {219, true},
	'\\': {220, false}, '|': {220, true},
	']': {221, false}, '}': {221, true},
	'\'': {222, false}, '"': {222, true},
	')': {'0', true}, '!': {'1', true}, '@': {'2', true}, '#': {'3', true}, '$': {'4', true},
	'%': {'5', true}, '^': {'6', true}, '&': {'7', true}, '*': {'8', true}, '(': {'9', true},
}

var punctuationRunes = func() map[physicalKey]rune {
	m := make(map[physicalKey]rune, len(punctuation))
	for r, k := range punctuation {
		m[k] = r
	}
	return m
}()

// KeyForRune returns the keyCode a browser reports on keydown for a typed
// character and whether shift is held to type it
func KeyForRune(r rune) (Code, bool) {
	switch {
	case r == ',':
		return Comma, false
	case r == ' ':
		return Space, false
	case r >= 'a' && r <= 'z':
		return Code(unicode.ToUpper(r)), false
	case r >= 'A' && r <= 'Z':
		return Code(r), true
	case r >= '0' && r <= '9':
		return Code(r), false
	}
	if k, ok := punctuation[r]; ok {
		return k.code, k.shift
	}
	return Composition, false
}

// CodeForRune is KeyForRune without the shift state
func CodeForRune(r rune) Code {
	code, _ := KeyForRune(r)
	return code
}

// RuneFor returns the character a key types on a US layout, or 0 for keys
// that type nothing
func RuneFor(code Code, shift bool) rune {
	switch {
	case code == Space:
		return ' '
	case code >= 'A' && code <= 'Z':
		if shift {
			return rune(code)
		}
		return unicode.ToLower(rune(code))
	case code >= '0' && code <= '9' && !shift:
		return rune(code)
	case code == Comma && !shift:
		return ','
	}
	return punctuationRunes[physicalKey{code, shift}]
}

// Parse resolves a key name ("ENTER", "down", "Esc") or a numeric code
func Parse(name string) (Code, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return 0, false
	}
	for code, n := range names {
		if n == upper {
			return code, true
		}
	}
	if code, ok := aliases[upper]; ok {
		return code, true
	}
	if r := []rune(upper); len(r) == 1 {
		return CodeForRune(r[0]), true
	}
	if n, err := strconv.Atoi(upper); err == nil && n > 0 {
		return Code(n), true
	}
	return 0, false
}
