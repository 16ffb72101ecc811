package hook

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Predicate is a compiled-once inline Lua expression evaluated per path.
// The script sees the global `path` (slash-separated locator) and must yield
// a boolean; anything else counts as false.
type Predicate struct {
	name   string
	code   string
	limits Limits
}

// NewPredicate wraps expressions without an explicit return so both
// `return path ~= "x"` and `path ~= "x"` work. name labels sandbox errors
// and seeds deterministic randomness.
func NewPredicate(name, code string, limits Limits) *Predicate {
	if !containsReturn(code) {
		code = "return (" + code + ")"
	}
	return &Predicate{name: name, code: code, limits: limits}
}

// Eval runs the predicate against one path. Sandbox violations surface as
// errors; the caller decides whether they fail open or closed.
func (p *Predicate) Eval(path string) (bool, error) {
	if instructionLimitWouldTrip(p.code, p.limits.InstructionLimit) {
		return false, fmt.Errorf("%s: %s", p.name, sandboxInstructionViolation)
	}

	L := newSandboxState(p.name, path, p.limits)
	defer L.Close()

	if p.limits.TimeoutMs > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.limits.TimeoutMs)*time.Millisecond)
		defer cancel()
		L.SetContext(ctx)
	}

	L.SetGlobal("path", lua.LString(path))

	fn, err := L.LoadString(p.code)
	if err != nil {
		return false, fmt.Errorf("%s: %v", p.name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if isTimeoutError(err) {
			return false, fmt.Errorf("%s: %s", p.name, sandboxTimeoutViolation)
		}
		if strings.Contains(strings.ToLower(err.Error()), "registry overflow") {
			return false, fmt.Errorf("%s: %s", p.name, sandboxMemoryViolation)
		}
		return false, fmt.Errorf("%s: %v", p.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	b, ok := ret.(lua.LBool)
	return ok && bool(b), nil
}

// containsReturn reports whether the code string contains the token "return".
func containsReturn(s string) bool {
	for i := 0; i+5 <= len(s); i++ {
		if s[i] == 'r' && i+6 <= len(s) && s[i:i+6] == "return" {
			return true
		}
	}
	return false
}
