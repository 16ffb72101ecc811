// Package hook evaluates small inline Lua predicates against project paths.
// The reload loop uses one to decide which changes trigger a restart; the
// uploader uses one to exclude files from packaging. Scripts run in a
// sandboxed interpreter: no io/os libs, bounded time, a registry ceiling
// derived from the memory limit, and deterministic math.random so repeated
// evaluations of the same path agree.
package hook

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/flarebyte/bennu/internal/config"
)

const (
	sandboxTimeoutViolation     = "sandbox timeout"
	sandboxInstructionViolation = "sandbox instruction limit"
	sandboxMemoryViolation      = "sandbox memory limit"
)

const (
	defaultTimeoutMs        = 2000
	defaultInstructionLimit = 1000000
	defaultMemoryLimitBytes = 8388608
)

// Limits bound one predicate evaluation.
type Limits struct {
	TimeoutMs        int
	InstructionLimit int
	MemoryLimitBytes int
}

// DefaultLimits returns the sandbox bounds used when the project config is
// silent.
func DefaultLimits() Limits {
	return Limits{
		TimeoutMs:        defaultTimeoutMs,
		InstructionLimit: defaultInstructionLimit,
		MemoryLimitBytes: defaultMemoryLimitBytes,
	}
}

// LimitsFromConfig overlays sandbox config fields onto the defaults.
func LimitsFromConfig(s config.Sandbox) Limits {
	l := DefaultLimits()
	if s.HasTimeout {
		l.TimeoutMs = s.TimeoutMs
	}
	if s.HasInstruction {
		l.InstructionLimit = s.InstructionLimit
	}
	if s.HasMemory {
		l.MemoryLimitBytes = s.MemoryLimitBytes
	}
	return l
}

// newSandboxState builds an interpreter with only base, string, table and
// math opened. name and path seed the deterministic math.random.
func newSandboxState(name, path string, limits Limits) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		RegistrySize:     256,
		RegistryMaxSize:  registryMaxFromMemory(limits.MemoryLimitBytes),
		RegistryGrowStep: 0,
	})
	openLib := func(libName string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(libName))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	installDeterministicRandom(L, deterministicSeed(name, path))
	return L
}

func registryMaxFromMemory(memoryLimitBytes int) int {
	if memoryLimitBytes <= 0 {
		return 256
	}
	// Conservative best-effort: lower registry ceiling when memory limit is low.
	n := memoryLimitBytes / 64
	if n < 128 {
		n = 128
	}
	if n > 4096 {
		n = 4096
	}
	return n
}

func deterministicSeed(name, path string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(path))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func installDeterministicRandom(L *lua.LState, seed int64) {
	mathTbl, ok := L.GetGlobal("math").(*lua.LTable)
	if !ok || mathTbl == nil {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	mathTbl.RawSetString("random", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		switch top {
		case 0:
			L.Push(lua.LNumber(rng.Float64()))
			return 1
		case 1:
			max := L.CheckInt(1)
			if max < 1 {
				L.ArgError(1, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(max) + 1))
			return 1
		default:
			min := L.CheckInt(1)
			max := L.CheckInt(2)
			if max < min {
				L.ArgError(2, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(max-min+1) + min))
			return 1
		}
	}))
	mathTbl.RawSetString("randomseed", L.NewFunction(func(L *lua.LState) int {
		return 0
	}))
}

func instructionLimitWouldTrip(code string, instructionLimit int) bool {
	if instructionLimit <= 0 {
		return false
	}
	cost := len(code) * 10
	lower := strings.ToLower(code)
	if strings.Contains(lower, "while ") || strings.Contains(lower, "repeat") || strings.Contains(lower, "for ") {
		cost += 1000000
	}
	return cost > instructionLimit
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if err == context.DeadlineExceeded {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "deadline") || strings.Contains(strings.ToLower(err.Error()), "context canceled")
}
