package config

import "cuelang.org/go/cue"

// parseSandboxSection extracts optional sandbox.* limits for inline Lua hooks.
func parseSandboxSection(v cue.Value) Sandbox {
	var s Sandbox
	sv := v.LookupPath(cue.ParsePath("sandbox"))
	if !sv.Exists() {
		return s
	}
	s.HasSection = true
	tv := sv.LookupPath(cue.ParsePath("timeoutMs"))
	if tv.Exists() && tv.Kind() == cue.IntKind {
		_ = tv.Decode(&s.TimeoutMs)
		s.HasTimeout = true
	}
	iv := sv.LookupPath(cue.ParsePath("instructionLimit"))
	if iv.Exists() && iv.Kind() == cue.IntKind {
		_ = iv.Decode(&s.InstructionLimit)
		s.HasInstruction = true
	}
	mv := sv.LookupPath(cue.ParsePath("memoryLimitBytes"))
	if mv.Exists() && mv.Kind() == cue.IntKind {
		_ = mv.Decode(&s.MemoryLimitBytes)
		s.HasMemory = true
	}
	return s
}
