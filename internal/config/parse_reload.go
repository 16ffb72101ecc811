package config

import "cuelang.org/go/cue"

// parseReloadSection extracts optional reload.* fields.
func parseReloadSection(v cue.Value) Reload {
	var r Reload
	rv := v.LookupPath(cue.ParsePath("reload"))
	if !rv.Exists() {
		return r
	}
	r.HasSection = true
	wv := rv.LookupPath(cue.ParsePath("watch"))
	if wv.Exists() && wv.Kind() == cue.ListKind {
		_ = wv.Decode(&r.Watch)
		if len(r.Watch) > 0 {
			r.HasWatch = true
		}
	}
	iv := rv.LookupPath(cue.ParsePath("ignore"))
	if iv.Exists() && iv.Kind() == cue.ListKind {
		_ = iv.Decode(&r.Ignore)
		if len(r.Ignore) > 0 {
			r.HasIgnore = true
		}
	}
	runv := rv.LookupPath(cue.ParsePath("runner"))
	if runv.Exists() && runv.Kind() == cue.StringKind {
		if err := runv.Decode(&r.Runner); err == nil {
			r.HasRunner = true
		}
	}
	pv := rv.LookupPath(cue.ParsePath("pollMs"))
	if pv.Exists() && pv.Kind() == cue.IntKind {
		_ = pv.Decode(&r.PollMs)
		r.HasPoll = true
	}
	gv := rv.LookupPath(cue.ParsePath("graceMs"))
	if gv.Exists() && gv.Kind() == cue.IntKind {
		_ = gv.Decode(&r.GraceMs)
		r.HasGrace = true
	}
	spv := rv.LookupPath(cue.ParsePath("statusPort"))
	if spv.Exists() && spv.Kind() == cue.IntKind {
		_ = spv.Decode(&r.StatusPort)
		r.HasStatusPort = true
	}
	lv := rv.LookupPath(cue.ParsePath("logLevel"))
	if lv.Exists() && lv.Kind() == cue.StringKind {
		if err := lv.Decode(&r.LogLevel); err == nil {
			r.HasLogLevel = true
		}
	}
	fv := rv.LookupPath(cue.ParsePath("filterInline"))
	if fv.Exists() && fv.Kind() == cue.StringKind {
		if err := fv.Decode(&r.FilterInline); err == nil {
			r.HasFilterInline = true
		}
	}
	ev := rv.LookupPath(cue.ParsePath("env"))
	if ev.Exists() {
		tmp := map[string]string{}
		if err := ev.Decode(&tmp); err == nil {
			r.Env = tmp
			r.HasEnv = true
		}
	}
	return r
}
