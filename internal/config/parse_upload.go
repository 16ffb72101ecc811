package config

import "cuelang.org/go/cue"

// parseUploadSection extracts optional upload.* fields.
func parseUploadSection(v cue.Value) Upload {
	var u Upload
	uv := v.LookupPath(cue.ParsePath("upload"))
	if !uv.Exists() {
		return u
	}
	u.HasSection = true
	ev := uv.LookupPath(cue.ParsePath("endpoint"))
	if ev.Exists() && ev.Kind() == cue.StringKind {
		if err := ev.Decode(&u.Endpoint); err == nil {
			u.HasEndpoint = true
		}
	}
	sv := uv.LookupPath(cue.ParsePath("space"))
	if sv.Exists() && sv.Kind() == cue.StringKind {
		if err := sv.Decode(&u.Space); err == nil {
			u.HasSpace = true
		}
	}
	mv := uv.LookupPath(cue.ParsePath("message"))
	if mv.Exists() && mv.Kind() == cue.StringKind {
		if err := mv.Decode(&u.Message); err == nil {
			u.HasMessage = true
		}
	}
	mbv := uv.LookupPath(cue.ParsePath("maxFileBytes"))
	if mbv.Exists() && mbv.Kind() == cue.IntKind {
		_ = mbv.Decode(&u.MaxFileBytes)
		u.HasMaxFileBytes = true
	}
	xv := uv.LookupPath(cue.ParsePath("exclude"))
	if xv.Exists() && xv.Kind() == cue.ListKind {
		_ = xv.Decode(&u.Exclude)
		if len(u.Exclude) > 0 {
			u.HasExclude = true
		}
	}
	xiv := uv.LookupPath(cue.ParsePath("excludeInline"))
	if xiv.Exists() && xiv.Kind() == cue.StringKind {
		if err := xiv.Decode(&u.ExcludeInline); err == nil {
			u.HasExcludeInline = true
		}
	}
	adv := uv.LookupPath(cue.ParsePath("allowDirty"))
	if adv.Exists() && adv.Kind() == cue.BoolKind {
		_ = adv.Decode(&u.AllowDirty)
		u.HasAllowDirty = true
	}
	return u
}
