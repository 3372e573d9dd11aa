package resolve

// The serialized form of one spec.
type SpecRecord struct {
	Spec     string         `json:"spec"`
	Name     string         `json:"name"`
	Attrs    []string       `json:"attrs"`
	Resolved ResolvedRecord `json:"resolved"`
}

// The resolved portion of a serialized spec.
type ResolvedRecord struct {
	FinalVersion []string `json:"final_version,omitempty"`
}

// The serialized form of one finalized output.
type OutputRecord struct {
	Name                   string                  `json:"name"`
	Version                string                  `json:"version"`
	BuildNumber            int                     `json:"build_number"`
	Source                 []map[string]string     `json:"source"`
	Noarch                 bool                    `json:"noarch"`
	DifferentiatingVariant []string                `json:"differentiating_variant"`
	Variant                map[string]string       `json:"variant"`
	Requirements           map[string][]SpecRecord `json:"requirements"`
}

// Returns the JSON-shaped record of this output: identity, variant, and
// the per-environment requirement lists including everything the solver
// chose.
func (o *Output) Record() OutputRecord {
	rec := OutputRecord{
		Name:                   o.Name,
		Version:                o.Version,
		BuildNumber:            o.BuildNumber,
		Noarch:                 o.Noarch,
		DifferentiatingVariant: o.DifferentiatingVariant,
		Variant:                o.Variant,
		Requirements:           make(map[string][]SpecRecord, 3),
	}

	for _, src := range o.Sources {
		entry := make(map[string]string)
		if src.Step != "" {
			entry["step"] = src.Step
		}
		if src.URL != "" {
			entry["url"] = src.URL
		}
		if src.Path != "" {
			entry["path"] = src.Path
		}
		if src.Folder != "" {
			entry["folder"] = src.Folder
		}
		rec.Source = append(rec.Source, entry)
	}

	for _, env := range []string{EnvBuild, EnvHost, EnvRun} {
		rec.Requirements[env] = specRecords(o.Requirements[env])
	}
	return rec
}

func specRecords(specs []*Spec) []SpecRecord {
	records := make([]SpecRecord, 0, len(specs))
	for _, s := range specs {
		attrs := []string{}
		if s.IsPin {
			attrs = append(attrs, "is_pin")
		}
		if s.FromRunExport {
			attrs = append(attrs, "from_run_export")
		}
		if s.FromPinnings {
			attrs = append(attrs, "from_pinnings")
		}

		record := SpecRecord{
			Spec:  s.Raw,
			Name:  s.FinalName,
			Attrs: attrs,
		}
		if res, ok := s.Resolved(); ok {
			record.Resolved.FinalVersion = []string{res.Version, res.BuildString}
		}
		records = append(records, record)
	}
	return records
}
