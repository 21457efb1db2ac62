package mmdbkit

// metadataToValue builds the ordered Map a Metadata struct is encoded as,
// in the field order the format's original writer uses.
func metadataToValue(m Metadata) Map {
	description := make(Map, 0, len(m.Description))
	for lang, text := range m.Description {
		description = append(description, MapEntry{Key: String(lang), Value: String(text)})
	}

	languages := make(Array, 0, len(m.Languages))
	for _, lang := range m.Languages {
		languages = append(languages, String(lang))
	}

	return Map{
		{Key: String("binary_format_major_version"), Value: Uint16(m.BinaryFormatMajorVersion)},
		{Key: String("binary_format_minor_version"), Value: Uint16(m.BinaryFormatMinorVersion)},
		{Key: String("build_epoch"), Value: Uint64(m.BuildEpoch)},
		{Key: String("database_type"), Value: String(m.DatabaseType)},
		{Key: String("description"), Value: description},
		{Key: String("ip_version"), Value: Uint16(m.IPVersion)},
		{Key: String("languages"), Value: languages},
		{Key: String("node_count"), Value: Uint32(m.NodeCount)},
		{Key: String("record_size"), Value: Uint16(m.RecordSize)},
	}
}

// valueToMetadata is the inverse of metadataToValue, applied to whatever
// Map the decoder parsed out of the file. Missing fields are left at
// their zero value; unexpected value types for a known key are a format
// error rather than a silent truncation.
func valueToMetadata(v Value) (*Metadata, error) {
	m, ok := v.(Map)
	if !ok {
		return nil, newError(KindFormat, "metadata value is not a map")
	}

	meta := &Metadata{Description: map[string]string{}}

	for _, entry := range m {
		key, ok := entry.Key.(String)
		if !ok {
			continue
		}

		switch string(key) {
		case "binary_format_major_version":
			n, err := asUint16(entry.Value)
			if err != nil {
				return nil, err
			}
			meta.BinaryFormatMajorVersion = n
		case "binary_format_minor_version":
			n, err := asUint16(entry.Value)
			if err != nil {
				return nil, err
			}
			meta.BinaryFormatMinorVersion = n
		case "build_epoch":
			n, ok := entry.Value.(Uint64)
			if !ok {
				return nil, newError(KindFormat, "metadata build_epoch is not a uint64")
			}
			meta.BuildEpoch = uint64(n)
		case "database_type":
			s, ok := entry.Value.(String)
			if !ok {
				return nil, newError(KindFormat, "metadata database_type is not a string")
			}
			meta.DatabaseType = string(s)
		case "description":
			desc, ok := entry.Value.(Map)
			if !ok {
				return nil, newError(KindFormat, "metadata description is not a map")
			}
			for _, d := range desc {
				lang, ok := d.Key.(String)
				if !ok {
					continue
				}
				text, ok := d.Value.(String)
				if !ok {
					return nil, newError(KindFormat, "metadata description value is not a string")
				}
				meta.Description[string(lang)] = string(text)
			}
		case "ip_version":
			n, err := asUint16(entry.Value)
			if err != nil {
				return nil, err
			}
			meta.IPVersion = n
		case "languages":
			langs, ok := entry.Value.(Array)
			if !ok {
				return nil, newError(KindFormat, "metadata languages is not an array")
			}
			for _, l := range langs {
				s, ok := l.(String)
				if !ok {
					return nil, newError(KindFormat, "metadata languages entry is not a string")
				}
				meta.Languages = append(meta.Languages, string(s))
			}
		case "node_count":
			n, ok := entry.Value.(Uint32)
			if !ok {
				return nil, newError(KindFormat, "metadata node_count is not a uint32")
			}
			meta.NodeCount = uint32(n)
		case "record_size":
			n, err := asUint16(entry.Value)
			if err != nil {
				return nil, err
			}
			meta.RecordSize = n
		}
	}

	return meta, nil
}

func asUint16(v Value) (uint16, error) {
	n, ok := v.(Uint16)
	if !ok {
		return 0, newError(KindFormat, "expected a uint16 metadata value, got %T", v)
	}
	return uint16(n), nil
}
