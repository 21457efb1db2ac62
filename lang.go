package mmdbkit

import "golang.org/x/text/language"

// ValidateLanguages checks that every entry in meta.Languages is a
// well-formed BCP 47 language tag (the format the languages field is
// documented to hold) and that meta.Description carries a description
// for each one. It is not called automatically by Read or Write - the
// format itself doesn't require it - but callers building or auditing a
// database can use it to catch a typo'd tag before it ships.
func ValidateLanguages(meta *Metadata) error {
	for _, lang := range meta.Languages {
		if _, err := language.Parse(lang); err != nil {
			return wrapError(KindShape, err, "language tag %q is not valid BCP 47", lang)
		}
		if _, ok := meta.Description[lang]; !ok {
			return newError(KindShape, "language %q has no matching description entry", lang)
		}
	}
	return nil
}
