package filestorage

import (
	"github.com/samber/lo"
)

// ExtensionPolicy is a case-insensitive allow-list of file extensions
type ExtensionPolicy struct {
	allowed map[string]struct{}
}

// NewExtensionPolicy builds a policy from extensions in any case, with or
// without the leading dot
func NewExtensionPolicy(extensions []string) *ExtensionPolicy {
	normalized := lo.Without(lo.Uniq(lo.Map(extensions, func(ext string, _ int) string {
		return NormalizeExtension(ext)
	})), "")

	allowed := make(map[string]struct{}, len(normalized))
	for _, ext := range normalized {
		allowed[ext] = struct{}{}
	}
	return &ExtensionPolicy{allowed: allowed}
}

// Allows reports whether ext is on the list. Files without an extension are
// never allowed.
func (p *ExtensionPolicy) Allows(ext string) bool {
	_, ok := p.allowed[NormalizeExtension(ext)]
	return ok
}
