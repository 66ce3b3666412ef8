package generator

import (
	"github.com/imyousuf/nuktatestify/internal/config"
	"github.com/imyousuf/nuktatestify/internal/route"
)

// Kind identifies one test template variant.
type Kind int

const (
	Basic Kind = iota
	Authenticated
	Validation
	ErrorHandling
	Integration
	Performance
)

// String returns the template name of the variant.
func (k Kind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Authenticated:
		return "authenticated"
	case Validation:
		return "validation"
	case ErrorHandling:
		return "errorHandling"
	case Integration:
		return "integration"
	case Performance:
		return "performance"
	default:
		return "unknown"
	}
}

// variantTable lists every variant in emission order with the condition
// that enables it.
var variantTable = []struct {
	kind    Kind
	enabled func(d route.Descriptor, cfg config.GenerationConfig) bool
}{
	{Basic, func(route.Descriptor, config.GenerationConfig) bool { return true }},
	{Authenticated, func(d route.Descriptor, cfg config.GenerationConfig) bool {
		return d.Authenticated && cfg.IncludeAuthTests
	}},
	{Validation, func(_ route.Descriptor, cfg config.GenerationConfig) bool { return cfg.IncludeValidationTests }},
	{ErrorHandling, func(_ route.Descriptor, cfg config.GenerationConfig) bool { return cfg.IncludeErrorTests }},
	{Integration, func(_ route.Descriptor, cfg config.GenerationConfig) bool { return cfg.IncludeIntegrationTests }},
	{Performance, func(_ route.Descriptor, cfg config.GenerationConfig) bool { return cfg.IncludePerformanceTests }},
}

// Variants returns the variants rendered for d, in emission order.
func Variants(d route.Descriptor, cfg config.GenerationConfig) []Kind {
	var kinds []Kind
	for _, v := range variantTable {
		if v.enabled(d, cfg) {
			kinds = append(kinds, v.kind)
		}
	}
	return kinds
}
