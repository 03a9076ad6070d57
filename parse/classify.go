package parse

import (
	"strings"

	"github.com/fwojciec/manparse"
)

// Classifier assigns a complexity tier from curated command sets, falling
// back to thresholds on flag and example counts.
type Classifier struct {
	basic        map[string]bool
	intermediate map[string]bool
	advanced     map[string]bool
	common       map[string]bool

	basicMaxFlags       int
	basicMaxExamples    int
	advancedMinFlags    int
	advancedMinExamples int
}

// NewClassifier returns a Classifier configured from rules.
func NewClassifier(rules *manparse.Rules) *Classifier {
	return &Classifier{
		basic:               stringSet(rules.BasicCommands),
		intermediate:        stringSet(rules.IntermediateCommands),
		advanced:            stringSet(rules.AdvancedCommands),
		common:              stringSet(rules.CommonCommands),
		basicMaxFlags:       rules.BasicMaxFlags,
		basicMaxExamples:    rules.BasicMaxExamples,
		advancedMinFlags:    rules.AdvancedMinFlags,
		advancedMinExamples: rules.AdvancedMinExamples,
	}
}

// Classify returns the complexity tier for a command. Curated sets are
// consulted in the order basic, advanced, intermediate.
func (c *Classifier) Classify(name string, flags, examples int) manparse.Complexity {
	name = strings.ToLower(name)
	switch {
	case c.basic[name]:
		return manparse.ComplexityBasic
	case c.advanced[name]:
		return manparse.ComplexityAdvanced
	case c.intermediate[name]:
		return manparse.ComplexityIntermediate
	case flags <= c.basicMaxFlags && examples <= c.basicMaxExamples:
		return manparse.ComplexityBasic
	case flags >= c.advancedMinFlags || examples >= c.advancedMinExamples:
		return manparse.ComplexityAdvanced
	}
	return manparse.ComplexityIntermediate
}

// IsCommon reports whether name is in the commonly used set.
func (c *Classifier) IsCommon(name string) bool {
	return c.common[strings.ToLower(name)]
}
