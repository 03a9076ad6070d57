// Package toml loads extraction rules from TOML files.
package toml

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/manparse"
)

// LoadRules reads the rules file at path over manparse.DefaultRules. Keys
// absent from the file keep their default values; lists present in the file
// replace the default list.
//
// Returns ENOTFOUND if the file does not exist and EINVALID if it cannot be
// decoded or contains unknown keys.
func LoadRules(path string) (*manparse.Rules, error) {
	rules := manparse.DefaultRules()

	md, err := toml.DecodeFile(path, rules)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, manparse.Errorf(manparse.ENOTFOUND, "rules file %s not found", path)
	} else if err != nil {
		return nil, manparse.Errorf(manparse.EINVALID, "rules file %s: %v", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, manparse.Errorf(manparse.EINVALID, "rules file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := validate(rules); err != nil {
		return nil, manparse.Errorf(manparse.EINVALID, "rules file %s: %v", path, err)
	}
	return rules, nil
}

// DecodeRules parses rules from TOML text over manparse.DefaultRules.
// Returns EINVALID if the text cannot be decoded.
func DecodeRules(data string) (*manparse.Rules, error) {
	rules := manparse.DefaultRules()
	if _, err := toml.Decode(data, rules); err != nil {
		return nil, manparse.Errorf(manparse.EINVALID, "rules: %v", err)
	}
	if err := validate(rules); err != nil {
		return nil, manparse.Errorf(manparse.EINVALID, "rules: %v", err)
	}
	return rules, nil
}

func validate(r *manparse.Rules) error {
	switch {
	case r.BasicMaxFlags > r.AdvancedMinFlags:
		return errors.New("basic_max_flags exceeds advanced_min_flags")
	case r.BasicMaxExamples > r.AdvancedMinExamples:
		return errors.New("basic_max_examples exceeds advanced_min_examples")
	case r.MinTokenLength < 1:
		return errors.New("min_token_length must be positive")
	case r.MaxTokenLength < r.MinTokenLength:
		return errors.New("max_token_length is below min_token_length")
	}
	return nil
}
