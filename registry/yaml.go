package registry

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads a registry document of the form
//
//	abilities:
//	  - id: 1
//	    name: ...
func LoadYAML(r io.Reader) (*Registry, error) {
	var doc struct {
		Abilities []Entry `yaml:"abilities"`
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "registry: yaml")
	}

	return newRegistry(doc.Abilities)
}
