// Package display decides how saved segmentation stages are presented in the
// viewer. The policy is data: an ordered list of name patterns with the
// presentation each one gets, loaded from YAML.
package display

import (
	_ "embed"
	"fmt"
	"os"
	"path"

	yml "gopkg.in/yaml.v2"

	"github.com/robert-malhotra/go-usvol/viewer"
)

//go:embed policy.yaml
var builtin []byte

// Rule sets presentation fields on the layers whose name matches. Unset
// fields leave the layer's value alone.
type Rule struct {
	Match    string   `yaml:"match"`
	Opacity  *float64 `yaml:"opacity,omitempty"`
	Visible  *bool    `yaml:"visible,omitempty"`
	Colormap string   `yaml:"colormap,omitempty"`
}

// Policy is an ordered rule list plus the rule for unmatched names.
type Policy struct {
	Rules   []Rule `yaml:"rules"`
	Default Rule   `yaml:"default"`
}

// Builtin returns the policy shipped with the package.
func Builtin() *Policy {
	p, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("display: built-in policy: %v", err))
	}
	return p
}

// Load reads a policy file. An empty path returns the built-in policy.
func Load(name string) (*Policy, error) {
	if name == "" {
		return Builtin(), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// Parse decodes a YAML policy and checks its patterns.
func Parse(b []byte) (*Policy, error) {
	p := &Policy{}
	if err := yml.UnmarshalStrict(b, p); err != nil {
		return nil, err
	}
	for i, r := range p.Rules {
		if r.Match == "" {
			return nil, fmt.Errorf("rule %d: empty match", i)
		}
		if _, err := path.Match(r.Match, ""); err != nil {
			return nil, fmt.Errorf("rule %d: pattern %q: %w", i, r.Match, err)
		}
	}
	return p, nil
}

// Rule returns the rule that applies to name.
func (p *Policy) Rule(name string) Rule {
	for _, r := range p.Rules {
		if ok, _ := path.Match(r.Match, name); ok {
			return r
		}
	}
	return p.Default
}

// Present returns m with the matching rule applied.
func (p *Policy) Present(m viewer.Meta) viewer.Meta {
	r := p.Rule(m.Name)
	if r.Opacity != nil {
		m.Opacity = *r.Opacity
	}
	if r.Visible != nil {
		m.Visible = *r.Visible
	}
	if r.Colormap != "" {
		m.Colormap = r.Colormap
	}
	return m
}

// Apply returns a copy of layers with the policy applied to every layer's
// metadata.
func (p *Policy) Apply(layers []viewer.LayerData) []viewer.LayerData {
	out := make([]viewer.LayerData, len(layers))
	for i, l := range layers {
		l.Meta = p.Present(l.Meta)
		out[i] = l
	}
	return out
}
