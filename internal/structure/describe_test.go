package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	s := &Object{Attributes: map[string]Attribute{
		"title": {Value: &String{CanBeOptional: true}, Optional: true},
		"_type": {Value: &String{Value: StringPtr("post")}},
		"tags":  {Value: &Array{Of: &String{}}},
	}}

	want := strings.Join([]string{
		"Object",
		"  ._type",
		`    String "post"`,
		"  .tags",
		"    Array",
		"      String",
		"  .title?",
		"    String (optional)",
		"",
	}, "\n")
	assert.Equal(t, want, Describe(s))
}

func TestDescribe_RecursiveLazyTerminates(t *testing.T) {
	var node *Lazy
	node = &Lazy{
		Get: func() Structure {
			return &Object{Attributes: map[string]Attribute{
				"children": {Value: &Array{Of: node}},
			}}
		},
		HashInput: []string{"registered", "node"},
	}

	out := Describe(node)
	alias := AliasName(node.Hash())

	assert.Contains(t, out, "Lazy "+alias+" registered/node")
	assert.Contains(t, out, "Lazy "+alias+" (see above)")
}
