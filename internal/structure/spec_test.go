package structure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_DefaultsFlags(t *testing.T) {
	s, err := Create(Spec{Type: KindString})
	require.NoError(t, err)

	str, ok := s.(*String)
	require.True(t, ok)
	assert.False(t, str.CanBeNull)
	assert.False(t, str.CanBeOptional)
	assert.Nil(t, str.Value)
}

func TestCreate_Literals(t *testing.T) {
	s := MustCreate(Spec{Type: KindString, Value: "post"})
	lit, ok := StringLiteral(s)
	require.True(t, ok)
	assert.Equal(t, "post", lit)

	n := MustCreate(Spec{Type: KindNumber, Value: 3})
	require.NotNil(t, n.(*Number).Value)
	assert.Equal(t, 3.0, *n.(*Number).Value)

	b := MustCreate(Spec{Type: KindBoolean, Value: true})
	assert.True(t, *b.(*Boolean).Value)
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		field string
	}{
		{"missing type", Spec{}, "type"},
		{"unknown type", Spec{Type: "Tuple"}, "type"},
		{"object without attributes", Spec{Type: KindObject}, "attributes"},
		{"object attribute without value", Spec{Type: KindObject, Attributes: map[string]AttributeSpec{"a": {}}}, "attributes.a"},
		{"array without element", Spec{Type: KindArray}, "of"},
		{"reference without target", Spec{Type: KindReference}, "to"},
		{"and without children", Spec{Type: KindAnd}, "children"},
		{"or with nil child", Spec{Type: KindOr, Children: []Structure{nil}}, "children[0]"},
		{"lazy without producer", Spec{Type: KindLazy, HashInput: []string{"x"}}, "get"},
		{"lazy without hash input", Spec{Type: KindLazy, Get: func() Structure { return &Unknown{} }}, "hashInput"},
		{"string with number literal", Spec{Type: KindString, Value: 1}, "value"},
		{"boolean with string literal", Spec{Type: KindBoolean, Value: "true"}, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(tt.spec)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestCreate_EmptyCombinatorsAreValid(t *testing.T) {
	and, err := Create(Spec{Type: KindAnd, Children: []Structure{}})
	require.NoError(t, err)
	assert.Empty(t, and.(*And).Children)

	or, err := Create(Spec{Type: KindOr, Children: []Structure{}})
	require.NoError(t, err)
	assert.Empty(t, or.(*Or).Children)
}

func TestCreate_NeverForcesLazy(t *testing.T) {
	calls := 0
	s, err := Create(Spec{
		Type:      KindLazy,
		Get:       func() Structure { calls++; return &Unknown{} },
		HashInput: []string{"document", "post"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	s.(*Lazy).Force()
	assert.Equal(t, 1, calls)
}

func TestCreate_CopiesSlices(t *testing.T) {
	children := []Structure{&Null{}}
	s := MustCreate(Spec{Type: KindOr, Children: children})
	children[0] = &Unknown{}

	assert.Equal(t, KindNull, s.(*Or).Children[0].Kind())
}

func TestMustCreate_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCreate(Spec{Type: KindArray}) })
}

func TestLazyForce_NilProducerResult(t *testing.T) {
	l := &Lazy{Get: func() Structure { return nil }, HashInput: []string{"nil"}}
	assert.Equal(t, KindUnknown, l.Force().Kind())
}
