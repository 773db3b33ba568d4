package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityDeterminism(t *testing.T) {
	id1 := Identity([]string{"document", "post"})
	id2 := Identity([]string{"document", "post"})

	assert.Equal(t, id1, id2, "Identity must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestIdentityChangesWithInput(t *testing.T) {
	base := Identity([]string{"document", "post"})

	assert.NotEqual(t, base, Identity([]string{"document", "author"}))
	assert.NotEqual(t, base, Identity([]string{"registered", "post"}))
	assert.NotEqual(t, base, Identity([]string{"documentpost"}), "token boundaries are part of the identity")
	assert.NotEqual(t, base, Identity([]string{"document", "post", "optional"}))
}

func TestIdentityNFCNormalization(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	assert.Equal(t, Identity([]string{composed}), Identity([]string{decomposed}))
}

func TestLazyHashIgnoresProducer(t *testing.T) {
	a := &Lazy{Get: func() Structure { return &Null{} }, HashInput: []string{"x"}}
	b := &Lazy{Get: func() Structure { return &Unknown{} }, HashInput: []string{"x"}}

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestAliasName(t *testing.T) {
	id := Identity([]string{"document", "post"})
	name := AliasName(id)

	assert.True(t, strings.HasPrefix(name, "Ref_"))
	assert.Equal(t, "Ref_"+id[:16], name)
	assert.Equal(t, name, AliasName(Identity([]string{"document", "post"})))
	assert.Equal(t, "Ref_abc", AliasName("abc"))
}

func TestCanonicalTokens(t *testing.T) {
	assert.Equal(t, `["a","<b>","c\"d"]`, string(canonicalTokens([]string{"a", "<b>", `c"d`})))
	assert.Equal(t, `[]`, string(canonicalTokens(nil)))
}
