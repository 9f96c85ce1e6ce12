package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	assert.True(t, KindModule.IsModuleOrNamespace())
	assert.True(t, KindNamespace.IsModuleOrNamespace())
	for _, k := range []Kind{KindProject, KindType, KindFunction, KindMethod, KindConstant, KindVariable} {
		assert.False(t, k.IsModuleOrNamespace(), k.String())
	}
	assert.Equal(t, "namespace", KindNamespace.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
