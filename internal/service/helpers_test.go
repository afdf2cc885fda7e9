package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListCacheKeyDeterministic(t *testing.T) {
	a := listCacheKey("projects", "svc-1", "true", "villa", "1", "20", "", "")
	b := listCacheKey("projects", "svc-1", "true", "villa", "1", "20", "", "")
	assert.Equal(t, "cms:projects:list:svc-1:true:villa:1:20::", a)
	assert.Equal(t, a, b)
}

func TestListCacheKeyEscapesColons(t *testing.T) {
	key := listCacheKey("projects", "", "", "a:b", "1", "20", "", "")
	assert.Equal(t, "cms:projects:list:::a|b:1:20::", key)
}

func TestPointerParts(t *testing.T) {
	assert.Equal(t, "", boolPart(nil))
	yes := true
	assert.Equal(t, "true", boolPart(&yes))

	assert.Equal(t, "", stringPart(nil))
	id := "svc-1"
	assert.Equal(t, "svc-1", stringPart(&id))
}
