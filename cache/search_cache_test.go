package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchKeyNormalization(t *testing.T) {
	// 同一查询的大小写/留白变体必须命中同一个 key
	assert.Equal(t, searchKey("Tent-4p"), searchKey("  tent-4P "))
	assert.Equal(t, "gear:search:tent", searchKey("Tent"))
	assert.Equal(t, "gear:search:", searchKey("   "))
	assert.NotEqual(t, searchKey("tent"), searchKey("stove"))
}
