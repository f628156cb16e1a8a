package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAndOffset(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, Params{Page: 3, Limit: 1000}.Normalize())
	assert.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Params{Page: -1, Limit: 10}.Offset())
}

func TestNewPageNeverNil(t *testing.T) {
	p := NewPage[int](nil, 0, Params{})
	assert.NotNil(t, p.Items)
	assert.Equal(t, 1, p.Page)
}
