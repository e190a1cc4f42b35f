package request

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yumyai/emgapi/pkg/model"
)

func TestNewPageRequest(t *testing.T) {
	p := NewPageRequest(url.Values{}, 20, 100)
	assert.Equal(t, PageRequest{Page: 1, Page_Size: 20}, p)
	assert.Equal(t, model.Window{Offset: 0, Limit: 20}, p.Window())

	p = NewPageRequest(url.Values{"page": {"3"}, "page_size": {"10"}}, 20, 100)
	assert.Equal(t, model.Window{Offset: 20, Limit: 10}, p.Window())

	p = NewPageRequest(url.Values{"page": {"-1"}, "page_size": {"5000"}}, 20, 100)
	assert.Equal(t, PageRequest{Page: 1, Page_Size: 100}, p)

	p = NewPageRequest(url.Values{"page": {"x"}}, 20, 100)
	assert.Equal(t, 1, p.Page)
}

func TestPages(t *testing.T) {
	p := PageRequest{Page: 1, Page_Size: 20}
	assert.Equal(t, 1, p.Pages(0))
	assert.Equal(t, 1, p.Pages(20))
	assert.Equal(t, 2, p.Pages(21))
}

func TestBiomeRelation(t *testing.T) {
	for _, r := range []BiomeRelation{BiomeRelationChildren, BiomeRelationDescendants, BiomeRelationSamples, BiomeRelationStudies} {
		assert.Equal(t, r, NewBiomeRelation(r.String()))
	}
	assert.Equal(t, BiomeRelationUnknown, NewBiomeRelation("parents"))
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool("1"))
	assert.False(t, ParseBool(""))
	assert.False(t, ParseBool("no"))
}
