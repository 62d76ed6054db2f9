package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAPIKeys(t *testing.T) {
	m := parseAPIKeys("")
	assert.Empty(t, m)

	m = parseAPIKeys("key1")
	assert.Len(t, m, 1)
	assert.Equal(t, "default", m["key1"])

	m = parseAPIKeys("key1:crm,key2:billing")
	assert.Len(t, m, 2)
	assert.Equal(t, "crm", m["key1"])
	assert.Equal(t, "billing", m["key2"])

	// A trailing colon or blank caller falls back to the default caller.
	m = parseAPIKeys("mykey:")
	assert.Len(t, m, 1)
	assert.Equal(t, "default", m["mykey"])

	m = parseAPIKeys("mykey:  ")
	assert.Len(t, m, 1)
	assert.Equal(t, "default", m["mykey"])

	m = parseAPIKeys(" key1 , key2:crm ")
	assert.Len(t, m, 2)
	assert.Equal(t, "default", m["key1"])
	assert.Equal(t, "crm", m["key2"])
}
