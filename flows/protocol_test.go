package flows

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry([]ProtocolRow{
		{Decimal: "6", Keyword: "TCP"},
		{Decimal: " 17 ", Keyword: " Udp "},
		{Decimal: "143", Keyword: "Ethernet"},
		{Decimal: "144", Keyword: ""},
		{Decimal: "143", Keyword: "ETH"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	for number, want := range map[string]string{
		"6":   "tcp",
		"17":  "udp",
		"143": "eth",
	} {
		name, ok := reg.Lookup(number)
		assert.True(t, ok, number)
		assert.Equal(t, want, name, number)
	}

	name, ok := reg.Lookup("144")
	assert.False(t, ok)
	assert.Equal(t, "unknown protocol 144", name)
	assert.Equal(t, "unknown protocol 99", reg.Resolve(" 99"))
	assert.Equal(t, "tcp", reg.Resolve("6"))
}

func TestRegistryMalformed(t *testing.T) {
	_, err := NewRegistry([]ProtocolRow{
		{Line: 2, Decimal: "6", Keyword: "TCP"},
		{Line: 3, Decimal: " ", Keyword: "UDP"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedReferenceRow))
	assert.True(t, errors.Is(err, ErrMissingField))
	var merr *MalformedRowError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, ProtocolTable, merr.Table)
	assert.Equal(t, 3, merr.Line)
	assert.Equal(t, "Decimal", merr.Field)
	assert.Equal(t, "protocol table line 3: field Decimal: missing required field", err.Error())
}

func TestRegistryEmpty(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, "unknown protocol 6", reg.Resolve("6"))
}

func TestRegistryRebuild(t *testing.T) {
	rows := []ProtocolRow{
		{Decimal: "6", Keyword: "TCP"},
		{Decimal: "17", Keyword: "udp"},
		{Decimal: " 6 ", Keyword: "Tcp-Again"},
		{Decimal: "143", Keyword: ""},
		{Decimal: "47", Keyword: "GRE"},
	}
	first, err := NewRegistry(rows)
	require.NoError(t, err)
	second, err := NewRegistry(rows)
	require.NoError(t, err)

	assert.Equal(t, first.Len(), second.Len())
	for _, number := range []string{"6", "17", "47", "143", "255", " 6", "TCP"} {
		name1, ok1 := first.Lookup(number)
		name2, ok2 := second.Lookup(number)
		assert.Equal(t, name1, name2, number)
		assert.Equal(t, ok1, ok2, number)
	}
	assert.Equal(t, "tcp-again", second.Resolve("6"))
}
