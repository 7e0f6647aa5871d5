package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("dirty")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")
	PutBuffer(again)

	big := bytes.NewBuffer(make([]byte, 0, maxPooledBuffer+1))
	PutBuffer(big) // dropped, must not panic
}

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON(map[string]string{"order_id": "1001"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":"1001"}`, string(data))

	// Result must not alias a pooled buffer
	other, err := EncodeJSON(map[string]string{"order_id": "9999"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":"1001"}`, string(data))
	assert.JSONEq(t, `{"order_id":"9999"}`, string(other))
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, DecodeJSON([]byte(`{"order_id":"1001"}`), &v))
	assert.Equal(t, "1001", v.OrderID)

	assert.Error(t, DecodeJSON([]byte(`{"order_id":"1","extra":true}`), &v))
	assert.Error(t, DecodeJSON([]byte(`{`), &v))
}
