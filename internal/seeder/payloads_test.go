package seeder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadKnownTypes(t *testing.T) {
	for _, eventType := range EventTypes {
		t.Run(eventType, func(t *testing.T) {
			payload, err := Payload(eventType)
			require.NoError(t, err)
			require.True(t, json.Valid(payload))

			var fields map[string]any
			require.NoError(t, json.Unmarshal(payload, &fields))
			assert.Equal(t, eventType, fields["event_type"])
			assert.Greater(t, len(fields), 1, "payloads carry more than just the type")
		})
	}
}

func TestPayloadUnknownType(t *testing.T) {
	payload, err := Payload("unicorn.spotted")
	assert.Error(t, err)
	assert.Nil(t, payload)
}

func TestRandomType(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, EventTypes, RandomType())
	}
}
