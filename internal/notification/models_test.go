package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeliveryRecordPending(t *testing.T) {
	// One email was attempted but neither delivered nor bounced.
	record := DeliveryRecord{
		Email:      ChannelStats{Attempted: 3, Delivered: 1, Failed: 1},
		Successful: 1,
		Failed:     1,
	}
	require.Equal(t, 1, record.Pending())

	require.Zero(t, DeliveryRecord{}.Pending())
}

func TestDeliveryRecordJSONIncludesPending(t *testing.T) {
	record := DeliveryRecord{
		Email:           ChannelStats{Attempted: 2, Delivered: 1},
		TotalRecipients: 2,
		Successful:      1,
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.EqualValues(t, 1, decoded["pending"])
	require.Contains(t, decoded, "email")
	require.EqualValues(t, 2, decoded["totalRecipients"])
}
