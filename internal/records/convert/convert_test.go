package convert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopworks/therapysync/internal/records/domain"
)

func TestBolusRoundTrip(t *testing.T) {
	pumpID := int64(42)
	remoteID := "r1"
	in := domain.Bolus{
		Base: domain.Base{ID: 7, Timestamp: 1000, RemoteID: &remoteID, Valid: true},
		DeviceRef: domain.DeviceRef{
			PumpType:   "dana",
			PumpSerial: "SN-1",
			PumpID:     &pumpID,
		},
		Amount: 1.5,
		Type:   domain.BolusSMB,
		Notes:  "correction",
	}

	out := BolusToDomain(BolusToStorage(in))
	require.Equal(t, in, out)
}

func TestTemporaryBasalRoundTrip(t *testing.T) {
	in := domain.TemporaryBasal{
		Base:       domain.Base{ID: 3, Timestamp: 2000, Valid: true},
		Rate:       120,
		Duration:   1_800_000,
		IsAbsolute: false,
		Reason:     "eating soon",
	}

	out := TemporaryBasalToDomain(TemporaryBasalToStorage(in))
	require.Equal(t, in, out)
}

func TestDeviceStatusRoundTrip(t *testing.T) {
	in := domain.DeviceStatus{
		Base:            domain.Base{ID: 1, Timestamp: 3000, Valid: true},
		Device:          "openaps://phone",
		UploaderBattery: 80,
		Pump:            map[string]any{"battery": map[string]any{"percent": float64(75)}},
		Suggested:       map[string]any{"rate": float64(0.5)},
	}

	out := DeviceStatusToDomain(DeviceStatusToStorage(in))
	require.Equal(t, in, out)
}

func TestNilRemoteIDStaysNil(t *testing.T) {
	in := domain.Carbs{Base: domain.Base{Timestamp: 1000, Valid: true}, Amount: 12}

	out := CarbsToDomain(CarbsToStorage(in))
	require.Nil(t, out.RemoteID)
	require.Equal(t, in, out)
}
