package storage

// Record is satisfied by a pointer to any storage entity embedding
// SyncColumns. The transaction operations are generic over it.
type Record interface {
	GetID() int64
	SetID(id int64)
	GetTimestamp() int64
	GetRemoteID() *string
	SetRemoteID(remoteID *string)
	IsValid() bool
	SetValid(valid bool)
}

// Interval is a record covering a time span.
type Interval interface {
	Record
	GetDuration() int64
	SetDuration(duration int64)
}

// Device is a record carrying a device identity triple.
type Device interface {
	Record
	DeviceKey() (pumpID *int64, pumpType, pumpSerial string)
}

// RecordPtr constrains a type parameter to "pointer to entity E".
type RecordPtr[E any] interface {
	*E
	Record
}

type IntervalPtr[E any] interface {
	*E
	Interval
}

type DevicePtr[E any] interface {
	*E
	Device
}

func (c *SyncColumns) GetID() int64                 { return c.ID }
func (c *SyncColumns) SetID(id int64)               { c.ID = id }
func (c *SyncColumns) GetTimestamp() int64          { return c.Timestamp }
func (c *SyncColumns) GetRemoteID() *string         { return c.RemoteID }
func (c *SyncColumns) SetRemoteID(remoteID *string) { c.RemoteID = remoteID }
func (c *SyncColumns) IsValid() bool                { return c.Valid }
func (c *SyncColumns) SetValid(valid bool)          { c.Valid = valid }

func (c *DeviceColumns) DeviceKey() (*int64, string, string) {
	return c.PumpID, c.PumpType, c.PumpSerial
}

func (e *TemporaryBasal) GetDuration() int64          { return e.Duration }
func (e *TemporaryBasal) SetDuration(duration int64)  { e.Duration = duration }
func (e *ExtendedBolus) GetDuration() int64           { return e.Duration }
func (e *ExtendedBolus) SetDuration(duration int64)   { e.Duration = duration }
func (e *TemporaryTarget) GetDuration() int64         { return e.Duration }
func (e *TemporaryTarget) SetDuration(duration int64) { e.Duration = duration }
func (e *RunningMode) GetDuration() int64             { return e.Duration }
func (e *RunningMode) SetDuration(duration int64)     { e.Duration = duration }
