package service

import (
	"context"

	auditdomain "github.com/loopworks/therapysync/internal/audit/domain"
	"github.com/loopworks/therapysync/internal/events"
	syncdomain "github.com/loopworks/therapysync/internal/persistence/domain"
	"github.com/loopworks/therapysync/internal/records/convert"
	records "github.com/loopworks/therapysync/internal/records/domain"
	"github.com/loopworks/therapysync/internal/records/storage"
	"github.com/loopworks/therapysync/internal/store/ops"
)

// SyncCGMValues reconciles one CGM source upload. Glucose values dedupe
// by (timestamp, source sensor); a reported sensor insertion and each
// calibration materialize as therapy events exactly once, so re-uploads
// leave no extra rows and no extra audit entries.
func (s *Service) SyncCGMValues(ctx context.Context, values []records.GlucoseValue, calibrations []records.Calibration, sensorInsertionTime *int64, source auditdomain.Source) (*syncdomain.Result[records.GlucoseValue], error) {
	incoming := make([]*storage.GlucoseValue, 0, len(values))
	for _, v := range values {
		incoming = append(incoming, convert.GlucoseValueToStorage(v))
	}
	s.metrics.ObserveBatch(len(incoming))

	out, err := ops.SyncCGM(ctx, s.db, incoming, calibrations, sensorInsertionTime)
	if err != nil {
		return nil, s.storeErr(ctx, "sync_cgm", records.KindGlucoseValue, values, err)
	}

	result := records.NewTransactionResult[records.GlucoseValue]()
	collect(s, glucoseValueBinding, out.Values.Inserted, events.OutcomeInserted, &result.Inserted)
	collect(s, glucoseValueBinding, out.Values.Updated, events.OutcomeUpdated, &result.Updated)
	collect(s, glucoseValueBinding, out.Values.NotUpdated, "", &result.NotUpdated)

	if source == "" {
		source = auditdomain.SourceSensor
	}
	var entries []auditdomain.Entry
	for _, ev := range out.SensorInsertions {
		d := convert.TherapyEventToDomain(ev)
		result.SensorInsertionsInserted = append(result.SensorInsertionsInserted, d)
		s.publish(records.KindTherapyEvent, events.OutcomeInserted, ev.ID, ev.Timestamp)
		entries = append(entries, auditdomain.Entry{
			Action: auditdomain.ActionSensorChange,
			Source: source,
			Values: []auditdomain.ValueWithUnit{auditdomain.Timestamp(d.Timestamp)},
		})
	}
	for _, ev := range out.Calibrations {
		d := convert.TherapyEventToDomain(ev)
		result.CalibrationsInserted = append(result.CalibrationsInserted, d)
		s.publish(records.KindTherapyEvent, events.OutcomeInserted, ev.ID, ev.Timestamp)
		values := []auditdomain.ValueWithUnit{auditdomain.Timestamp(d.Timestamp)}
		if d.GlucoseValue != nil {
			values = append(values, auditdomain.MgDl(*d.GlucoseValue))
		}
		entries = append(entries, auditdomain.Entry{
			Action: auditdomain.ActionCalibration,
			Source: source,
			Values: values,
		})
	}
	s.observe(records.KindTherapyEvent, events.OutcomeInserted,
		len(out.SensorInsertions)+len(out.Calibrations))
	s.logAudit(ctx, entries)
	return result, nil
}
