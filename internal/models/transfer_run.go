package models

import (
	"fmt"
	"time"
)

// TransferRun is a completed [TransferReport] persisted to the run history.
type TransferRun struct {
	id                 string
	sequence           int
	sourceService      string
	destinationService string
	report             *TransferReport
	createdAt          time.Time
	updatedAt          time.Time
	deletedAt          *time.Time
}

var _ Model = (*TransferRun)(nil)

// NewTransferRun wraps a report for persistence. The id is assigned by the repository.
func NewTransferRun(sequence int, sourceService, destinationService string, report *TransferReport) *TransferRun {
	now := time.Now()
	return &TransferRun{
		sequence:           sequence,
		sourceService:      sourceService,
		destinationService: destinationService,
		report:             report,
		createdAt:          now,
		updatedAt:          now,
	}
}

func (r *TransferRun) ID() string                 { return r.id }
func (r *TransferRun) Sequence() int              { return r.sequence }
func (r *TransferRun) SourceService() string      { return r.sourceService }
func (r *TransferRun) DestinationService() string { return r.destinationService }
func (r *TransferRun) Report() *TransferReport    { return r.report }
func (r *TransferRun) CreatedAt() time.Time       { return r.createdAt }
func (r *TransferRun) UpdatedAt() time.Time       { return r.updatedAt }
func (r *TransferRun) DeletedAt() *time.Time      { return r.deletedAt }

func (r *TransferRun) SetID(id string)           { r.id = id }
func (r *TransferRun) SetSequence(sequence int)  { r.sequence = sequence }
func (r *TransferRun) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *TransferRun) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *TransferRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks the run has an id, both service names and a report.
func (r *TransferRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("transfer run id is required")
	}
	if r.sourceService == "" || r.destinationService == "" {
		return fmt.Errorf("source and destination services are required")
	}
	if r.report == nil {
		return fmt.Errorf("transfer run report is required")
	}
	for i, o := range r.report.Outcomes() {
		if o.Status.String() == "" {
			return fmt.Errorf("outcome %d has invalid status %d", i, int(o.Status))
		}
	}
	return nil
}
