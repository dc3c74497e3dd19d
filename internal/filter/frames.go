// Package filter narrows the frame records shown by `mandelmovie status`.
package filter

import (
	"fmt"

	"github.com/dyluth/mandelmovie/internal/ledger"
)

// Criteria defines filtering criteria for frame records.
// All filters are ANDed together; a record must match every one to pass.
type Criteria struct {
	SinceTimestampMs int64              // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64              // Unix timestamp in milliseconds, 0 = no filter
	Status           ledger.FrameStatus // Exact status, empty = no filter
	Unit             *int               // Worker unit, nil = no filter
}

// Validate checks the status filter names a known status.
func (c *Criteria) Validate() error {
	if c.Status != "" {
		if err := c.Status.Validate(); err != nil {
			return fmt.Errorf("invalid --status: %w (use rendered or failed)", err)
		}
	}
	if c.Unit != nil && *c.Unit < 0 {
		return fmt.Errorf("invalid --unit: must not be negative, got %d", *c.Unit)
	}
	return nil
}

// Matches returns true if the record matches all filter criteria.
func (c *Criteria) Matches(r *ledger.FrameRecord) bool {
	// Time filtering uses the moment the unit reported the frame
	if c.SinceTimestampMs > 0 && r.RecordedAtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && r.RecordedAtMs > c.UntilTimestampMs {
		return false
	}

	if c.Status != "" && r.Status != c.Status {
		return false
	}

	if c.Unit != nil && r.Unit != *c.Unit {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.Status != "" ||
		c.Unit != nil
}

// Apply returns the records matching c, preserving order.
func (c *Criteria) Apply(records []*ledger.FrameRecord) []*ledger.FrameRecord {
	if !c.HasFilters() {
		return records
	}
	out := make([]*ledger.FrameRecord, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
