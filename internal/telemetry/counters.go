package telemetry

import (
	"fmt"
	"sync/atomic"

	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

// Counter names as they appear in snapshots and on the wire. The label
// counters follow the LabelsCount<index> scheme.
const (
	CounterError            = "errorCount"
	CounterMissingLabel     = "missingLabelCount"
	CounterCSVRows          = "csvRowsCount"
	CounterSkippedEmptyLine = "skippedEmptyLine"
	CounterUnlabeledImage   = "unlabeled_image"
	CounterUnknownLabel     = "unknown_label"
	CounterEmptyImages      = "empty_imgs_count"
	CounterNoTexts          = "no_texts_count"

	labelCounterFormat = "LabelsCount%d"
)

// Counters tracks row outcomes for one worker. Every named counter is
// registered up front so a snapshot always carries the full set, including
// zero values. Label slots beyond the configured capacity do not exist and
// incrementing one is an error.
type Counters struct {
	errors           atomic.Int64
	missingLabel     atomic.Int64
	csvRows          atomic.Int64
	skippedEmptyLine atomic.Int64
	unlabeledImage   atomic.Int64
	unknownLabel     atomic.Int64
	emptyImages      atomic.Int64
	noTexts          atomic.Int64
	labels           []atomic.Int64
}

func NewCounters(labelCapacity int) *Counters {
	if labelCapacity < 0 {
		labelCapacity = 0
	}
	return &Counters{labels: make([]atomic.Int64, labelCapacity)}
}

func (c *Counters) IncError()            { c.errors.Add(1) }
func (c *Counters) IncCSVRows()          { c.csvRows.Add(1) }
func (c *Counters) IncSkippedEmptyLine() { c.skippedEmptyLine.Add(1) }
func (c *Counters) IncUnlabeledImage()   { c.unlabeledImage.Add(1) }
func (c *Counters) IncUnknownLabel()     { c.unknownLabel.Add(1) }
func (c *Counters) IncEmptyImages()      { c.emptyImages.Add(1) }
func (c *Counters) IncNoTexts()          { c.noTexts.Add(1) }

// IncLabel bumps the per-label counter for a resolved label index.
func (c *Counters) IncLabel(index int) error {
	if index < 0 || index >= len(c.labels) {
		return fmt.Errorf("label index %d outside counter capacity %d", index, len(c.labels))
	}
	c.labels[index].Add(1)
	return nil
}

func (c *Counters) Errors() int64  { return c.errors.Load() }
func (c *Counters) CSVRows() int64 { return c.csvRows.Load() }

// Merge folds another counter set into this one. Label capacities must
// match, which holds when both come from the same job config.
func (c *Counters) Merge(other *Counters) {
	c.errors.Add(other.errors.Load())
	c.missingLabel.Add(other.missingLabel.Load())
	c.csvRows.Add(other.csvRows.Load())
	c.skippedEmptyLine.Add(other.skippedEmptyLine.Load())
	c.unlabeledImage.Add(other.unlabeledImage.Load())
	c.unknownLabel.Add(other.unknownLabel.Load())
	c.emptyImages.Add(other.emptyImages.Load())
	c.noTexts.Add(other.noTexts.Load())
	for i := range c.labels {
		if i < len(other.labels) {
			c.labels[i].Add(other.labels[i].Load())
		}
	}
}

// Snapshot returns the current value of every registered counter.
func (c *Counters) Snapshot() map[string]int64 {
	snap := map[string]int64{
		CounterError:            c.errors.Load(),
		CounterMissingLabel:     c.missingLabel.Load(),
		CounterCSVRows:          c.csvRows.Load(),
		CounterSkippedEmptyLine: c.skippedEmptyLine.Load(),
		CounterUnlabeledImage:   c.unlabeledImage.Load(),
		CounterUnknownLabel:     c.unknownLabel.Load(),
		CounterEmptyImages:      c.emptyImages.Load(),
		CounterNoTexts:          c.noTexts.Load(),
	}
	for i := range c.labels {
		snap[fmt.Sprintf(labelCounterFormat, i)] = c.labels[i].Load()
	}
	return snap
}

// Flush publishes every counter value to statsd.
func (c *Counters) Flush() {
	for name, value := range c.Snapshot() {
		metric.Count(name, value, []string{})
	}
}
