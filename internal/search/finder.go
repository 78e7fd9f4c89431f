// Package search runs donor searches so that, within one session, only the
// latest issued search is applied.
package search

import (
	"context"
	"time"

	"blooddonor/internal/matching"
	"blooddonor/internal/metrics"
	"blooddonor/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	OutcomeFound  = "found"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
	OutcomeStale  = "stale"
)

// Lister reads a snapshot of the whole directory.
type Lister interface {
	ListDonors(ctx context.Context) ([]*types.Donor, error)
}

type Result struct {
	Seq    uint64
	Donors []*types.Donor
	// Stale is set when a newer search in the same scope was issued before
	// this one completed.
	Stale bool
}

type Finder struct {
	lister    Lister
	sequencer Sequencer
	timeout   time.Duration
	logger    *logrus.Logger
	metrics   *metrics.Metrics
}

func NewFinder(lister Lister, sequencer Sequencer, timeout time.Duration, logger *logrus.Logger, m *metrics.Metrics) *Finder {
	return &Finder{
		lister:    lister,
		sequencer: sequencer,
		timeout:   timeout,
		logger:    logger,
		metrics:   m,
	}
}

// Search issues a sequence number in scope, reads the directory and filters
// it by criteria. The listing error is returned as is.
func (f *Finder) Search(ctx context.Context, scope string, criteria types.SearchCriteria) (Result, error) {
	seq, err := f.sequencer.Next(ctx, scope)
	if err != nil {
		// sequencing is best effort, the search itself still runs
		f.logger.WithError(err).WithField("scope", scope).Warn("failed to issue search sequence")
	}

	result := Result{Seq: seq}

	listCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	donors, err := f.lister.ListDonors(listCtx)
	if err != nil {
		f.metrics.Search(OutcomeFailed)
		return result, err
	}

	result.Donors = matching.FilterDonors(donors, criteria)

	if seq > 0 {
		latest, err := f.sequencer.IsLatest(ctx, scope, seq)
		switch {
		case err != nil:
			f.logger.WithError(err).WithField("scope", scope).Warn("failed to check search sequence")
		case !latest:
			result.Stale = true
			f.metrics.Search(OutcomeStale)
			return result, nil
		}
	}

	if len(result.Donors) == 0 {
		f.metrics.Search(OutcomeEmpty)
	} else {
		f.metrics.Search(OutcomeFound)
	}

	return result, nil
}
