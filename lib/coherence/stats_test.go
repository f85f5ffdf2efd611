// SPDX-License-Identifier: GPL-2.0-or-later

package coherence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cachecoh/cachecoh/lib/coherence"
)

func TestStatsRatesWithNoAccesses(t *testing.T) {
	t.Parallel()
	var s coherence.Stats
	assert.Equal(t, float64(0), s.HitRate())
	assert.Equal(t, float64(0), s.ConflictRate())
}
