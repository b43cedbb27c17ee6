package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashbook/internal/domain"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	p, err := domain.ParsePeriod("2024-01")
	require.NoError(t, err)
	assert.Equal(t, domain.Period{Year: 2024, Month: time.January}, p)
	assert.Equal(t, "2024-01", p.String())

	for _, bad := range []string{"", "2024-13", "2024/01", "jan-2024"} {
		_, err := domain.ParsePeriod(bad)
		assert.Truef(t, errors.Is(err, domain.ErrInvalidPeriod), "expected ErrInvalidPeriod for %q, got %v", bad, err)
	}
}

func TestNewPeriodRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := domain.NewPeriod(2024, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = domain.NewPeriod(0, time.March)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestPeriodContainsBoundaries(t *testing.T) {
	t.Parallel()

	p := domain.Period{Year: 2024, Month: time.February}

	assert.False(t, p.Contains(day(2024, time.January, 31)))
	assert.True(t, p.Contains(day(2024, time.February, 1)))
	assert.True(t, p.Contains(day(2024, time.February, 29)), "last day of month is included")
	assert.False(t, p.Contains(day(2024, time.March, 1)), "first day of next month is excluded")
	assert.False(t, p.Contains(day(2023, time.February, 10)), "same month of another year is excluded")

	assert.Equal(t, 29, p.Days())
	assert.Equal(t, day(2024, time.March, 1), p.End())
}
