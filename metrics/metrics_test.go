package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("unavailable")

func testStore() ref.Store {
	return ref.StoreFunc(func(ctx context.Context, collection, id string) (document.Document, bool, error) {
		switch id {
		case "u1":
			return document.Document{"name": "Ana"}, true, nil
		case "broken":
			return nil, false, errUnavailable
		default:
			return nil, false, nil
		}
	})
}

func TestInstrumentCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	store := Instrument(testStore(), reg)

	_, found, err := store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = store.Get(ctx, "users", "missing")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = store.Get(ctx, "users", "broken")
	require.ErrorIs(t, err, errUnavailable)

	reads := store.(*instrumented).reads
	assert.Equal(t, 1.0, testutil.ToFloat64(reads.WithLabelValues("users", OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reads.WithLabelValues("users", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reads.WithLabelValues("users", OutcomeError)))

	count, err := testutil.GatherAndCount(reg, "campus_store_read_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInstrumentSharesRegisteredCollectors(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	first := Instrument(testStore(), reg)
	second := Instrument(testStore(), reg)

	_, _, err := first.Get(ctx, "events", "u1")
	require.NoError(t, err)
	_, _, err = second.Get(ctx, "events", "u1")
	require.NoError(t, err)

	reads := first.(*instrumented).reads
	assert.Equal(t, 2.0, testutil.ToFloat64(reads.WithLabelValues("events", OutcomeFound)))
}

func TestInstrumentThroughFetcher(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	fetcher := ref.NewFetcher(Instrument(testStore(), reg))

	_, err := fetcher.Fetch(ctx, "users", "missing")
	require.ErrorIs(t, err, ref.ErrNotFound)

	count, err := testutil.GatherAndCount(reg, "campus_store_reads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInstrumentReadOnly(t *testing.T) {
	store := Instrument(testStore(), nil)

	err := store.(ref.Writer).Set(context.Background(), "users", "u1", document.Document{})
	require.ErrorIs(t, err, ErrReadOnly)
}
