package capture

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndReadIn(t *testing.T) {
	var buf bytes.Buffer
	r := Recorder{Dest: &buf}

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	lines := []string{
		":7881150175810000380026C9000C04220000FFFFFFFFFFA7",
		":7881150157810076ED780BE1000A942900013408190254DF",
	}
	for i, line := range lines {
		require.NoError(t, r.Receive(Message{Line: line, Timestamp: start.Add(time.Duration(i) * time.Second)}))
	}
	require.NoError(t, r.Record(":00811501D28100693F001115000D2D1D0101FFFFFFFFFFF4"))

	out := make(chan Message, 10)
	require.NoError(t, ReadIn(out, &buf))

	var got []Message
	for msg := range out {
		got = append(got, msg)
	}

	require.Len(t, got, 3)
	require.Equal(t, lines[0], got[0].Line)
	require.True(t, start.Equal(got[0].Timestamp))
	require.True(t, start.Add(time.Second).Equal(got[1].Timestamp))
	require.Equal(t, ":00811501D28100693F001115000D2D1D0101FFFFFFFFFFF4", got[2].Line)
	require.False(t, got[2].Timestamp.IsZero())
}

func TestReadInCorrupt(t *testing.T) {
	out := make(chan Message, 1)
	err := ReadIn(out, bytes.NewReader([]byte("not a gob stream")))
	require.Error(t, err)

	_, open := <-out
	require.False(t, open)
}
