package autologout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callguide/roteiro/internal/autologout"
	"github.com/callguide/roteiro/internal/logging"
)

type fakeResetter struct {
	calls int
}

func (f *fakeResetter) ResetAll(ctx context.Context) error {
	f.calls++
	return nil
}

func TestNew_ValidatesSchedule(t *testing.T) {
	logger := logging.NewNop()

	tests := []struct {
		name   string
		hour   int
		minute int
		ok     bool
	}{
		{"Midnight", 0, 0, true},
		{"End Of Day", 23, 59, true},
		{"Typical Shift End", 19, 30, true},
		{"Hour Too Large", 24, 0, false},
		{"Negative Hour", -1, 0, false},
		{"Minute Too Large", 12, 60, false},
		{"Negative Minute", 12, -5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := autologout.New(&fakeResetter{}, nil, tt.hour, tt.minute, logger)
			if tt.ok {
				require.NoError(t, err)
				require.NotNil(t, s)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := autologout.New(&fakeResetter{}, nil, 3, 0, logging.NewNop())
	require.NoError(t, err)

	s.Start()
	s.Stop()
}
