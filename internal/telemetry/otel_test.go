package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"notistore/internal/config"
)

func TestNormalizeOTLPEndpoint(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "otel-collector:4317", want: "otel-collector:4317"},
		{raw: "http://otel-collector:4317", want: "otel-collector:4317"},
		{raw: "https://collector.example.com:443/v1/traces", want: "collector.example.com:443"},
		{raw: "http://", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := normalizeOTLPEndpoint(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
