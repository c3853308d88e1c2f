package discovery

import (
	"testing"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceAddrRoundTrip(t *testing.T) {
	inst := &ServiceInstance{Name: "big-bite", Host: "10.0.0.7", Port: 50051}

	got, err := parseInstance("big-bite", inst.Addr())
	require.NoError(t, err)
	assert.Equal(t, inst, got)
}

func TestParseInstance_Rejects(t *testing.T) {
	for _, addr := range []string{"", "10.0.0.7", "10.0.0.7:http"} {
		_, err := parseInstance("big-bite", addr)
		assert.Error(t, err, addr)
	}
}

func TestKeyLayout(t *testing.T) {
	sd := &ServiceDiscovery{config: &config.EtcdConfig{Prefix: "/services/"}}

	key := sd.key(&ServiceInstance{Name: "big-bite", Host: "::1", Port: 50051})

	assert.Equal(t, "/services/big-bite/[::1]:50051", key)
}
