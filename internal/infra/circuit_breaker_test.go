package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errERP = errors.New("erp caído")

func cbDePrueba(openTimeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      openTimeout,
	})
}

func TestCircuitBreakerAbrePorFallasConsecutivas(t *testing.T) {
	cb := cbDePrueba(time.Minute)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(func() error { return errERP }), errERP)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Abierto: falla rápido sin invocar fn.
	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)
}

func TestCircuitBreakerExitoResetaElConteo(t *testing.T) {
	cb := cbDePrueba(time.Minute)

	require.Error(t, cb.Execute(func() error { return errERP }))
	require.Error(t, cb.Execute(func() error { return errERP }))
	require.NoError(t, cb.Execute(func() error { return nil }))

	// El conteo arrancó de cero: dos fallas más no alcanzan el umbral.
	require.Error(t, cb.Execute(func() error { return errERP }))
	require.Error(t, cb.Execute(func() error { return errERP }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerRecuperacion(t *testing.T) {
	cb := cbDePrueba(20 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errERP })
	}
	require.Equal(t, CBOpen, cb.State())

	// Pasado el timeout entra en half-open y dos sondas exitosas lo cierran.
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerSondaFallidaReabre(t *testing.T) {
	cb := cbDePrueba(20 * time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.Execute(func() error { return errERP })
	}
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errERP }))
	assert.Equal(t, CBOpen, cb.State())
}
