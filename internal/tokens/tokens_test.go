package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/metrics"
	"github.com/KromaEnergia/api-crm/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(testutil.NewDB(t, &TokenUsage{}), 30, metrics.NewCollector(), logger.NewNop())
}

func TestCheckAndReserve(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	ok, err := l.CheckAndReserve(ctx, "u1", 1)
	require.NoError(t, err)
	assert.False(t, ok, "sem registro não reserva")

	_, err = l.ResetForNewPlan(ctx, "u1", "t1", 3, "Starter")
	require.NoError(t, err)

	for range 3 {
		ok, err = l.CheckAndReserve(ctx, "u1", 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err = l.CheckAndReserve(ctx, "u1", 1)
	require.NoError(t, err)
	assert.False(t, ok, "saldo esgotado não incrementa")

	u, err := l.Consultar(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, u.UsedTokens)
	assert.Zero(t, u.Restantes())

	_, err = l.CheckAndReserve(ctx, "u1", 0)
	assert.True(t, ierr.IsValidation(err))

	assert.Equal(t, 3.0, promtest.ToFloat64(l.Metrics.TokenReservations.WithLabelValues("granted")))
	assert.Equal(t, 2.0, promtest.ToFloat64(l.Metrics.TokenReservations.WithLabelValues("denied")))
}

func TestCheckAndReservePlanoExpirado(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	_, err := l.ResetForNewPlan(ctx, "u1", "t1", 10, "Pro")
	require.NoError(t, err)

	l.agora = func() time.Time { return time.Now().UTC().AddDate(0, 0, 31) }
	ok, err := l.CheckAndReserve(ctx, "u1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckAndReserveConcorrente(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	_, err := l.ResetForNewPlan(ctx, "u1", "t1", 5, "Starter")
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sucessos int
	)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.CheckAndReserve(ctx, "u1", 5)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				sucessos++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sucessos)
	u, err := l.Consultar(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, u.UsedTokens)
}

func TestResetForNewPlan(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	_, err := l.ResetForNewPlan(ctx, "u1", "t1", 2, "Starter")
	require.NoError(t, err)
	ok, err := l.CheckAndReserve(ctx, "u1", 2)
	require.NoError(t, err)
	require.True(t, ok)

	novo, err := l.ResetForNewPlan(ctx, "u1", "t1", 100, "Pro")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), novo.ExpirationDate, time.Minute)

	u, err := l.Consultar(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 100, u.TotalTokens)
	assert.Zero(t, u.UsedTokens)
	assert.Equal(t, "Pro", u.PlanLabel)

	_, err = l.ResetForNewPlan(ctx, "u1", "t1", -1, "x")
	assert.True(t, ierr.IsValidation(err))
}

func TestRequire(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	_, err := l.ResetForNewPlan(ctx, "u1", "t1", 1, "Starter")
	require.NoError(t, err)

	chamadas := 0
	h := l.Require(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { chamadas++ }))
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req = req.WithContext(auth.WithIdentidade(req.Context(), auth.Identidade{UserID: "u1", TenantID: "t1"}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, 1, chamadas)
}

func TestHandlerAtivarESaldo(t *testing.T) {
	l := newLedger(t)
	h := NewHandler(l, "segredo")

	body, _ := json.Marshal(AtivacaoRequest{OwnerRef: "u1", TenantID: "t1", TotalTokens: 50, PlanLabel: "Pro"})
	req := httptest.NewRequest(http.MethodPost, "/tokens/ativacao", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Ativar(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/tokens/ativacao", bytes.NewReader(body))
	req.Header.Set(HeaderAtivacao, "segredo")
	rec = httptest.NewRecorder()
	h.Ativar(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/tokens/me", nil)
	req = req.WithContext(auth.WithIdentidade(req.Context(), auth.Identidade{UserID: "u1", TenantID: "t1"}))
	rec = httptest.NewRecorder()
	h.Saldo(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var saldo SaldoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saldo))
	assert.EqualValues(t, 50, saldo.Restantes)
	assert.False(t, saldo.Expirado)

	req = httptest.NewRequest(http.MethodGet, "/tokens/me", nil)
	req = req.WithContext(auth.WithIdentidade(req.Context(), auth.Identidade{UserID: "u2", TenantID: "t1"}))
	rec = httptest.NewRecorder()
	h.Saldo(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
