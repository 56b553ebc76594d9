package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/negocio"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/testutil"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agora = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertDec(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: esperado %d, obtido %s", msg, want, got)
}

// catalogo com um serviço por preço mensal, plano "p<preço>"
func catalogo(precos ...int64) []servico.Servico {
	s := servico.Servico{ID: "s1", Nome: "Gestão"}
	for _, p := range precos {
		s.Planos = append(s.Planos, servico.Plano{ID: fmt.Sprintf("p%d", p), ServicoID: "s1", PrecoMensal: dec(p)})
	}
	return []servico.Servico{s}
}

func deal(etapaID string, setup, preco int64, atualizado time.Time) negocio.Negocio {
	return negocio.Negocio{
		ID: fmt.Sprintf("n-%s-%d-%d", etapaID, setup, preco), EtapaID: etapaID, ServicoID: "s1",
		PlanoID: fmt.Sprintf("p%d", preco), ValorSetup: dec(setup),
		CreatedAt: atualizado, UpdatedAt: atualizado,
	}
}

func TestCenarioCompleto(t *testing.T) {
	etapas := []etapa.Etapa{{ID: "e0", Nome: "Mapeada", Ordem: 0}, {ID: "e1", Nome: "Fechada", Ordem: 1}}
	m := Calcular(Entrada{
		Negocios: []negocio.Negocio{deal("e0", 500, 50, agora), deal("e1", 1000, 100, agora)},
		Catalogo: catalogo(50, 100),
		Etapas:   etapas,
		Agora:    agora,
	})

	assert.Equal(t, 2, m.TotalDeals)
	assert.Equal(t, 1, m.WonDeals)
	assert.Equal(t, 1, m.InProgressDeals)
	assert.Equal(t, 0, m.LostDeals)
	assert.InDelta(t, 50.0, m.ConversionRate, 1e-9)
	assertDec(t, 3300, m.PipelineValue, "pipeline")
	assertDec(t, 100, m.MRR, "mrr")
	assertDec(t, 1100, m.MonthlyRevenue, "monthlyRevenue")
	assertDec(t, 1200, m.ARR, "arr")
	assertDec(t, 2200, m.AnnualRevenue, "annualRevenue")
	assertDec(t, 1000, m.AverageTicket, "averageTicket")
	assert.Equal(t, map[string]int{"Mapeada": 1, "Fechada": 1}, m.DealsByStage)
	assert.Equal(t, map[string]int{"Gestão": 1}, m.DealsByService)
	assert.Nil(t, m.TopPerformers, "só admin vê ranking")
}

func TestSemNegociosNaoDivide(t *testing.T) {
	m := Calcular(Entrada{Agora: agora})
	assert.Zero(t, m.ConversionRate)
	assertDec(t, 0, m.AverageTicket, "averageTicket")
	assertDec(t, 0, m.PipelineValue, "pipeline")
	assert.Empty(t, m.DealsByStage)
}

func TestPipelineIndependeDaEtapa(t *testing.T) {
	etapas := []etapa.Etapa{{ID: "e0", Nome: "Em Contato"}, {ID: "e1", Nome: "Fechada"}, {ID: "e2", Nome: "Perdida"}}
	for _, e := range etapas {
		m := Calcular(Entrada{
			Negocios: []negocio.Negocio{deal(e.ID, 1000, 200, agora)},
			Catalogo: catalogo(200),
			Etapas:   etapas,
			Agora:    agora,
		})
		assertDec(t, 3400, m.PipelineValue, e.Nome)
	}
}

func TestMRRSoDoMesEARRDeTodos(t *testing.T) {
	etapas := []etapa.Etapa{{ID: "e1", Nome: "Fechada"}}
	mesPassado := agora.AddDate(0, -1, 0)
	m := Calcular(Entrada{
		Negocios: []negocio.Negocio{deal("e1", 0, 100, agora), deal("e1", 0, 150, mesPassado)},
		Catalogo: catalogo(100, 150),
		Etapas:   etapas,
		Agora:    agora,
	})
	assertDec(t, 100, m.MRR, "mrr")
	assertDec(t, 3000, m.ARR, "arr")
	assert.Equal(t, 1, m.NewDealsThisMonth)
}

func TestJanelaDoMes(t *testing.T) {
	inicio, fim := JanelaDoMes(agora)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), inicio)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), fim)

	etapas := []etapa.Etapa{{ID: "e1", Nome: "Fechada"}}
	bordas := []negocio.Negocio{deal("e1", 0, 10, inicio), deal("e1", 0, 20, fim)}
	m := Calcular(Entrada{Negocios: bordas, Catalogo: catalogo(10, 20), Etapas: etapas, Agora: agora})
	assertDec(t, 10, m.MRR, "início entra, fim não")
}

func TestPlanoOuEtapaAusentes(t *testing.T) {
	n := deal("apagada", 700, 999, agora)
	custom := deal("e1", 0, 0, agora)
	custom.PlanoID = negocio.PlanoCustom
	custom.PrecoCustom = dec(40)
	custom.ServicoID = ""

	m := Calcular(Entrada{
		Negocios: []negocio.Negocio{n, custom},
		Catalogo: catalogo(100),
		Etapas:   []etapa.Etapa{{ID: "e1", Nome: "Closed Won"}},
		Agora:    agora,
	})
	assertDec(t, 700+40*12, m.PipelineValue, "plano inexistente vale só o setup")
	assert.Equal(t, 1, m.DealsByStage[negocio.SemEtapa])
	assert.Equal(t, 1, m.InProgressDeals, "etapa ausente conta em andamento")
	assert.Equal(t, map[string]int{SemServico: 1}, m.DealsByService)
	assertDec(t, 40, m.MRR, "mrr")
}

func TestTopPerformers(t *testing.T) {
	etapas := []etapa.Etapa{{ID: "g", Nome: "Fechada"}, {ID: "a", Nome: "Mapeada"}}
	var usuarios []usuario.Usuario
	var negocios []negocio.Negocio
	for i := range 7 {
		u := usuario.Usuario{ID: fmt.Sprintf("u%d", i), Nome: fmt.Sprintf("User %d", i)}
		usuarios = append(usuarios, u)
		for j := range i {
			n := deal("g", int64(j), 0, agora)
			n.ID = fmt.Sprintf("%s-%d", u.ID, j)
			n.ResponsavelID = u.ID
			negocios = append(negocios, n)
		}
	}
	extra := deal("a", 0, 0, agora)
	extra.ID, extra.ResponsavelID = "extra", "u0"
	negocios = append(negocios, extra)

	m := Calcular(Entrada{Negocios: negocios, Etapas: etapas, Usuarios: usuarios, Agora: agora, Admin: true})
	require.Len(t, m.TopPerformers, 5)
	assert.Equal(t, "u6", m.TopPerformers[0].UserID)
	assert.Equal(t, 6, m.TopPerformers[0].Ganhos)
	assert.Equal(t, 6, m.TopPerformers[0].Atribuidos)
	assert.Equal(t, "u2", m.TopPerformers[4].UserID)
}

func TestHandlerEscopo(t *testing.T) {
	db := testutil.NewDB(t, &negocio.Negocio{}, &etapa.Etapa{}, &servico.Servico{}, &servico.Plano{}, &usuario.Usuario{})
	s := NewService(db, logger.NewNop())
	s.agora = func() time.Time { return agora }

	require.NoError(t, db.Create(&etapa.Etapa{ID: "e1", TenantID: "t1", Nome: "Fechada"}).Error)
	require.NoError(t, db.Create(&usuario.Usuario{ID: "u1", TenantID: "t1", Nome: "Ana", Email: "ana@x.com", Senha: "x"}).Error)
	for i, resp := range []string{"u1", "u2"} {
		n := negocio.Negocio{TenantID: "t1", EmpresaID: "emp", EtapaID: "e1", ResponsavelID: resp, ValorSetup: dec(int64(100 * (i + 1)))}
		require.NoError(t, db.Create(&n).Error)
	}

	get := func(id auth.Identidade) Metricas {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req = req.WithContext(auth.WithIdentidade(context.Background(), id))
		rec := httptest.NewRecorder()
		NewHandler(s).Obter(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var m Metricas
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		return m
	}

	vendedor := get(auth.Identidade{UserID: "u1", TenantID: "t1"})
	assert.Equal(t, 1, vendedor.TotalDeals)
	assertDec(t, 100, vendedor.PipelineValue, "escopo do vendedor")
	assert.Empty(t, vendedor.TopPerformers)

	admin := get(auth.Identidade{UserID: "u1", TenantID: "t1", IsAdmin: true})
	assert.Equal(t, 2, admin.TotalDeals)
	assertDec(t, 300, admin.PipelineValue, "tenant inteiro")
	require.Len(t, admin.TopPerformers, 1)
	assert.Equal(t, "Ana", admin.TopPerformers[0].Nome)
}
