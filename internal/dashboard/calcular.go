package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/negocio"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	SemServico    = "Sem serviço"
	maxPerformers = 5
)

var doze = decimal.NewFromInt(12)

// Entrada é tudo que o painel precisa, já restrito ao escopo do usuário
type Entrada struct {
	Negocios []negocio.Negocio
	Catalogo []servico.Servico
	Etapas   []etapa.Etapa
	Usuarios []usuario.Usuario // só no escopo de admin
	Agora    time.Time
	Admin    bool
}

type Performer struct {
	UserID     string `json:"userId"`
	Nome       string `json:"name"`
	Ganhos     int    `json:"wonCount"`
	Atribuidos int    `json:"totalAssignedCount"`
}

type Metricas struct {
	TotalDeals        int             `json:"totalDeals"`
	NewDealsThisMonth int             `json:"newDealsThisMonth"`
	WonDeals          int             `json:"wonDeals"`
	LostDeals         int             `json:"lostDeals"`
	InProgressDeals   int             `json:"inProgressDeals"`
	ConversionRate    float64         `json:"conversionRate"`
	AverageTicket     decimal.Decimal `json:"averageTicket"`
	PipelineValue     decimal.Decimal `json:"pipelineValue"`
	MRR               decimal.Decimal `json:"mrr"`
	MonthlyRevenue    decimal.Decimal `json:"monthlyRevenue"`
	ARR               decimal.Decimal `json:"arr"`
	AnnualRevenue     decimal.Decimal `json:"annualRevenue"`
	DealsByStage      map[string]int  `json:"dealsByStage"`
	DealsByService    map[string]int  `json:"dealsByService"`
	TopPerformers     []Performer     `json:"topPerformers,omitempty"`
}

// JanelaDoMes devolve [primeiro dia do mês 00:00, primeiro dia do mês seguinte) no fuso de agora
func JanelaDoMes(agora time.Time) (time.Time, time.Time) {
	inicio := time.Date(agora.Year(), agora.Month(), 1, 0, 0, 0, 0, agora.Location())
	return inicio, inicio.AddDate(0, 1, 0)
}

func dentro(t, inicio, fim time.Time) bool {
	return !t.Before(inicio) && t.Before(fim)
}

// Calcular deriva as métricas do painel. Não grava nada.
func Calcular(in Entrada) Metricas {
	m := Metricas{
		AverageTicket:  decimal.Zero,
		PipelineValue:  decimal.Zero,
		MRR:            decimal.Zero,
		MonthlyRevenue: decimal.Zero,
		ARR:            decimal.Zero,
		AnnualRevenue:  decimal.Zero,
		DealsByStage:   map[string]int{},
		DealsByService: map[string]int{},
	}
	inicio, fim := JanelaDoMes(in.Agora)
	etapas := lo.KeyBy(in.Etapas, func(e etapa.Etapa) string { return e.ID })
	servicos := lo.KeyBy(in.Catalogo, func(s servico.Servico) string { return s.ID })
	ganhosPorUsuario := map[string]int{}
	atribuidosPorUsuario := map[string]int{}
	setupGanhos := decimal.Zero

	for _, n := range in.Negocios {
		m.TotalDeals++
		if dentro(n.CreatedAt, inicio, fim) {
			m.NewDealsThisMonth++
		}

		nomeEtapa, bucket := negocio.SemEtapa, etapa.EmAndamento
		if e, ok := etapas[n.EtapaID]; ok {
			nomeEtapa, bucket = e.Nome, etapa.Classificar(e.Nome)
		}
		m.DealsByStage[nomeEtapa]++
		atribuidosPorUsuario[n.ResponsavelID]++

		preco := n.PrecoMensal(in.Catalogo)
		anual := preco.Mul(doze)
		m.PipelineValue = m.PipelineValue.Add(n.ValorSetup).Add(anual)

		switch bucket {
		case etapa.Perdido:
			m.LostDeals++
			continue
		case etapa.EmAndamento:
			m.InProgressDeals++
			continue
		}

		m.WonDeals++
		ganhosPorUsuario[n.ResponsavelID]++
		setupGanhos = setupGanhos.Add(n.ValorSetup)
		m.ARR = m.ARR.Add(anual)
		m.AnnualRevenue = m.AnnualRevenue.Add(n.ValorSetup).Add(anual)
		if dentro(n.UpdatedAt, inicio, fim) {
			m.MRR = m.MRR.Add(preco)
			m.MonthlyRevenue = m.MonthlyRevenue.Add(n.ValorSetup).Add(preco)
		}

		nomeServico := SemServico
		if s, ok := servicos[n.ServicoID]; ok {
			nomeServico = s.Nome
		}
		m.DealsByService[nomeServico]++
	}

	if m.TotalDeals > 0 {
		m.ConversionRate = float64(m.WonDeals) / float64(m.TotalDeals) * 100
	}
	if m.WonDeals > 0 {
		m.AverageTicket = setupGanhos.DivRound(decimal.NewFromInt(int64(m.WonDeals)), 2)
	}
	if in.Admin {
		m.TopPerformers = topPerformers(in.Usuarios, ganhosPorUsuario, atribuidosPorUsuario)
	}
	return m
}

func topPerformers(usuarios []usuario.Usuario, ganhos, atribuidos map[string]int) []Performer {
	out := lo.Map(usuarios, func(u usuario.Usuario, _ int) Performer {
		return Performer{UserID: u.ID, Nome: u.Nome, Ganhos: ganhos[u.ID], Atribuidos: atribuidos[u.ID]}
	})
	slices.SortStableFunc(out, func(a, b Performer) int {
		if c := cmp.Compare(b.Ganhos, a.Ganhos); c != 0 {
			return c
		}
		return cmp.Compare(b.Atribuidos, a.Atribuidos)
	})
	if len(out) > maxPerformers {
		out = out[:maxPerformers]
	}
	return out
}
