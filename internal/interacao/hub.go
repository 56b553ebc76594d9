package interacao

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Hub distribui interações recém-gravadas para quem acompanha o negócio.
// Entrega pelo menos uma vez, sem garantia de ordem.
type Hub interface {
	Publish(ctx context.Context, i Interacao) error
	// Subscribe devolve um canal que fecha quando ctx termina
	Subscribe(ctx context.Context, negocioID string) (<-chan Interacao, error)
}

const subscriberBuffer = 16

func canal(negocioID string) string {
	return fmt.Sprintf("crm:negocio:%s:interacoes", negocioID)
}

// MemoryHub atende uma única instância da API
type MemoryHub struct {
	mu   sync.Mutex
	subs map[string]map[chan Interacao]struct{}
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[string]map[chan Interacao]struct{})}
}

func (h *MemoryHub) Publish(ctx context.Context, i Interacao) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[i.NegocioID] {
		select {
		case ch <- i:
		default:
			// canal cheio já tem evento pendente e o consumidor relê a lista
		}
	}
	return nil
}

func (h *MemoryHub) Subscribe(ctx context.Context, negocioID string) (<-chan Interacao, error) {
	ch := make(chan Interacao, subscriberBuffer)

	h.mu.Lock()
	if h.subs[negocioID] == nil {
		h.subs[negocioID] = make(map[chan Interacao]struct{})
	}
	h.subs[negocioID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[negocioID], ch)
		if len(h.subs[negocioID]) == 0 {
			delete(h.subs, negocioID)
		}
		close(ch)
		h.mu.Unlock()
	}()
	return ch, nil
}

// PubSubClient é o subconjunto do go-redis usado pelo RedisHub
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisHub faz o fan-out entre instâncias via pub/sub
type RedisHub struct {
	client PubSubClient
	log    *logger.Logger
}

func NewRedisHub(client PubSubClient, log *logger.Logger) *RedisHub {
	return &RedisHub{client: client, log: log}
}

func (h *RedisHub) Publish(ctx context.Context, i Interacao) error {
	payload, err := json.Marshal(i)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, canal(i.NegocioID), payload).Err()
}

func (h *RedisHub) Subscribe(ctx context.Context, negocioID string) (<-chan Interacao, error) {
	ps := h.client.Subscribe(ctx, canal(negocioID))
	// confirma a inscrição antes de devolver o canal
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan Interacao, subscriberBuffer)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var i Interacao
				if err := json.Unmarshal([]byte(msg.Payload), &i); err != nil {
					h.log.Warnw("payload de interação inválido", "canal", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- i:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
