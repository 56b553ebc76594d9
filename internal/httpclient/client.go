package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
)

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// StatusError guarda a resposta não-2xx do serviço externo
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// StatusCode devolve o status HTTP da resposta que causou err, ou 0
func StatusCode(err error) int {
	var se *StatusError
	if ierr.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Client faz chamadas HTTP de saída. Não há retry: falha é devolvida ao chamador.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

type DefaultClient struct {
	client *http.Client
}

func NewDefaultClient(timeout time.Duration) *DefaultClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DefaultClient{client: &http.Client{Timeout: timeout}}
}

func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("requisição inválida para o serviço externo").
			Mark(ierr.ErrExternalService)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("serviço externo indisponível, tente novamente manualmente").
			Mark(ierr.ErrExternalService)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("resposta inválida do serviço externo").
			Mark(ierr.ErrExternalService)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Method: req.Method, URL: req.URL, StatusCode: resp.StatusCode, Body: truncate(respBody, 200)}
		return nil, ierr.WithError(statusErr).
			WithHintf("serviço externo respondeu com erro (%d), tente novamente manualmente", resp.StatusCode).
			Mark(ierr.ErrExternalService)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    resp.Header,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
