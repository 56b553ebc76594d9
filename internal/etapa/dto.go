package etapa

// EtapaRequest é usado em POST /etapas e PUT /etapas/{id}
type EtapaRequest struct {
	Nome string `json:"nome"`
	Cor  string `json:"cor"`
}

// MoverRequest é usado em POST /etapas/{id}/mover
type MoverRequest struct {
	AlvoID string `json:"alvoId"`
}
