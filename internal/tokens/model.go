package tokens

import "time"

// TokenUsage é o saldo de tokens de um dono (usuário) no plano vigente
type TokenUsage struct {
	OwnerRef       string    `gorm:"primaryKey;size:64" json:"ownerRef"`
	TenantID       string    `gorm:"index;size:64;not null" json:"-"`
	TotalTokens    int64     `gorm:"not null" json:"totalTokens"`
	UsedTokens     int64     `gorm:"not null" json:"usedTokens"`
	PlanLabel      string    `gorm:"size:100" json:"planLabel"`
	LastUpdated    time.Time `json:"lastUpdated"`
	ExpirationDate time.Time `gorm:"index" json:"expirationDate"`
}

func (u TokenUsage) Restantes() int64 {
	return max(u.TotalTokens-u.UsedTokens, 0)
}

func (u TokenUsage) Expirado(agora time.Time) bool {
	return !agora.Before(u.ExpirationDate)
}
