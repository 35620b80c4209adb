package application

import "github.com/bnema/shopvoice/internal/domain"

type ModelStatus struct {
	Model         domain.ModelConfig
	HasCredential bool
}
