package aiclassifier

import "github.com/slopwatch/slopwatch/internal/domain"

func providerError(provider string, status int, message string) error {
	return &domain.ProviderError{Provider: provider, Status: status, Message: message}
}
