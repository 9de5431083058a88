package auth

import (
	"sync"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

var _ tokenIssuer = &tokenIssuerMock{}

type tokenIssuerMock struct {
	GenerateTokenFunc func(u *domain.User) (string, error)

	calls struct {
		GenerateToken []struct {
			U *domain.User
		}
	}
	lockGenerateToken sync.RWMutex
}

func (mock *tokenIssuerMock) GenerateToken(u *domain.User) (string, error) {
	if mock.GenerateTokenFunc == nil {
		panic("tokenIssuerMock.GenerateTokenFunc: method is nil but tokenIssuer.GenerateToken was just called")
	}
	callInfo := struct {
		U *domain.User
	}{U: u}
	mock.lockGenerateToken.Lock()
	mock.calls.GenerateToken = append(mock.calls.GenerateToken, callInfo)
	mock.lockGenerateToken.Unlock()
	return mock.GenerateTokenFunc(u)
}

func (mock *tokenIssuerMock) GenerateTokenCalls() []struct {
	U *domain.User
} {
	mock.lockGenerateToken.RLock()
	calls := mock.calls.GenerateToken
	mock.lockGenerateToken.RUnlock()
	return calls
}
