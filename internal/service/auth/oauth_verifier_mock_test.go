package auth

import (
	"context"
	"sync"

	"github.com/bluebuchu/collect-sub000/internal/auth"
)

var _ oauthVerifier = &oauthVerifierMock{}

type oauthVerifierMock struct {
	AuthCodeURLFunc func(state string) string
	VerifyCodeFunc  func(ctx context.Context, code string) (*auth.OAuthIdentity, error)

	calls struct {
		AuthCodeURL []struct {
			State string
		}
		VerifyCode []struct {
			Ctx  context.Context
			Code string
		}
	}
	lockAuthCodeURL sync.RWMutex
	lockVerifyCode  sync.RWMutex
}

func (mock *oauthVerifierMock) AuthCodeURL(state string) string {
	if mock.AuthCodeURLFunc == nil {
		panic("oauthVerifierMock.AuthCodeURLFunc: method is nil but oauthVerifier.AuthCodeURL was just called")
	}
	callInfo := struct {
		State string
	}{State: state}
	mock.lockAuthCodeURL.Lock()
	mock.calls.AuthCodeURL = append(mock.calls.AuthCodeURL, callInfo)
	mock.lockAuthCodeURL.Unlock()
	return mock.AuthCodeURLFunc(state)
}

func (mock *oauthVerifierMock) AuthCodeURLCalls() []struct {
	State string
} {
	mock.lockAuthCodeURL.RLock()
	calls := mock.calls.AuthCodeURL
	mock.lockAuthCodeURL.RUnlock()
	return calls
}

func (mock *oauthVerifierMock) VerifyCode(ctx context.Context, code string) (*auth.OAuthIdentity, error) {
	if mock.VerifyCodeFunc == nil {
		panic("oauthVerifierMock.VerifyCodeFunc: method is nil but oauthVerifier.VerifyCode was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Code string
	}{Ctx: ctx, Code: code}
	mock.lockVerifyCode.Lock()
	mock.calls.VerifyCode = append(mock.calls.VerifyCode, callInfo)
	mock.lockVerifyCode.Unlock()
	return mock.VerifyCodeFunc(ctx, code)
}

func (mock *oauthVerifierMock) VerifyCodeCalls() []struct {
	Ctx  context.Context
	Code string
} {
	mock.lockVerifyCode.RLock()
	calls := mock.calls.VerifyCode
	mock.lockVerifyCode.RUnlock()
	return calls
}
