package auth

import (
	"context"
	"sync"
)

var _ resetMailer = &resetMailerMock{}

type resetMailerMock struct {
	SendPasswordResetFunc func(ctx context.Context, email string, rawToken string) error

	calls struct {
		SendPasswordReset []struct {
			Ctx      context.Context
			Email    string
			RawToken string
		}
	}
	lockSendPasswordReset sync.RWMutex
}

func (mock *resetMailerMock) SendPasswordReset(ctx context.Context, email string, rawToken string) error {
	if mock.SendPasswordResetFunc == nil {
		panic("resetMailerMock.SendPasswordResetFunc: method is nil but resetMailer.SendPasswordReset was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		Email    string
		RawToken string
	}{Ctx: ctx, Email: email, RawToken: rawToken}
	mock.lockSendPasswordReset.Lock()
	mock.calls.SendPasswordReset = append(mock.calls.SendPasswordReset, callInfo)
	mock.lockSendPasswordReset.Unlock()
	return mock.SendPasswordResetFunc(ctx, email, rawToken)
}

func (mock *resetMailerMock) SendPasswordResetCalls() []struct {
	Ctx      context.Context
	Email    string
	RawToken string
} {
	mock.lockSendPasswordReset.RLock()
	calls := mock.calls.SendPasswordReset
	mock.lockSendPasswordReset.RUnlock()
	return calls
}
