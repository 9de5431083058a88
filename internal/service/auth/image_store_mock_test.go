package auth

import (
	"context"
	"io"
	"sync"
	"time"
)

var _ imageStore = &imageStoreMock{}

type imageStoreMock struct {
	DeleteFunc     func(ctx context.Context, key string) error
	PresignGetFunc func(ctx context.Context, key string, expiry time.Duration) (string, error)
	PutFunc        func(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	calls struct {
		Delete []struct {
			Ctx context.Context
			Key string
		}
		PresignGet []struct {
			Ctx    context.Context
			Key    string
			Expiry time.Duration
		}
		Put []struct {
			Ctx         context.Context
			Key         string
			R           io.Reader
			Size        int64
			ContentType string
		}
	}
	lockDelete     sync.RWMutex
	lockPresignGet sync.RWMutex
	lockPut        sync.RWMutex
}

func (mock *imageStoreMock) Delete(ctx context.Context, key string) error {
	if mock.DeleteFunc == nil {
		panic("imageStoreMock.DeleteFunc: method is nil but imageStore.Delete was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, key)
}

func (mock *imageStoreMock) DeleteCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockDelete.RLock()
	calls := mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

func (mock *imageStoreMock) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if mock.PresignGetFunc == nil {
		panic("imageStoreMock.PresignGetFunc: method is nil but imageStore.PresignGet was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Key    string
		Expiry time.Duration
	}{Ctx: ctx, Key: key, Expiry: expiry}
	mock.lockPresignGet.Lock()
	mock.calls.PresignGet = append(mock.calls.PresignGet, callInfo)
	mock.lockPresignGet.Unlock()
	return mock.PresignGetFunc(ctx, key, expiry)
}

func (mock *imageStoreMock) PresignGetCalls() []struct {
	Ctx    context.Context
	Key    string
	Expiry time.Duration
} {
	mock.lockPresignGet.RLock()
	calls := mock.calls.PresignGet
	mock.lockPresignGet.RUnlock()
	return calls
}

func (mock *imageStoreMock) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if mock.PutFunc == nil {
		panic("imageStoreMock.PutFunc: method is nil but imageStore.Put was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		Key         string
		R           io.Reader
		Size        int64
		ContentType string
	}{Ctx: ctx, Key: key, R: r, Size: size, ContentType: contentType}
	mock.lockPut.Lock()
	mock.calls.Put = append(mock.calls.Put, callInfo)
	mock.lockPut.Unlock()
	return mock.PutFunc(ctx, key, r, size, contentType)
}

func (mock *imageStoreMock) PutCalls() []struct {
	Ctx         context.Context
	Key         string
	R           io.Reader
	Size        int64
	ContentType string
} {
	mock.lockPut.RLock()
	calls := mock.calls.Put
	mock.lockPut.RUnlock()
	return calls
}
