package sentence

import (
	"context"
	"sync"
)

var _ bookCache = &bookCacheMock{}

type bookCacheMock struct {
	TouchBookFunc func(ctx context.Context, title string, author *string, publisher *string) error

	calls struct {
		TouchBook []struct {
			Ctx       context.Context
			Title     string
			Author    *string
			Publisher *string
		}
	}
	lockTouchBook sync.RWMutex
}

func (mock *bookCacheMock) TouchBook(ctx context.Context, title string, author *string, publisher *string) error {
	if mock.TouchBookFunc == nil {
		panic("bookCacheMock.TouchBookFunc: method is nil but bookCache.TouchBook was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		Title     string
		Author    *string
		Publisher *string
	}{Ctx: ctx, Title: title, Author: author, Publisher: publisher}
	mock.lockTouchBook.Lock()
	mock.calls.TouchBook = append(mock.calls.TouchBook, callInfo)
	mock.lockTouchBook.Unlock()
	return mock.TouchBookFunc(ctx, title, author, publisher)
}

func (mock *bookCacheMock) TouchBookCalls() []struct {
	Ctx       context.Context
	Title     string
	Author    *string
	Publisher *string
} {
	mock.lockTouchBook.RLock()
	calls := mock.calls.TouchBook
	mock.lockTouchBook.RUnlock()
	return calls
}
