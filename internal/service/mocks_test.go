package service

import (
	"context"
	"errors"

	"fluxgen-backend/internal/provider"
)

// --- Mocks ---

// mockProvider 可编排的 provider 桩，记录最近一次调用的入参
type mockProvider struct {
	called         bool
	callCount      int
	lastCredential string
	lastInput      *provider.Input

	result *provider.Result
	err    error
}

func (m *mockProvider) Generate(ctx context.Context, credential string, input *provider.Input) (*provider.Result, error) {
	m.called = true
	m.callCount++
	m.lastCredential = credential
	m.lastInput = input

	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &provider.Result{
		Images: []provider.Image{{URL: "https://x/img.jpg"}},
	}, nil
}

var errBoom = errors.New("connection reset")
