package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fluxgen-backend/internal/model"
	"fluxgen-backend/internal/provider"
	"fluxgen-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T, p provider.ImageProvider) *SessionService {
	t.Helper()
	store := storage.NewMemoryStorage(time.Hour, time.Hour)
	return NewSessionService(store, NewGenerateService(p), 50*time.Millisecond)
}

func TestSessionService_CreateSession_Defaults(t *testing.T) {
	svc := newTestSessionService(t, &mockProvider{})

	session, err := svc.CreateSession()
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "1:1", session.AspectRatio)
	assert.Equal(t, "jpeg", session.OutputFormat)
	assert.Equal(t, 2, session.SafetyTolerance)
	assert.False(t, session.RawMode)
	assert.False(t, session.Pending)
	assert.False(t, session.HasCredential())
}

func TestSessionService_FocusPrompt(t *testing.T) {
	svc := newTestSessionService(t, &mockProvider{})
	session, _ := svc.CreateSession()

	t.Run("没有凭证时打开弹窗", func(t *testing.T) {
		state, err := svc.FocusPrompt(session.ID)
		require.NoError(t, err)
		assert.True(t, state.KeyDialogOpen)
	})

	t.Run("已有凭证时不再打开", func(t *testing.T) {
		_, err := svc.ConfirmCredential(session.ID, "secret")
		require.NoError(t, err)

		state, err := svc.FocusPrompt(session.ID)
		require.NoError(t, err)
		assert.False(t, state.KeyDialogOpen)
	})
}

func TestSessionService_ConfirmCredential(t *testing.T) {
	svc := newTestSessionService(t, &mockProvider{})
	session, _ := svc.CreateSession()
	svc.FocusPrompt(session.ID)

	t.Run("空白值拒绝", func(t *testing.T) {
		_, err := svc.ConfirmCredential(session.ID, "   ")
		assert.ErrorIs(t, err, ErrEmptyCredential)
	})

	t.Run("保存后关闭弹窗", func(t *testing.T) {
		state, err := svc.ConfirmCredential(session.ID, " secret ")
		require.NoError(t, err)
		assert.True(t, state.HasCredential())
		assert.False(t, state.KeyDialogOpen)
	})

	t.Run("清除凭证", func(t *testing.T) {
		state, err := svc.ClearCredential(session.ID)
		require.NoError(t, err)
		assert.False(t, state.HasCredential())
	})
}

func TestSessionService_UpdateField(t *testing.T) {
	svc := newTestSessionService(t, &mockProvider{})
	session, _ := svc.CreateSession()

	state, err := svc.UpdateField(session.ID, "aspect_ratio", "16:9")
	require.NoError(t, err)
	assert.Equal(t, "16:9", state.AspectRatio)

	state, err = svc.UpdateField(session.ID, "output_format", "png")
	require.NoError(t, err)
	assert.Equal(t, "png", state.OutputFormat)

	state, err = svc.UpdateField(session.ID, "safety_tolerance", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, state.SafetyTolerance)

	state, err = svc.UpdateField(session.ID, "raw", "true")
	require.NoError(t, err)
	assert.True(t, state.RawMode)

	// 越界和未知字段都拒绝
	_, err = svc.UpdateField(session.ID, "aspect_ratio", "2:1")
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
	_, err = svc.UpdateField(session.ID, "safety_tolerance", "7")
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
	_, err = svc.UpdateField(session.ID, "prompt", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSessionService_Generate_MergesSessionFields(t *testing.T) {
	// 提交时自动并入凭证和四个镜像字段
	mock := &mockProvider{}
	svc := newTestSessionService(t, mock)
	session, _ := svc.CreateSession()

	svc.ConfirmCredential(session.ID, "secret")
	svc.UpdateField(session.ID, "aspect_ratio", "3:2")
	svc.UpdateField(session.ID, "output_format", "png")
	svc.UpdateField(session.ID, "safety_tolerance", "4")
	svc.UpdateField(session.ID, "raw", "true")

	outcome, err := svc.Generate(context.Background(), session.ID, map[string]string{
		"prompt": "a cat",
	})
	require.NoError(t, err)

	assert.Equal(t, "secret", mock.lastCredential)
	assert.Equal(t, "3:2", mock.lastInput.AspectRatio)
	assert.Equal(t, "png", mock.lastInput.OutputFormat)
	assert.Equal(t, "4", mock.lastInput.SafetyTolerance)
	assert.True(t, mock.lastInput.Raw)
	assert.Equal(t, "https://x/img.jpg", outcome.Image)

	state, err := svc.GetState(session.ID)
	require.NoError(t, err)
	assert.False(t, state.Pending)
	assert.Equal(t, outcome, state.Last)
	assert.Nil(t, state.Notice, "成功时不应有提示")
}

func TestSessionService_Generate_EmptyOptionalFieldsDropped(t *testing.T) {
	// 表单留空的可选字段不应触发校验失败
	mock := &mockProvider{}
	svc := newTestSessionService(t, mock)
	session, _ := svc.CreateSession()
	svc.ConfirmCredential(session.ID, "secret")

	outcome, err := svc.Generate(context.Background(), session.ID, map[string]string{
		"prompt":                "a cat",
		"seed":                  "",
		"image_prompt":          "",
		"image_prompt_strength": "",
	})
	require.NoError(t, err)
	assert.Empty(t, outcome.Error)
	assert.Nil(t, mock.lastInput.Seed)
}

func TestSessionService_Generate_FailurePostsNotice(t *testing.T) {
	mock := &mockProvider{err: &provider.APIError{StatusCode: 403, Message: "quota exceeded"}}
	svc := newTestSessionService(t, mock)
	session, _ := svc.CreateSession()
	svc.ConfirmCredential(session.ID, "secret")

	outcome, err := svc.Generate(context.Background(), session.ID, map[string]string{
		"prompt": "a cat",
	})
	require.NoError(t, err)
	assert.Equal(t, "quota exceeded", outcome.Error)

	state, err := svc.GetState(session.ID)
	require.NoError(t, err)
	require.NotNil(t, state.Notice)
	assert.Equal(t, "quota exceeded", state.Notice.Message)

	// 提示到期后自动消失
	time.Sleep(60 * time.Millisecond)
	state, err = svc.GetState(session.ID)
	require.NoError(t, err)
	assert.Nil(t, state.Notice)
}

func TestSessionService_Generate_PendingBlocksResubmission(t *testing.T) {
	// provider 阻塞期间，同会话的第二次提交被拒绝
	release := make(chan struct{})
	blocking := &blockingProvider{release: release}
	svc := newTestSessionService(t, blocking)
	session, _ := svc.CreateSession()
	svc.ConfirmCredential(session.ID, "secret")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Generate(context.Background(), session.ID, map[string]string{"prompt": "a cat"})
	}()

	// 等第一次提交把 pending 置位
	require.Eventually(t, func() bool {
		state, err := svc.GetState(session.ID)
		return err == nil && state.Pending
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Generate(context.Background(), session.ID, map[string]string{"prompt": "a cat"})
	assert.ErrorIs(t, err, ErrGenerationPending)

	close(release)
	wg.Wait()

	state, err := svc.GetState(session.ID)
	require.NoError(t, err)
	assert.False(t, state.Pending)
	assert.Equal(t, 1, blocking.callCount)
}

func TestSessionService_Generate_UnknownSession(t *testing.T) {
	svc := newTestSessionService(t, &mockProvider{})

	_, err := svc.Generate(context.Background(), "missing", map[string]string{"prompt": "a cat"})
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionService_StateReadsReturnCopies(t *testing.T) {
	mock := &mockProvider{err: &provider.APIError{StatusCode: 403, Message: "quota exceeded"}}
	svc := newTestSessionService(t, mock)
	session, _ := svc.CreateSession()
	svc.ConfirmCredential(session.ID, "secret")
	svc.Generate(context.Background(), session.ID, map[string]string{"prompt": "a cat"})

	// 改动读出来的状态不应影响存储里的实例
	state, err := svc.GetState(session.ID)
	require.NoError(t, err)
	require.NotNil(t, state.Notice)
	state.AspectRatio = "9:21"
	state.Notice.Message = "tampered"

	fresh, err := svc.GetState(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "1:1", fresh.AspectRatio)
	require.NotNil(t, fresh.Notice)
	assert.Equal(t, "quota exceeded", fresh.Notice.Message)
}

func TestSessionService_ConcurrentReadsDuringGenerate(t *testing.T) {
	// 生成进行中读取会话状态：读到的是副本，不与提交收尾的写入竞争
	mock := &mockProvider{}
	svc := newTestSessionService(t, mock)
	session, _ := svc.CreateSession()
	svc.ConfirmCredential(session.ID, "secret")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			svc.Generate(context.Background(), session.ID, map[string]string{"prompt": "a cat"})
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		state, err := svc.GetState(session.ID)
		require.NoError(t, err)
		resp := model.NewSessionResponse(state)
		assert.Equal(t, session.ID, resp.SessionID)
	}
}

// blockingProvider 卡住调用直到 release 关闭，用来制造 pending 窗口
type blockingProvider struct {
	release   chan struct{}
	callCount int
}

func (b *blockingProvider) Generate(ctx context.Context, credential string, input *provider.Input) (*provider.Result, error) {
	b.callCount++
	<-b.release
	return &provider.Result{Images: []provider.Image{{URL: "https://x/img.jpg"}}}, nil
}
