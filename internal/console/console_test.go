package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/model"
)

type scriptReader struct {
	lines  []string
	errs   []error
	closed bool
}

func (r *scriptReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line, err := r.lines[0], r.errs[0]
	r.lines, r.errs = r.lines[1:], r.errs[1:]
	return line, err
}

func (r *scriptReader) Close() error {
	r.closed = true
	return nil
}

func script(lines ...string) *scriptReader {
	return &scriptReader{lines: lines, errs: make([]error, len(lines))}
}

type fakeAssistant struct {
	said   []string
	resets int
	reply  func(text string) (chat.Response, error)
}

func (f *fakeAssistant) Handle(_ context.Context, session, text string) (chat.Response, error) {
	if session != Session {
		return chat.Response{}, errors.New("unexpected session " + session)
	}
	f.said = append(f.said, text)
	return f.reply(text)
}

func (f *fakeAssistant) Reset(string) { f.resets++ }

func echo(text string) (chat.Response, error) {
	return chat.Response{Text: "echo " + text}, nil
}

func TestRunConversation(t *testing.T) {
	a := &fakeAssistant{reply: echo}
	r := script("こんにちは", "  ", "/reset", "またね")
	var out bytes.Buffer

	require.NoError(t, New(a, r, &out, zap.NewNop()).Run(context.Background()))

	assert.Equal(t, []string{"こんにちは", "またね"}, a.said)
	assert.Equal(t, 1, a.resets)
	assert.True(t, r.closed)
	assert.Contains(t, out.String(), "Lucy: echo こんにちは\n")
	assert.Contains(t, out.String(), "Lucy: 記憶をリセットしたよ！\n")
}

func TestRunStopsOnQuitAndInterrupt(t *testing.T) {
	a := &fakeAssistant{reply: echo}
	require.NoError(t, New(a, script("/quit", "never"), io.Discard, zap.NewNop()).Run(context.Background()))
	assert.Empty(t, a.said)

	r := &scriptReader{
		lines: []string{"half", "", "never"},
		errs:  []error{readline.ErrInterrupt, readline.ErrInterrupt, nil},
	}
	require.NoError(t, New(a, r, io.Discard, zap.NewNop()).Run(context.Background()))
	assert.Empty(t, a.said)
}

func TestRunReportsAssistantErrors(t *testing.T) {
	a := &fakeAssistant{reply: func(string) (chat.Response, error) {
		return chat.Response{}, errors.New("quota exceeded")
	}}
	var out bytes.Buffer
	require.NoError(t, New(a, script("hi"), &out, zap.NewNop()).Run(context.Background()))
	assert.Contains(t, out.String(), "quota exceeded")
}

func TestRunReadError(t *testing.T) {
	r := &scriptReader{lines: []string{""}, errs: []error{errors.New("tty gone")}}
	err := New(&fakeAssistant{reply: echo}, r, io.Discard, zap.NewNop()).Run(context.Background())
	assert.ErrorContains(t, err, "tty gone")
}

func TestDescribeRecruit(t *testing.T) {
	resp := chat.Response{Recruit: &chat.RecruitCommand{
		Content: "極タイタン", Time: "21:00", Type: model.TypeLight, Role: "Healer",
	}}
	assert.Equal(t, "（募集コマンド: 極タイタン / タイプ LIGHT / 時間 21:00 / ロール Healer）", Describe(resp))
	assert.Equal(t, "plain", Describe(chat.Response{Text: "plain"}))
}
