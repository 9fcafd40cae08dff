// Package console is a local REPL for talking to the assistant without
// Discord. It shares the assistant, knowledge store and search client with
// the bot, so macros registered here show up on the server and vice versa.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
)

// Session is the history key used for console conversations.
const Session = "console"

// Assistant is the part of chat.Assistant the console drives.
type Assistant interface {
	Handle(ctx context.Context, session, text string) (chat.Response, error)
	Reset(session string)
}

// LineReader reads one line per call. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Console reads lines, hands them to the assistant and prints the replies.
type Console struct {
	assistant Assistant
	reader    LineReader
	out       io.Writer
	logger    *zap.Logger
}

// NewReadline opens an interactive line editor. An empty historyFile keeps
// history in memory only.
func NewReadline(historyFile string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "you> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open line editor: %w", err)
	}
	return rl, nil
}

// New creates a Console.
func New(a Assistant, r LineReader, out io.Writer, logger *zap.Logger) *Console {
	return &Console{assistant: a, reader: r, out: out, logger: logger.Named("console")}
}

// Run loops until EOF, /quit, an interrupt on an empty line or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	defer c.reader.Close()
	c.println("Lucy: やっほー！なにか話しかけてね。/reset で記憶をリセット、/quit で終了だよ。")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := c.reader.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			c.assistant.Reset(Session)
			c.println("Lucy: 記憶をリセットしたよ！")
			continue
		}

		resp, err := c.assistant.Handle(ctx, Session, line)
		if err != nil {
			c.logger.Debug("assistant failed", zap.Error(err))
			c.println("Lucy: " + chat.Apology(err))
			continue
		}
		c.println("Lucy: " + Describe(resp))
	}
}

// Describe renders a response for the terminal. Recruit commands are shown
// rather than published.
func Describe(resp chat.Response) string {
	if resp.Recruit == nil {
		return resp.Text
	}
	r := resp.Recruit
	parts := []string{fmt.Sprintf("募集コマンド: %s", r.Content), "タイプ " + string(r.Type)}
	if r.Time != "" {
		parts = append(parts, "時間 "+r.Time)
	}
	if r.Role != "" {
		parts = append(parts, "ロール "+r.Role)
	}
	if r.Comment != "" {
		parts = append(parts, "コメント "+r.Comment)
	}
	return "（" + strings.Join(parts, " / ") + "）"
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}
