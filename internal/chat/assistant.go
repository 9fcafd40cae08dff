// Package chat is the conversation assistant: it routes addressed messages
// to macro registration, web search or the LLM, keeps a bounded history per
// conversation session and parses model replies into plain text or
// recruitment commands.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/knowledge"
	"github.com/Shivanand-hulikatti/lucybot/internal/llm"
	"github.com/Shivanand-hulikatti/lucybot/internal/search"
)

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// MacroBook is the part of the knowledge store the assistant uses.
type MacroBook interface {
	Snapshot(kind knowledge.Kind) map[string]string
	Put(kind knowledge.Kind, key, text string) error
}

// Response is what the bot should do with a handled message.
type Response struct {
	Route   RouteKind
	Text    string
	Recruit *RecruitCommand
}

// Options configures an Assistant.
type Options struct {
	Sessions  int
	Exchanges int
	Location  *time.Location
}

// Assistant answers addressed messages.
type Assistant struct {
	llm       llm.Client
	searcher  Searcher
	macros    MacroBook
	sessions  *lru.Cache[string, *History]
	exchanges int
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewAssistant builds an Assistant. Histories are kept per session key for
// the most recently active opts.Sessions sessions.
func NewAssistant(client llm.Client, searcher Searcher, macros MacroBook, opts Options, logger *zap.Logger) (*Assistant, error) {
	if opts.Sessions <= 0 {
		opts.Sessions = 256
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	sessions, err := lru.New[string, *History](opts.Sessions)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Assistant{
		llm:       client,
		searcher:  searcher,
		macros:    macros,
		sessions:  sessions,
		exchanges: opts.Exchanges,
		loc:       opts.Location,
		now:       time.Now,
		logger:    logger.Named("chat"),
	}, nil
}

// Handle answers text said in session. A returned error is a collaborator
// failure; the session's history has already been reset.
func (a *Assistant) Handle(ctx context.Context, session, text string) (Response, error) {
	text = strings.TrimSpace(text)
	macros := a.macros.Snapshot(knowledge.KindMacro)
	route := Classify(text, macros)

	switch route.Kind {
	case RouteRegisterMacro:
		return a.registerMacro(route)
	case RouteSearch:
		return a.answerFromSearch(ctx, session, text, route.Query)
	}

	history := a.history(session)
	names := make([]string, 0, len(macros))
	for k := range macros {
		names = append(names, k)
	}
	prompt := BuildPrompt(a.now().In(a.loc), text, route, names)

	raw, err := a.llm.Complete(ctx, Persona, history.Messages(), prompt)
	if err != nil {
		history.Reset()
		a.logger.Warn("chat completion failed", zap.String("session", session), zap.Error(err))
		return Response{Route: RouteChat}, err
	}

	reply := ParseReply(raw)
	if reply.Kind == ReplyRecruit {
		history.Reset()
		cmd := reply.Recruit
		a.logger.Info("recruit command", zap.String("session", session), zap.String("content", cmd.Content), zap.String("type", string(cmd.Type)))
		return Response{Route: RouteChat, Recruit: &cmd}, nil
	}
	history.Append(text, reply.Text)
	return Response{Route: RouteChat, Text: reply.Text}, nil
}

// Reset forgets the history of session.
func (a *Assistant) Reset(session string) {
	a.sessions.Remove(session)
}

// HistoryLen reports how many messages session remembers.
func (a *Assistant) HistoryLen(session string) int {
	if h, ok := a.sessions.Peek(session); ok {
		return h.Len()
	}
	return 0
}

func (a *Assistant) history(session string) *History {
	if h, ok := a.sessions.Get(session); ok {
		return h
	}
	h := NewHistory(a.exchanges)
	// Another goroutine may have created it meanwhile; keep theirs.
	if prev, ok, _ := a.sessions.PeekOrAdd(session, h); ok {
		return prev
	}
	return h
}

func (a *Assistant) registerMacro(route Route) (Response, error) {
	if route.Err != nil {
		return Response{Route: RouteRegisterMacro, Text: "登録する名前がないよ！ `マクロ登録 [名前]` にしてね！"}, nil
	}
	if err := a.macros.Put(knowledge.KindMacro, route.MacroName, route.MacroBody); err != nil {
		return Response{Route: RouteRegisterMacro}, fmt.Errorf("register macro: %w", err)
	}
	a.logger.Info("macro registered", zap.String("name", route.MacroName))
	return Response{Route: RouteRegisterMacro, Text: fmt.Sprintf("『%s』を覚えたよ！📦", route.MacroName)}, nil
}

func (a *Assistant) answerFromSearch(ctx context.Context, session, question, query string) (Response, error) {
	if a.searcher == nil {
		return Response{Route: RouteSearch, Text: "検索機能が設定されていないみたい…ごめんね！"}, nil
	}
	subject := strings.TrimSpace(strings.TrimPrefix(query, "FF14"))
	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		a.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return Response{Route: RouteSearch, Text: fmt.Sprintf("あわわ、目が回っちゃった…（エラー: `%v`）", err)}, nil
	}
	if len(results) == 0 {
		return Response{Route: RouteSearch, Text: fmt.Sprintf("ごめんね、「%s」について調べてみたけど、情報が見つからなかったよ…😢", subject)}, nil
	}
	a.logger.Debug("web search", zap.String("query", query), zap.Int("results", len(results)))

	raw, err := a.llm.Complete(ctx, Persona+SearchAddon, nil, BuildSearchPrompt(question, search.FormatResults(results)))
	if err != nil {
		a.Reset(session)
		return Response{Route: RouteSearch}, err
	}
	return Response{Route: RouteSearch, Text: strings.TrimSpace(raw)}, nil
}
