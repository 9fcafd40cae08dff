package chat

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMacroNameMissing is returned for "マクロ登録" without a name.
var ErrMacroNameMissing = errors.New("macro name is missing")

const registerPrefix = "マクロ登録"

var (
	searchKeywords   = []string{"って何", "ってなに", "とは", "調べて", "検索", "教えて", "なんですか"}
	listMainKeywords = []string{"マクロ", "覚え", "登録", "記憶", "知っ"}
	listSubKeywords  = []string{"一覧", "何", "なん", "教えて", "見せて", "ある", "どんな", "リスト", "全部", "すべて"}
	nameBrackets     = strings.NewReplacer("[", "", "]", "", "【", "", "】", "")
)

// RouteKind says how a message is handled.
type RouteKind int

const (
	RouteChat RouteKind = iota
	RouteRegisterMacro
	RouteSearch
)

// Route is the classification of one addressed message.
type Route struct {
	Kind RouteKind

	// RouteRegisterMacro
	MacroName string
	MacroBody string
	Err       error

	// RouteSearch
	Query string

	// RouteChat
	ListMacros bool
	MacroKey   string
	MacroText  string
}

// Classify routes text. Precedence: macro registration, then web search
// (unless the text talks about macros), then chat. For chat it also
// resolves the macro list trigger and the longest macro name mentioned.
func Classify(text string, macros map[string]string) Route {
	text = strings.TrimSpace(text)
	folded := fold(text)

	if strings.HasPrefix(text, registerPrefix) && strings.Contains(text, "\n") {
		header, body, _ := strings.Cut(text, "\n")
		name := strings.TrimSpace(strings.TrimPrefix(header, registerPrefix))
		name = strings.TrimSpace(nameBrackets.Replace(name))
		r := Route{Kind: RouteRegisterMacro, MacroName: name, MacroBody: strings.TrimSpace(body)}
		if name == "" {
			r.Err = ErrMacroNameMissing
		}
		return r
	}

	if containsAny(folded, searchKeywords) && !strings.Contains(folded, "マクロ") {
		return Route{Kind: RouteSearch, Query: SearchQuery(text)}
	}

	r := Route{Kind: RouteChat}
	r.ListMacros = containsAny(folded, listMainKeywords) && containsAny(folded, listSubKeywords)
	if key, ok := matchMacro(folded, macros); ok {
		r.MacroKey, r.MacroText = key, macros[key]
	}
	return r
}

// SearchQuery strips the question words from text and prefixes the game
// name so results stay on topic.
func SearchQuery(text string) string {
	q := fold(text)
	for _, k := range searchKeywords {
		q = strings.ReplaceAll(q, k, "")
	}
	q = strings.NewReplacer("?", "", "？", "").Replace(q)
	q = strings.TrimSpace(q)
	if q == "" {
		q = strings.TrimSpace(text)
	}
	return "FF14 " + q
}

// matchMacro finds the longest macro name contained in text.
func matchMacro(text string, macros map[string]string) (string, bool) {
	keys := make([]string, 0, len(macros))
	for k := range macros {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.Contains(text, fold(k)) {
			return k, true
		}
	}
	return "", false
}

// fold normalizes width variants (half-width katakana, full-width ASCII)
// so keyword matching sees one form.
func fold(s string) string {
	return norm.NFKC.String(s)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
