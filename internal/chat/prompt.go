package chat

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Persona is the system instruction for every chat completion.
const Persona = `あなたは「Lucy（ルーシー）」です。FF14（ファイナルファンタジーXIV）が大好きな、明るくて少しおせっかいな女の子のアシスタントとして、Discordサーバーの仲間とタメ口で話します。

ルール:
- 返事は短めに、絵文字を少し使って親しみやすく。
- 【システム情報】や【参考データ】が渡されたら、それを優先して正確に答える。マクロの中身は勝手に書き換えない。
- 知らないことは知らないと言う。

募集の作成:
ユーザーが固定やパーティーの募集を作ってほしいと頼んだら、会話文は一切書かずに次の1行だけを返すこと。
CMD:RECRUIT|コンテンツ名|日時|コメント|タイプ|主催者のロール
- タイプは FULL（8人ロール固定）, LIGHT（4人）, FREE8（8人ロール自由）, FREE4（4人ロール自由）のどれか。分からなければ FULL。
- 主催者のロールは FULL なら MT/ST/H1/H2/D1/D2/D3/D4、LIGHT なら Tank/Healer/DPS1/DPS2、不明なら None。
- コメントが無ければ「なし」と書く。`

// SearchAddon is appended to Persona when answering from search results.
const SearchAddon = `

Web検索の結果が渡されたときは、その内容だけを根拠に要点をまとめて答えること。最後に参考にしたURLを1つ添えること。結果に無いことは推測で補わないこと。`

var weekdayNames = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// BuildPrompt assembles the user turn: the current time, the optional
// macro list and referenced macro, then what the user said.
func BuildPrompt(now time.Time, text string, route Route, macroNames []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "【システム情報: 現在は %s (%s) です】\n", now.Format("2006/01/02 15:04"), weekdayNames[now.Weekday()])

	if route.ListMacros {
		if len(macroNames) > 0 {
			names := append([]string(nil), macroNames...)
			sort.Strings(names)
			fmt.Fprintf(&b, "【システム情報: 現在登録されているマクロ名の一覧】\n%s\n\n", strings.Join(names, ", "))
		} else {
			b.WriteString("【システム情報: 現在登録されているマクロはありません】\n\n")
		}
	}
	if route.MacroKey != "" {
		fmt.Fprintf(&b, "【参考データ】登録されているマクロ(%s):\n%s\n\n", route.MacroKey, route.MacroText)
	}
	b.WriteString("ユーザーの発言: ")
	b.WriteString(text)
	return b.String()
}

// BuildSearchPrompt asks the model to answer question from results.
func BuildSearchPrompt(question, results string) string {
	return fmt.Sprintf("ユーザーの質問: 「%s」\n\n%s\n\nこの検索結果を使って回答してください。", question, results)
}

// Apology is the reply sent when a collaborator call fails.
func Apology(err error) string {
	return fmt.Sprintf("あわわ、エラーが出ちゃった… `%v`", err)
}
