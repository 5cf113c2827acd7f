package config

import "github.com/saja-boys/jinwoo-server/types"

// CoreExpressions returns the fixed reference-phrase table served by
// /api/expressions. Saved expressions have no backing store, so the saved
// list is always empty.
func CoreExpressions() []types.Expression {
	return []types.Expression{
		{ID: "1", Korean: "안녕하세요. 만나서 반가워요!", English: "Hi. Nice to meet you!", Category: "core"},
		{ID: "2", Korean: "잘 지내고 계세요?", English: "How's it going?", Category: "core"},
		{ID: "3", Korean: "이름이 어떻게 되세요?", English: "What's your name?", Category: "core"},
		{ID: "4", Korean: "어디서 오셨어요?", English: "Where are you from?", Category: "core"},
		{ID: "5", Korean: "저는 서울에서 왔어요.", English: "I'm from Seoul.", Category: "core"},
	}
}
