// Package i18n localizes the fix-it hints attached to compile Issues.
package i18n

// Translator retrieves localized hints for Issue codes.
// data provides optional values to embed in the text (for example, "kind").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unresolved_type": "every declared type must be defined before compiling",
		"empty_union":     "give the union at least one member",
		"empty_enum":      "give the enum at least one case",
		"unknown_root":    "set the root to a node of the graph",
		"unknown_format":  "use one of date, time, date-time, uuid, uri, integer-string, bool-string",
		"anonymous_cycle": "give the recursive type a name by wrapping it in an object",
		"invalid_graph":   "every edge must point at a node of the graph",
		"template":        "base templates need %GRAMMAR_NAME%, %ROOT_GRAMMAR% and %REFS_GRAMMAR% once each",
	},
	"ja": {
		"unresolved_type": "コンパイル前に宣言したすべての型を定義してください",
		"empty_union":     "ユニオンに少なくとも1つのメンバーを指定してください",
		"empty_enum":      "列挙型に少なくとも1つの値を指定してください",
		"unknown_root":    "グラフ内のノードをルートに指定してください",
		"unknown_format":  "date, time, date-time, uuid, uri, integer-string, bool-string のいずれかを使用してください",
		"anonymous_cycle": "再帰する型はオブジェクトで包んで名前を付けてください",
		"invalid_graph":   "すべての辺はグラフ内のノードを指す必要があります",
		"template":        "ベーステンプレートには %GRAMMAR_NAME%, %ROOT_GRAMMAR%, %REFS_GRAMMAR% をそれぞれ1回ずつ含めてください",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if msg, ok := dictionaries[t.lang][code]; ok {
		return msg
	}
	if msg, ok := dictionaries["en"][code]; ok {
		return msg
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
