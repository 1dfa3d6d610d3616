package kana

// r is a shorthand to build a romaji spelling list.
func r(spellings ...string) []string { return spellings }

// romajiTable maps hiragana units to accepted romaji spellings.
// The first spelling of each entry is the canonical one. Two-rune entries
// (yōon) are matched before single runes.
var romajiTable = []struct {
	kana   string
	romaji []string
}{
	// 拗音
	{"きゃ", r("kya")},
	{"きゅ", r("kyu")},
	{"きょ", r("kyo")},
	{"しゃ", r("sha", "sya")},
	{"しゅ", r("shu", "syu")},
	{"しょ", r("sho", "syo")},
	{"ちゃ", r("cha", "tya")},
	{"ちゅ", r("chu", "tyu")},
	{"ちょ", r("cho", "tyo")},
	{"にゃ", r("nya")},
	{"にゅ", r("nyu")},
	{"にょ", r("nyo")},
	{"ひゃ", r("hya")},
	{"ひゅ", r("hyu")},
	{"ひょ", r("hyo")},
	{"みゃ", r("mya")},
	{"みゅ", r("myu")},
	{"みょ", r("myo")},
	{"りゃ", r("rya")},
	{"りゅ", r("ryu")},
	{"りょ", r("ryo")},
	{"ぎゃ", r("gya")},
	{"ぎゅ", r("gyu")},
	{"ぎょ", r("gyo")},
	{"じゃ", r("ja", "zya")},
	{"じゅ", r("ju", "zyu")},
	{"じょ", r("jo", "zyo")},
	{"びゃ", r("bya")},
	{"びゅ", r("byu")},
	{"びょ", r("byo")},
	{"ぴゃ", r("pya")},
	{"ぴゅ", r("pyu")},
	{"ぴょ", r("pyo")},

	// あ行
	{"あ", r("a")},
	{"い", r("i")},
	{"う", r("u")},
	{"え", r("e")},
	{"お", r("o")},
	// か行
	{"か", r("ka")},
	{"き", r("ki")},
	{"く", r("ku")},
	{"け", r("ke")},
	{"こ", r("ko")},
	// さ行
	{"さ", r("sa")},
	{"し", r("si", "shi")},
	{"す", r("su")},
	{"せ", r("se")},
	{"そ", r("so")},
	// た行
	{"た", r("ta")},
	{"ち", r("ti", "chi")},
	{"つ", r("tu", "tsu")},
	{"て", r("te")},
	{"と", r("to")},
	// な行
	{"な", r("na")},
	{"に", r("ni")},
	{"ぬ", r("nu")},
	{"ね", r("ne")},
	{"の", r("no")},
	// は行
	{"は", r("ha")},
	{"ひ", r("hi")},
	{"ふ", r("hu", "fu")},
	{"へ", r("he")},
	{"ほ", r("ho")},
	// ま行
	{"ま", r("ma")},
	{"み", r("mi")},
	{"む", r("mu")},
	{"め", r("me")},
	{"も", r("mo")},
	// や行
	{"や", r("ya")},
	{"ゆ", r("yu")},
	{"よ", r("yo")},
	// ら行
	{"ら", r("ra")},
	{"り", r("ri")},
	{"る", r("ru")},
	{"れ", r("re")},
	{"ろ", r("ro")},
	// わ行
	{"わ", r("wa")},
	{"を", r("wo", "o")},
	{"ん", r("n", "nn")},
	// が行
	{"が", r("ga")},
	{"ぎ", r("gi")},
	{"ぐ", r("gu")},
	{"げ", r("ge")},
	{"ご", r("go")},
	// ざ行
	{"ざ", r("za")},
	{"じ", r("ji", "zi")},
	{"ず", r("zu")},
	{"ぜ", r("ze")},
	{"ぞ", r("zo")},
	// だ行
	{"だ", r("da")},
	{"ぢ", r("di", "ji")},
	{"づ", r("du", "zu")},
	{"で", r("de")},
	{"ど", r("do")},
	// ば行
	{"ば", r("ba")},
	{"び", r("bi")},
	{"ぶ", r("bu")},
	{"べ", r("be")},
	{"ぼ", r("bo")},
	// ぱ行
	{"ぱ", r("pa")},
	{"ぴ", r("pi")},
	{"ぷ", r("pu")},
	{"ぺ", r("pe")},
	{"ぽ", r("po")},
	// 小文字
	{"ゃ", r("ya")},
	{"ゅ", r("yu")},
	{"ょ", r("yo")},
	{"ぁ", r("a")},
	{"ぃ", r("i")},
	{"ぅ", r("u")},
	{"ぇ", r("e")},
	{"ぉ", r("o")},
	// 長音
	{"ー", r("-")},
}

// Unit classes used for intrinsic difficulty and ん disambiguation.
const (
	vowels     = "あいうえお"
	basicKana  = "あいうえおかきくけこさしすせそたちつてとなにぬねのはひふへほまみむめもやゆよらりるれろわをん"
	voicedKana = "がぎぐげござじずぜぞだぢづでどばびぶべぼぱぴぷぺぽ"
	smallKana  = "ぁぃぅぇぉっゃゅょ"

	// nasalBreakers are the leading kana after which ん must be typed nn.
	nasalBreakers = "あいうえおやゆよぁぃぅぇぉゃゅょ"

	punctuation = "。、！？「」『』（）・～…"
)

const (
	smallTsu    = "っ"
	nasal       = "ん"
	prolongMark = 'ー'
)

// smallTsuEscapes are the explicit spellings of a standalone っ.
var smallTsuEscapes = []string{"xtu", "xtsu"}

var (
	romaji2 map[string][]string // two-rune entries
	romaji1 map[string][]string // one-rune entries
)

func init() {
	romaji2 = make(map[string][]string)
	romaji1 = make(map[string][]string)
	for _, e := range romajiTable {
		if len([]rune(e.kana)) == 2 {
			romaji2[e.kana] = e.romaji
		} else {
			romaji1[e.kana] = e.romaji
		}
	}
}
