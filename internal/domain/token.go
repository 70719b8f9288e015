package domain

import (
	"strconv"
)

// Token names recognised by the bundled templates. Templates and this list
// must be kept in step; unknown markers are passed through untouched.
const (
	TokenLogoImgURL    = "logo_img_url"
	TokenLogoWidth     = "logo_width"
	TokenLogoHeight    = "logo_height"
	TokenHeroImgURL    = "hero_img_url"
	TokenHeroWidth     = "hero_width"
	TokenHeroHeight    = "hero_height"
	TokenCTAURL        = "cta_url"
	TokenQuizQuestion  = "quiz_question"
	TokenQuizOpt1Label = "quiz_opt1_label"
	TokenQuizOpt2Label = "quiz_opt2_label"
	TokenQuizOpt3Label = "quiz_opt3_label"
	TokenQuizOpt4Label = "quiz_opt4_label"
)

// TokenVocabulary lists every recognised token name
var TokenVocabulary = []string{
	TokenLogoImgURL, TokenLogoWidth, TokenLogoHeight,
	TokenHeroImgURL, TokenHeroWidth, TokenHeroHeight,
	TokenCTAURL,
	TokenQuizQuestion, TokenQuizOpt1Label, TokenQuizOpt2Label, TokenQuizOpt3Label, TokenQuizOpt4Label,
}

// TokenValue is either a string or an integer
type TokenValue struct {
	str   string
	num   int
	isNum bool
}

func StringValue(s string) TokenValue {
	return TokenValue{str: s}
}

func IntValue(n int) TokenValue {
	return TokenValue{num: n, isNum: true}
}

// IsInt reports whether the value holds an integer
func (v TokenValue) IsInt() bool {
	return v.isNum
}

// Int returns the integer value, 0 for strings
func (v TokenValue) Int() int {
	return v.num
}

func (v TokenValue) String() string {
	if v.isNum {
		return strconv.Itoa(v.num)
	}
	return v.str
}

// TokenMapping maps token names to resolved values
type TokenMapping map[string]TokenValue

// Strings renders every value to its string form
func (m TokenMapping) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

// BuildTokenMapping assembles the full mapping for one generation pass from
// the text inputs and the resolved asset of every slot. Slots without an
// entry in assets contribute their placeholder asset.
func BuildTokenMapping(text TextInputs, slots []ImageSlot, assets map[SlotID]ResolvedAsset) TokenMapping {
	m := TokenMapping{
		TokenCTAURL:        StringValue(text.CTAURL),
		TokenQuizQuestion:  StringValue(text.QuizQuestion),
		TokenQuizOpt1Label: StringValue(text.QuizOptionLabels[0]),
		TokenQuizOpt2Label: StringValue(text.QuizOptionLabels[1]),
		TokenQuizOpt3Label: StringValue(text.QuizOptionLabels[2]),
		TokenQuizOpt4Label: StringValue(text.QuizOptionLabels[3]),
	}

	for _, slot := range slots {
		asset, ok := assets[slot.ID]
		if !ok {
			asset = slot.Default()
		}
		m[slot.URLToken] = StringValue(asset.URL)
		m[slot.WidthToken] = IntValue(asset.Width)
		m[slot.HeightToken] = IntValue(asset.Height)
	}

	return m
}
