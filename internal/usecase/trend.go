package usecase

const noDirectionPhrase = "no direction found"

var trendPhrases = map[string]string{
	"Flat":              "steady",
	"FortyFiveUp":       "rising",
	"FortyFiveDown":     "falling",
	"SingleUp":          "single up",
	"DoubleUp":          "double up",
	"SingleDown":        "single down",
	"DoubleDown":        "double down",
	"NONE":              "no slope",
	"NOT_COMPUTABLE":    "the slope is not computable",
	"RATE_OUT_OF_RANGE": "the rate is out of range",
}

// TrendPhrase maps a CGM direction code to speech. Unknown codes get a
// neutral phrase.
func TrendPhrase(code string) string {
	if p, ok := trendPhrases[code]; ok {
		return p
	}
	return noDirectionPhrase
}
