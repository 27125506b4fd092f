package scoring

// SpamKeywords is the curated list of title/description phrases that
// correlate with mass-produced or deceptive channels. Matching is
// case-insensitive over normalized text, so entries are lower case.
var SpamKeywords = []string{
	"sub4sub",
	"sub for sub",
	"free robux",
	"free v bucks",
	"free vbucks",
	"free gift card",
	"100 working",
	"no scam",
	"get rich quick",
	"make money fast",
	"earn money online",
	"click the link",
	"link in bio",
	"watch till the end",
	"wait for it",
	"gone wrong",
	"gone sexual",
	"3am challenge",
	"you won t believe",
	"must watch",
	"viral video",
	"viral shorts",
	"daily motivation",
	"sigma rule",
	"top 10 facts",
	"amazing facts",
	"ai generated",
	"ai voice",
	"text to speech",
	"reddit stories",
	"nursery rhymes",
	"kids songs",
	"learn colors",
	"wrong heads",
	"elsa spiderman",
	"satisfying video",
	"oddly satisfying",
	"relaxing music 24 7",
	"live 24 7",
}

// verifiedBrandPattern matches titles that look like an established brand
// or label account. A brand match suppresses the spam-keyword signal and
// counts as a risk-reducing signal instead.
const verifiedBrandPattern = `(?i)\b(vevo|official|records|network|broadcasting|news|studios|entertainment)\b`
