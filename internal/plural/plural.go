// Package plural turns English singular nouns into plural forms.
//
// Lookup order: registered overrides, single capital letters, invariable
// endings, uninflected nouns, irregular forms, then an ordered table of
// suffix rewrites where the first matching rule wins. Anything left over
// gets a plain "s". The result mirrors the casing pattern of the input.
package plural

import (
	"regexp"
	"strings"
	"sync"

	"github.com/vk/stringalong/internal/textcase"
)

var (
	mu     sync.RWMutex
	custom = map[string]string{}
)

// Define registers a singular -> plural override. Lookups are
// case-insensitive on the singular form. Safe to call at any time.
func Define(singular, pluralForm string) {
	mu.Lock()
	defer mu.Unlock()
	custom[strings.ToLower(singular)] = pluralForm
}

// Reset removes every registered override.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	custom = map[string]string{}
}

func lookupCustom(lower string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := custom[lower]
	return p, ok
}

var uninflected = toSet(
	"aircraft,advice,blues,corn,molasses,equipment,gold,information,cotton,jewelry,kin," +
		"legislation,luck,luggage,moose,music,offspring,rice,silver,trousers,wheat,bison," +
		"bream,breeches,britches,carp,chassis,clippers,cod,contretemps,corps,debris,diabetes," +
		"djinn,eland,elk,flounder,gallows,graffiti,headquarters,herpes,high,homework,innings," +
		"jackanapes,mackerel,measles,mews,mumps,news,pincers,pliers,proceedings,rabies," +
		"salmon,scissors,sea,series,shears,species,swine,trout,tuna,whiting,wildebeest,pike," +
		"oats,tongs,dregs,snuffers,victuals,tweezers,vespers,pinchers,bellows,cattle")

var irregular = map[string]string{
	"i": "we", "you": "you", "he": "they", "it": "they", "me": "us", "him": "them", "them": "them",
	"myself": "ourselves", "yourself": "yourselves", "himself": "themselves", "herself": "themselves",
	"itself": "themselves", "themself": "themselves", "oneself": "oneselves",
	"child": "children", "dwarf": "dwarfs", "mongoose": "mongooses", "mythos": "mythoi", "ox": "oxen",
	"soliloquy": "soliloquies", "trilby": "trilbys", "person": "people", "forum": "forums",
	"syllabus": "syllabi", "alumnus": "alumni", "genus": "genera", "viscus": "viscera",
	"stigma": "stigmata", "thief": "thieves",
}

var (
	singleCapital = regexp.MustCompile(`^[A-Z]$`)
	invariable    = regexp.MustCompile(`(?i)(fish|ois|sheep|deer|pox|itis)$`)
	nationality   = regexp.MustCompile(`^[A-Z][a-z]*ese$`)
)

type rule struct {
	re      *regexp.Regexp
	replace string
}

// rules are evaluated in order. Later rules are deliberately broader than
// earlier ones.
var rules = []rule{
	{regexp.MustCompile(`(?i)man$`), "men"},
	{regexp.MustCompile(`(?i)([lm])ouse$`), "${1}ice"},
	{regexp.MustCompile(`(?i)tooth$`), "teeth"},
	{regexp.MustCompile(`(?i)goose$`), "geese"},
	{regexp.MustCompile(`(?i)foot$`), "feet"},
	{regexp.MustCompile(`(?i)zoon$`), "zoa"},
	{regexp.MustCompile(`(?i)([tcsx])is$`), "${1}es"},
	{regexp.MustCompile(`(?i)ix$`), "ices"},
	{regexp.MustCompile(`(?i)^(cod|mur|sil|vert)ex$`), "${1}ices"},
	{regexp.MustCompile(`(?i)^(agend|addend|memorand|millenni|dat|extrem|bacteri|desiderat|strat|candelabr|errat|ov|symposi)um$`), "${1}a"},
	{regexp.MustCompile(`(?i)^(apheli|hyperbat|periheli|asyndet|noumen|phenomen|criteri|organ|prolegomen|\w+hedr)on$`), "${1}a"},
	{regexp.MustCompile(`(?i)^(alumn|alg|vertebr)a$`), "${1}ae"},
	{regexp.MustCompile(`(?i)([cs]h|ss|x)$`), "${1}es"},
	{regexp.MustCompile(`(?i)([aeo]l|[^d]ea|ar)f$`), "${1}ves"},
	{regexp.MustCompile(`(?i)([nlw]i)fe$`), "${1}ves"},
	{regexp.MustCompile(`(?i)([aeiou])y$`), "${1}ys"},
	{regexp.MustCompile(`(^[A-Z][a-z]*)y$`), "${1}ys"},
	{regexp.MustCompile(`(?i)y$`), "ies"},
	{regexp.MustCompile(`(?i)([aeiou])o$`), "${1}os"},
	{regexp.MustCompile(`(?i)^(pian|portic|albin|generalissim|manifest|archipelag|ghett|medic|armadill|guan|octav|command|infern|phot|ditt|jumb|pr|dynam|ling|quart|embry|lumbag|rhin|fiasc|magnet|styl|alt|contralt|sopran|bass|crescend|temp|cant|sol|kimon)o$`), "${1}os"},
	{regexp.MustCompile(`(?i)o$`), "oes"},
	{regexp.MustCompile(`(?i)ss$`), "sses"},
	{regexp.MustCompile(`(?i)s$`), "s"},
}

// Pluralize returns the plural form of word.
func Pluralize(word string) string {
	if word == "" {
		return ""
	}
	if singleCapital.MatchString(word) {
		return word + "'s"
	}
	return textcase.Apply(pluralize(word), textcase.Detect(word))
}

func pluralize(word string) string {
	lower := strings.ToLower(word)
	if p, ok := lookupCustom(lower); ok {
		return p
	}
	if invariable.MatchString(word) || nationality.MatchString(word) {
		return word
	}
	if _, ok := uninflected[lower]; ok {
		return word
	}
	if p, ok := irregular[lower]; ok {
		return p
	}
	for _, r := range rules {
		if r.re.MatchString(word) {
			return r.re.ReplaceAllString(word, r.replace)
		}
	}
	return word + "s"
}

func toSet(csv string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Split(csv, ",") {
		set[w] = struct{}{}
	}
	return set
}
