package summarize

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultKeywords is returned when text yields no keyword candidates.
var DefaultKeywords = []string{"general", "document", "notes"}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all also am an and any are arent as at be
		because been before being below between both but by can cannot could did does
		doing down during each few for from further had has have having he her here
		hers herself him himself his how i if in into is it its itself just more most
		my myself no nor not now of off on once only or other our ours ourselves out
		over own same she should so some such than that the their theirs them
		themselves then there these they this those through to too under until up
		very was we were what when where which while who whom why will with would you
		your yours yourself yourselves like many much must might shall since upon
		used using whats whens wheres whos whys within without onto however therefore
		thus whether either neither every another`) {
		stopWords[w] = struct{}{}
	}
}

// Tokenize lowercases text, strips non-alphanumerics and drops stop words and
// tokens of three characters or fewer.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// TopKeywords ranks tokens by frequency, ties by first occurrence, and returns at most n.
func TopKeywords(text string, n int) []string {
	type candidate struct {
		word  string
		count int
		first int
	}

	index := map[string]int{}
	var cands []candidate
	for pos, w := range Tokenize(text) {
		if i, ok := index[w]; ok {
			cands[i].count++
			continue
		}
		index[w] = len(cands)
		cands = append(cands, candidate{word: w, count: 1, first: pos})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].count != cands[j].count {
			return cands[i].count > cands[j].count
		}
		return cands[i].first < cands[j].first
	})

	if n > len(cands) {
		n = len(cands)
	}
	out := make([]string, 0, n)
	for _, c := range cands[:n] {
		out = append(out, c.word)
	}
	return out
}
