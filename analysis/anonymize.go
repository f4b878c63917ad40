package analysis

import "fmt"

// Default alias word lists. The grid of adjective x noun combinations covers
// 400 participants before the numbered fallback kicks in.
var defaultAdjectives = []string{
	"Happy", "Bouncy", "Cosmic", "Dancing", "Electric", "Fluffy", "Glowing",
	"Hyper", "Jazzy", "Magical", "Nifty", "Quirky", "Sparkly", "Whimsical",
	"Zesty", "Bubbly", "Cheerful", "Dazzling", "Energetic", "Fantastic",
}

var defaultNouns = []string{
	"Penguin", "Unicorn", "Dragon", "Phoenix", "Wizard", "Ninja", "Panda",
	"Robot", "Dolphin", "Koala", "Raccoon", "Tiger", "Llama", "Octopus",
	"Platypus", "Narwhal", "Giraffe", "Kangaroo", "Hedgehog", "Chameleon",
}

// AliasPool supplies alias names for one pipeline run. The zero value uses the
// default themed lists. Pools are plain values constructed per run, so
// concurrent runs never share consumption state.
type AliasPool struct {
	Adjectives []string
	Nouns      []string
}

// alias returns the nth alias in the pool's fixed order; once the grid is
// exhausted it generates numbered guests so the supply never runs out.
func (p AliasPool) alias(n int) string {
	adj, nouns := p.Adjectives, p.Nouns
	if len(adj) == 0 {
		adj = defaultAdjectives
	}
	if len(nouns) == 0 {
		nouns = defaultNouns
	}
	if n < len(adj)*len(nouns) {
		return adj[n%len(adj)] + nouns[n/len(adj)]
	}
	return fmt.Sprintf("Guest %d", n+1)
}

// AliasMap records the alias assigned to each raw sender name, in first-seen
// order. It is scoped to one run and discarded afterwards; it is never
// persisted, so identities cannot leak across transcripts.
type AliasMap struct {
	byRaw map[string]string
	order []string
}

// Alias returns the alias for a raw sender name.
func (m *AliasMap) Alias(raw string) (string, bool) {
	alias, ok := m.byRaw[raw]
	return alias, ok
}

// Len is the number of distinct senders seen.
func (m *AliasMap) Len() int {
	return len(m.order)
}

// Aliases returns every assigned alias in first-seen order.
func (m *AliasMap) Aliases() []string {
	out := make([]string, 0, len(m.order))
	for _, raw := range m.order {
		out = append(out, m.byRaw[raw])
	}
	return out
}

// Anonymize replaces every sender with a stable per-run alias. The same raw
// name always maps to the same alias within the run, distinct names never
// collide, and phone-number names are treated exactly like display names.
// System records keep their empty sender.
func Anonymize(records []MessageRecord, pool AliasPool) ([]MessageRecord, *AliasMap) {
	m := &AliasMap{byRaw: make(map[string]string)}
	out := make([]MessageRecord, len(records))
	for i, r := range records {
		out[i] = r
		if r.IsSystem || r.Sender == "" {
			out[i].Sender = ""
			continue
		}
		alias, ok := m.byRaw[r.Sender]
		if !ok {
			alias = pool.alias(len(m.order))
			m.byRaw[r.Sender] = alias
			m.order = append(m.order, r.Sender)
		}
		out[i].Sender = alias
	}
	return out, m
}
