package service

import (
	"strings"
	"sync"
)

// modifierTokens are the cosmetic reforge words and star glyphs that prefix
// item names without changing what the item is. Stripping them groups
// interchangeable listings under one canonical name.
var modifierTokens = []string{
	"✪", "◆", "✿", "Stiff", "Lucky", "Jerry's", "Dirty", "Fabled", "Suspicious", "Gilded", "Warped",
	"Withered", "Bulky", "Stellar", "Heated", "Ambered", "Fruitful", "Magnetic", "Fleet", "Mithraic",
	"Auspicious", "Refined", "Headstrong", "Precise", "Spiritual", "Moil", "Blessed", "Toil", "Bountiful",
	"Candied", "Submerged", "Reinforced", "Cubic", "Undead", "Ridiculous", "Necrotic", "Spiked",
	"Jaded", "Loving", "Perfect", "Renowned", "Giant", "Empowered", "Ancient", "Sweet", "Silky", "Bloody",
	"Shaded", "Gentle", "Odd", "Fast", "Fair", "Epic", "Sharp", "Heroic", "Spicy", "Legendary", "Deadly",
	"Fine", "Grand", "Hasty", "Neat", "Rapid", "Unreal", "Awkward", "Rich", "Clean", "Fierce", "Heavy",
	"Light", "Mythic", "Pure", "Smart", "Titanic", "Wise", "Bizarre", "Itchy", "Ominous", "Pleasant",
	"Pretty", "Shiny", "Simple", "Strange", "Vivid", "Godly", "Demonic", "Forceful", "Hurtful", "Keen",
	"Strong", "Superior", "Unpleasant", "Zealous",
}

// Normalizer maps raw listing names onto canonical grouping keys by stripping
// modifier tokens. Results are memoized for the process lifetime; the cache
// is bounded by the set of distinct raw names the market ever shows.
type Normalizer struct {
	mu    sync.RWMutex
	cache map[string]string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{cache: make(map[string]string)}
}

// Normalize returns the canonical name for a raw listing name. Deterministic
// and idempotent; names without modifiers pass through unchanged. Safe for
// concurrent use by ingest workers.
func (n *Normalizer) Normalize(raw string) string {
	n.mu.RLock()
	cached, ok := n.cache[raw]
	n.mu.RUnlock()
	if ok {
		return cached
	}

	name := raw
	for _, tok := range modifierTokens {
		name = strings.ReplaceAll(name, tok+" ", "")
		name = strings.ReplaceAll(name, tok, "")
	}
	name = strings.TrimSpace(name)

	n.mu.Lock()
	n.cache[raw] = name
	n.mu.Unlock()
	return name
}

// CacheSize reports how many distinct raw names have been seen.
func (n *Normalizer) CacheSize() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.cache)
}
