// Package knowledge turns a validated restaurant record into the Q&A items a
// voice assistant answers from.
package knowledge

import (
	"strconv"
	"strings"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

// TypeQA is the only item type produced today.
const TypeQA = "qa"

// Source tags say where an answer came from.
const (
	SourceWebsite  = "website"
	SourcePolicy   = "policy"
	SourceFallback = "fallback"
)

// Topics, also used as the first tag of every item.
const (
	TopicHours      = "hours"
	TopicMenu       = "menu"
	TopicBooking    = "booking"
	TopicContact    = "contact"
	TopicGeneral    = "general"
	TopicPromotions = "promotions"
)

// Item is one question with its answer.
type Item struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	SourceTag string   `json:"sourceTag"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location"`
	Priority  int      `json:"priority"`
}

// idWords is how many words of the question make up an id.
const idWords = 8

// ItemID derives the id for a question: the type prefix followed by the slug
// of the question's first eight words.
func ItemID(itemType, question string) string {
	words := strings.Fields(question)
	if len(words) > idWords {
		words = words[:idWords]
	}
	slug := restaurant.Slugify(strings.Join(words, " "))
	if slug == "" {
		slug = "item"
	}
	return itemType + "-" + slug
}

// idAllocator hands out ids unique within one generated set. Repeats get a
// numeric suffix in the order they are requested.
type idAllocator map[string]int

func (a idAllocator) next(itemType, question string) string {
	base := ItemID(itemType, question)
	a[base]++
	if n := a[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}
