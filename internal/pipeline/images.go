package pipeline

import (
	"strings"
	"sync"
)

// DefaultThemeImage is used when no topic keyword matches an article
// subject.
const DefaultThemeImage = "https://images.unsplash.com/photo-1456324504439-367cee3b3c32?w=512"

// themeImage pairs a topic keyword with its stock illustration. The table
// is ordered; the first matching keyword wins.
type themeImage struct {
	keyword string
	url     string
}

var themeImages = []themeImage{
	{"tech", "https://images.unsplash.com/photo-1518770660439-4636190af475?w=512"},
	{"software", "https://images.unsplash.com/photo-1461749280684-dccba630e2f6?w=512"},
	{"finance", "https://images.unsplash.com/photo-1579621970563-ebec7560ff3e?w=512"},
	{"money", "https://images.unsplash.com/photo-1579621970563-ebec7560ff3e?w=512"},
	{"health", "https://images.unsplash.com/photo-1505576399279-565b52d4ac71?w=512"},
	{"travel", "https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=512"},
	{"food", "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=512"},
	{"science", "https://images.unsplash.com/photo-1532094349884-543bc11b234d?w=512"},
	{"music", "https://images.unsplash.com/photo-1511379938547-c1f69419868d?w=512"},
	{"sport", "https://images.unsplash.com/photo-1461896836934-ffe607ba8211?w=512"},
	{"design", "https://images.unsplash.com/photo-1561070791-2526d30994b5?w=512"},
	{"news", "https://images.unsplash.com/photo-1495020689067-958852a7765e?w=512"},
}

// ThemeImageForSubject picks a theme image by ordered keyword match
// against the subject, falling back to the default image.
func ThemeImageForSubject(subject string) string {
	lower := strings.ToLower(subject)
	for _, entry := range themeImages {
		if strings.Contains(lower, entry.keyword) {
			return entry.url
		}
	}
	return DefaultThemeImage
}

// ImageCache is a bounded cache of generated theme images keyed by
// normalized subject text. When full, the oldest entry is evicted.
type ImageCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]string
	order   []string
}

// NewImageCache creates an image cache holding at most maxSize entries.
func NewImageCache(maxSize int) *ImageCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &ImageCache{
		maxSize: maxSize,
		entries: make(map[string]string),
	}
}

func normalizeSubject(subject string) string {
	return strings.Join(strings.Fields(strings.ToLower(subject)), " ")
}

// Get returns the cached image URL for a subject.
func (c *ImageCache) Get(subject string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	url, ok := c.entries[normalizeSubject(subject)]
	return url, ok
}

// Put stores an image URL for a subject, evicting the oldest entry when the
// cache is full.
func (c *ImageCache) Put(subject, url string) {
	key := normalizeSubject(subject)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = url
		return
	}
	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = url
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
