package service

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how document content is split into passages.
type ChunkConfig struct {
	MaxChars    int
	MinChars    int
	Overlap     int
	MaxPassages int
}

// DefaultChunkConfig provides sane defaults for passage chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:    1000,
		MinChars:    300,
		Overlap:     150,
		MaxPassages: 50,
	}
}

// chunkPassages splits document content into passage texts, preferring
// paragraph boundaries and falling back to word boundaries inside long
// paragraphs.
func chunkPassages(content string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(content)
	if clean == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}

	var passages []string
	for _, para := range strings.Split(clean, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, piece := range splitLong(para, cfg) {
			if cfg.MaxPassages > 0 && len(passages) >= cfg.MaxPassages {
				return passages
			}
			passages = append(passages, piece)
		}
	}
	return passages
}

// splitLong breaks a single block into overlapping windows on word
// boundaries.
func splitLong(text string, cfg ChunkConfig) []string {
	runes := []rune(text)
	if len(runes) <= cfg.MaxChars {
		return []string{text}
	}

	pieces := make([]string, 0, 4)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return pieces
}
