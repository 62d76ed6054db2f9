// Package ingest parses support conversation transcripts into individual
// messages for per-message redaction.
package ingest

import (
	"regexp"
	"strings"
)

// Message is a single utterance from a transcript.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Speaker markers as they appear in exported transcripts. Everything between
// one marker and the next (or end of text) belongs to the marked speaker.
var markerRe = regexp.MustCompile(`(Компания|Клиент):`)

// ParseMessages splits a transcript into messages on the speaker markers.
// Text before the first marker is ignored; empty messages are dropped.
func ParseMessages(text string) []Message {
	locs := markerRe.FindAllStringSubmatchIndex(text, -1)
	var messages []Message
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			continue
		}
		messages = append(messages, Message{
			Sender: text[loc[2]:loc[3]],
			Text:   body,
		})
	}
	return messages
}
