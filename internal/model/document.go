package model

// Document is a generated blueprint. It is written once and never mutated.
type Document struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	OriginalPrompt string          `json:"originalPrompt"`
	CreatedAt      int64           `json:"createdAt"` // ms since epoch
	Content        DocumentPayload `json:"content"`
}

// HistoryEntry is the lightweight projection kept in the history index.
type HistoryEntry struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	OriginalPrompt string `json:"originalPrompt"`
	CreatedAt      int64  `json:"createdAt"`
}

func (d Document) Entry() HistoryEntry {
	return HistoryEntry{
		ID:             d.ID,
		Title:          d.Title,
		OriginalPrompt: d.OriginalPrompt,
		CreatedAt:      d.CreatedAt,
	}
}
