package model

import "time"

// Comment is a visitor message on the portfolio.
//
// CreatedAt is assigned by the store and may be nil on records that were
// written before the server timestamp resolved; ordering treats nil as oldest.
type Comment struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	AuthorName string     `json:"userName"`
	IsAdmin    bool       `json:"isAdmin"`
	IsPinned   bool       `json:"isPinned"`
	CreatedAt  *time.Time `json:"createdAt"`
}
