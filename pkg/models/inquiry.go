package models

import "time"

// Inquiry statuses.
const (
	InquiryStatusPending  = "pending"
	InquiryStatusAnswered = "answered"
)

// ValidInquiryStatus reports whether s is a known inquiry status.
func ValidInquiryStatus(s string) bool {
	return s == InquiryStatusPending || s == InquiryStatusAnswered
}

// Inquiry is a customer question posted on the contact board.
type Inquiry struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone"`
	Status     string     `json:"status"`
	Views      int        `json:"views"`
	Answer     *string    `json:"answer"`
	AnsweredAt *time.Time `json:"answeredAt"`
	AnsweredBy *string    `json:"answeredBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
