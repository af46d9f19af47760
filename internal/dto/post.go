package dto

import "asafe-api/internal/domain"

const (
	TitleMin   = 5
	TitleMax   = 255
	ContentMin = 10
)

type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

func (r CreatePostRequest) Validate() error {
	v := &domain.ValidationError{}
	if msg := lengthMessage(r.Title, TitleMin, TitleMax); msg != "" {
		v.Add("title", msg)
	}
	if msg := lengthMessage(r.Content, ContentMin, 0); msg != "" {
		v.Add("content", msg)
	}
	return v.Err()
}
