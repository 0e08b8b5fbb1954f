package domain

type Testimonial struct {
	ID          int    `json:"id"`
	Testimonial string `json:"testimonial"`
	Rating      int    `json:"rating"`
	UserName    string `json:"userName"`
	CreatedAt   string `json:"createdAt"`
}
