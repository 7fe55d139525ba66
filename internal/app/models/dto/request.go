package dto

// PageRequest carries pagination query parameters
type PageRequest struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"size,default=10" binding:"omitempty,min=1,max=100"`
}

// ReviewRequest carries the optional reviewer note for approve and reject actions
type ReviewRequest struct {
	Note string `json:"note" binding:"max=1000"`
}
