package model

// PageDescriptor is pagination metadata derived from collection size and page size.
// Invariant: 1 <= Index <= max(1, TotalPages). TotalPages is 0 when TotalItems is 0.
type PageDescriptor struct {
	Index      int `json:"page_index"`
	Size       int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	// FirstItem and LastItem are the 1-based bounds of the visible rows ("Showing X to Y of N").
	// Both are 0 when the page is empty.
	FirstItem int  `json:"first_item"`
	LastItem  int  `json:"last_item"`
	HasPrev   bool `json:"has_prev"`
	HasNext   bool `json:"has_next"`
}

// Empty reports whether there is nothing to paginate.
func (p PageDescriptor) Empty() bool { return p.TotalItems == 0 }
